// SPDX-License-Identifier: AGPL-3.0-or-later
// voiced - a group-voice control-plane server
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/soliloque-go/voiced/internal/metrics"
)

// NewMetrics registers every collector against the process-wide default
// registry, so this suite constructs it exactly once and exercises every
// recording method against that single instance.
func TestMetricsRecording(t *testing.T) {
	m := metrics.NewMetrics()

	m.RecordCommandHandled("LOGIN", "ok")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CommandsHandled.WithLabelValues("LOGIN", "ok")))

	m.RecordSessionReaped()
	m.RecordSessionReaped()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.SessionsReaped))

	m.RecordRetransmit()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RetransmitsTotal))

	m.RecordDeadPeer()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DeadPeersDetected))

	m.RecordPersistenceError("register_channel")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PersistenceErrors.WithLabelValues("register_channel")))

	m.SetKVKeysTotal(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(m.KVKeysTotal))

	m.IncrementKVExpiredKeys(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.KVExpiredKeysTotal))

	m.RecordKVOperation("get", "hit", 0.01)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.KVOperationsTotal.WithLabelValues("get", "hit")))
}
