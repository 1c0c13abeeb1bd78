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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every gauge/counter the process exposes: the KV store's
// own operational metrics, plus the voice domain's session and
// reliability counters.
type Metrics struct {
	// KV store metrics
	KVOperationsTotal   *prometheus.CounterVec
	KVOperationDuration *prometheus.HistogramVec
	KVKeysTotal         prometheus.Gauge
	KVExpiredKeysTotal  prometheus.Counter
	KVCleanupDuration   prometheus.Histogram

	// Voice domain metrics
	PlayersConnected   prometheus.Gauge
	ChannelsRegistered prometheus.Gauge
	CommandsHandled    *prometheus.CounterVec
	SessionsReaped     prometheus.Counter

	// Reliability layer metrics
	RetransmitsTotal  prometheus.Counter
	DeadPeersDetected prometheus.Counter
	PersistenceErrors *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		KVOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kv_operations_total",
			Help: "The total number of KV operations performed",
		}, []string{"operation", "status"}),
		KVOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kv_operation_duration_seconds",
			Help:    "Duration of KV operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		KVKeysTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kv_keys_total",
			Help: "The current number of keys in the KV store",
		}),
		KVExpiredKeysTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kv_expired_keys_total",
			Help: "The total number of expired keys cleaned up",
		}),
		KVCleanupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kv_cleanup_duration_seconds",
			Help:    "Duration of KV cleanup operations",
			Buckets: prometheus.DefBuckets,
		}),
		PlayersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voice_players_connected",
			Help: "The current number of connected players",
		}),
		ChannelsRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voice_channels_registered",
			Help: "The current number of registered (persisted) channels",
		}),
		CommandsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_commands_handled_total",
			Help: "The total number of control commands handled, by command and outcome",
		}, []string{"command", "outcome"}),
		SessionsReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voice_sessions_reaped_total",
			Help: "The total number of sessions reaped for ping timeout",
		}),
		RetransmitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voice_reliability_retransmits_total",
			Help: "The total number of packet retransmissions sent",
		}),
		DeadPeersDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voice_reliability_dead_peers_total",
			Help: "The total number of peers declared dead by the reliability layer",
		}),
		PersistenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_persistence_errors_total",
			Help: "The total number of RegistrationStore call failures, by operation",
		}, []string{"operation"}),
	}
	metrics.register()
	return metrics
}

func (m *Metrics) register() {
	prometheus.MustRegister(
		m.KVOperationsTotal,
		m.KVOperationDuration,
		m.KVKeysTotal,
		m.KVExpiredKeysTotal,
		m.KVCleanupDuration,
		m.PlayersConnected,
		m.ChannelsRegistered,
		m.CommandsHandled,
		m.SessionsReaped,
		m.RetransmitsTotal,
		m.DeadPeersDetected,
		m.PersistenceErrors,
	)
}

// KV store metrics methods
func (m *Metrics) RecordKVOperation(operation, status string, duration float64) {
	m.KVOperationsTotal.WithLabelValues(operation, status).Inc()
	m.KVOperationDuration.WithLabelValues(operation).Observe(duration)
}

func (m *Metrics) SetKVKeysTotal(count float64) {
	m.KVKeysTotal.Set(count)
}

func (m *Metrics) IncrementKVExpiredKeys(count float64) {
	m.KVExpiredKeysTotal.Add(count)
}

func (m *Metrics) RecordKVCleanup(duration float64) {
	m.KVCleanupDuration.Observe(duration)
}

// Voice domain metrics methods
func (m *Metrics) RecordCommandHandled(command, outcome string) {
	m.CommandsHandled.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) RecordSessionReaped() {
	m.SessionsReaped.Inc()
}

func (m *Metrics) RecordRetransmit() {
	m.RetransmitsTotal.Inc()
}

func (m *Metrics) RecordDeadPeer() {
	m.DeadPeersDetected.Inc()
}

func (m *Metrics) RecordPersistenceError(operation string) {
	m.PersistenceErrors.WithLabelValues(operation).Inc()
}
