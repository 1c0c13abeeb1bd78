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

package voiceserver

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/soliloque-go/voiced/internal/world"
)

// pingTimeout is how long a player may go without a PING before the reap
// sweep drops them. 0 disables reaping (kept finite in production by
// config.Voice.PingTimeoutSeconds defaulting to 60).
func (s *Server) pingTimeout() time.Duration {
	if s.cfg.PingTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.cfg.PingTimeoutSeconds) * time.Second
}

// reapTick drops any LIVE player whose last PING is older than the
// configured timeout. Grounded on the same periodic-sweep shape as
// resendTick; the two walk independent state (reliability's resend
// queue vs. world.Server's player table) so each owns its own pass
// over the live set rather than sharing one.
func (s *Server) reapTick(ctx context.Context) {
	timeout := s.pingTimeout()
	if timeout == 0 {
		return
	}

	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.reapTick")
	defer span.End()

	now := s.clock.Now()
	var stale []world.PlayerID

	s.world.Lock()
	s.world.EachPlayer(func(p *world.Player) bool {
		if p.State != world.StateLive {
			return true
		}
		if now.Sub(p.LastPingReceivedAt) > timeout {
			stale = append(stale, p.PublicID)
		}
		return true
	})
	for _, id := range stale {
		s.destroySession(id, "ping timeout")
	}
	s.world.Unlock()
}
