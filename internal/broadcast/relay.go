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

package broadcast

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/soliloque-go/voiced/internal/store/models"
	"github.com/soliloque-go/voiced/internal/wire"
	"github.com/soliloque-go/voiced/internal/world"
)

// relay unmarshals one published envelope and personalises it for every
// locally-connected LIVE player. It holds the world lock for the whole
// fan-out, matching §5's single-exclusive-lock concurrency model: each
// recipient's f0_s_counter is both read and advanced here, so the whole
// pass must be serialised against every other structural mutation.
func (e *Engine) relay(msg []byte) {
	_, span := otel.Tracer(tracerName).Start(context.Background(), "broadcast.relay")
	defer span.End()

	var raw models.RawPacket
	if _, err := raw.UnmarshalMsg(msg); err != nil {
		e.logger.Warn("broadcast: unmarshaling envelope", "error", err)
		return
	}

	e.world.Lock()
	defer e.world.Unlock()

	e.world.EachPlayer(func(p *world.Player) bool {
		if p.State != world.StateLive {
			return true
		}

		buf := make([]byte, len(raw.Data))
		copy(buf, raw.Data)

		counter := p.F0SCounter + 1
		if err := wire.RewriteRecipient(buf, p.PrivateID, p.PublicID, counter); err != nil {
			e.logger.Warn("broadcast: personalising frame", "publicID", p.PublicID, "error", err)
			return true
		}

		if err := e.rel.Send(p.PublicID, counter, buf); err != nil {
			e.logger.Warn("broadcast: sending to peer", "publicID", p.PublicID, "error", err)
			return true
		}
		p.F0SCounter = counter
		return true
	})
}
