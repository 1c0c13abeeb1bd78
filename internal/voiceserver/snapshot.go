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
	"github.com/soliloque-go/voiced/internal/wire"
	"github.com/soliloque-go/voiced/internal/world"
)

// chanListSnapshot builds the full CHANLIST reply LOGIN sends to a
// freshly authenticated player. Caller must hold s.world.Lock().
func (s *Server) chanListSnapshot() *wire.ChanListSnapshot {
	var entries []wire.ChanListEntry
	s.world.EachChannel(func(c *world.Channel) bool {
		entries = append(entries, wire.ChanListEntry{
			ID:        c.ID,
			ParentID:  c.ParentID,
			Name:      c.Name,
			Topic:     c.Topic,
			MaxUsers:  uint16(c.MaxUsers),
			SortOrder: uint16(c.SortOrder),
			Flags:     c.Flags,
		})
		return true
	})
	return &wire.ChanListSnapshot{Channels: entries}
}

// playerListSnapshot builds the full PLAYERLIST reply LOGIN sends to a
// freshly authenticated player. Caller must hold s.world.Lock().
func (s *Server) playerListSnapshot() *wire.PlayerListSnapshot {
	var entries []wire.PlayerListEntry
	s.world.EachPlayer(func(p *world.Player) bool {
		if p.State != world.StateLive {
			return true
		}
		entries = append(entries, wire.PlayerListEntry{
			PublicID:   p.PublicID,
			InChannel:  p.InChannel,
			Nickname:   p.Nickname,
			Attributes: p.PlayerAttributes,
		})
		return true
	})
	return &wire.PlayerListSnapshot{Players: entries}
}
