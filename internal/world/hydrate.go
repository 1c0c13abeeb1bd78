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

package world

import (
	"fmt"

	"github.com/soliloque-go/voiced/internal/store"
	"github.com/soliloque-go/voiced/internal/voiceconst"
)

// LoadSnapshot rebuilds the channel tree, registration cache, and
// channel privileges from a RegistrationStore.LoadAll result, before the
// socket is opened and any player can connect. Mirrors the teacher's
// main.go loop that reloads every persisted repeater from the database
// at startup before listening for calls; here the equivalent durable
// rows are channels, registrations, and privileges rather than
// repeaters.
//
// Caller must hold Lock for the duration of the call; this is only ever
// called once, during startup, before any other goroutine can observe
// the server.
func (s *Server) LoadSnapshot(snap store.Snapshot) error {
	byID := make(map[uint32]*Channel, len(snap.Channels))
	var maxChannelID uint32
	for _, row := range snap.Channels {
		c := newChannel()
		c.ID = row.ID
		c.ParentID = row.ParentID
		c.Name = row.Name
		c.Topic = row.Topic
		c.Description = row.Description
		c.Password = row.Password
		c.MaxUsers = row.MaxUsers
		c.SortOrder = row.SortOrder
		c.Flags = voiceconst.ChannelFlag(row.Flags)
		byID[row.ID] = c
		if row.ID > maxChannelID {
			maxChannelID = row.ID
		}
	}
	for _, c := range byID {
		if c.ParentID == 0 {
			continue
		}
		parent, ok := byID[c.ParentID]
		if !ok {
			return fmt.Errorf("world: channel %d references missing parent %d", c.ID, c.ParentID)
		}
		parent.Children[c.ID] = struct{}{}
	}
	for _, c := range byID {
		s.addChannel(c)
	}
	if maxChannelID > s.nextChannelID {
		s.nextChannelID = maxChannelID
	}

	for _, row := range snap.Regs {
		s.AddRegistration(&Registration{
			ID:           row.ID,
			ServerID:     row.ServerID,
			Name:         row.Name,
			PasswordHash: row.PasswordHash,
		})
	}

	for _, row := range snap.Privileges {
		c, ok := byID[row.ChannelID]
		if !ok {
			continue
		}
		c.Privileges[RegistrationKey(row.RegistrationID)] = voiceconst.ChannelPrivilege(row.Privileges)
	}

	return nil
}
