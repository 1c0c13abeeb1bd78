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
	"errors"

	"github.com/soliloque-go/voiced/internal/voiceconst"
)

// Errors returned by the domain mutation functions in this file. They
// map directly onto the dispatcher's PreconditionFailed error kind;
// handlers decide what wire reply, if any, corresponds.
var (
	ErrChannelFull      = errors.New("world: channel is full")
	ErrChannelNotEmpty  = errors.New("world: channel is not empty")
	ErrUnknownChannel   = errors.New("world: channel not found")
	ErrUnknownPlayer    = errors.New("world: player not found")
	ErrDefaultExists    = errors.New("world: server already has a default channel")
	ErrNoDefaultChannel = errors.New("world: server has no default channel")
)

// CreateDefaultChannel creates the server's unique DEFAULT channel.
// Must be called exactly once, before any player logs in.
//
// Caller must hold s.Lock() for the duration of the call.
func (s *Server) CreateDefaultChannel(name string) (*Channel, error) {
	if _, ok := s.channels.Load(s.defaultChannel); ok {
		return nil, ErrDefaultExists
	}

	c := newChannel()
	c.ID = s.NextChannelID()
	c.Name = name
	c.Flags = voiceconst.ChanFlagDefault
	s.addChannel(c)
	s.defaultChannel = c.ID
	return c, nil
}

// CreateChannel allocates and inserts a new channel. If parentID is
// non-zero, it is attached under that parent; if the parent is
// Registered, the new channel is forced Registered too.
//
// Caller must hold s.Lock() for the duration of the call.
func (s *Server) CreateChannel(parentID ChannelID, name, topic, description, password string, maxUsers int, flags voiceconst.ChannelFlag) (*Channel, error) {
	var parent *Channel
	if parentID != 0 {
		var ok bool
		parent, ok = s.channels.Load(parentID)
		if !ok {
			return nil, ErrUnknownChannel
		}
		if parent.Registered() {
			flags &^= voiceconst.ChanFlagUnregistered
		}
	}

	c := newChannel()
	c.ID = s.NextChannelID()
	c.ParentID = parentID
	c.Name = name
	c.Topic = topic
	c.Description = description
	c.Password = password
	c.MaxUsers = maxUsers
	c.Flags = flags

	s.addChannel(c)
	if parent != nil {
		parent.Children[c.ID] = struct{}{}
	}
	return c, nil
}

// DeleteChannel removes a channel, permitted only when it has no
// members and no subchannels. On success the channel is fully
// removed from the arena and detached from its parent's children set.
//
// Caller must hold s.Lock() for the duration of the call.
func (s *Server) DeleteChannel(id ChannelID) error {
	c, ok := s.channels.Load(id)
	if !ok {
		return ErrUnknownChannel
	}
	if !c.Empty() {
		return ErrChannelNotEmpty
	}

	if c.ParentID != 0 {
		if parent, ok := s.channels.Load(c.ParentID); ok {
			delete(parent.Children, id)
		}
	}
	s.removeChannel(id)
	return nil
}

// Login installs a freshly authenticated player into the arena and
// places them in the DEFAULT channel.
//
// Caller must hold s.Lock() for the duration of the call.
func (s *Server) Login(p *Player) error {
	def, ok := s.channels.Load(s.defaultChannel)
	if !ok {
		return ErrNoDefaultChannel
	}

	p.State = StateLive
	p.InChannel = def.ID
	def.Members[p.PublicID] = struct{}{}
	s.addPlayer(p)
	return nil
}

// MovePlayer atomically relocates a connected player to another
// channel: removes them from their current channel's member set, sets
// InChannel, and inserts them into the destination's member set. Fails
// if the destination is full.
//
// Caller must hold s.Lock() for the duration of the call.
func (s *Server) MovePlayer(playerID PlayerID, toID ChannelID) error {
	p, ok := s.players.Load(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	to, ok := s.channels.Load(toID)
	if !ok {
		return ErrUnknownChannel
	}
	if to.Full() {
		return ErrChannelFull
	}

	if from, ok := s.channels.Load(p.InChannel); ok {
		delete(from.Members, playerID)
	}
	p.InChannel = toID
	to.Members[playerID] = struct{}{}
	return nil
}

// Disconnect removes a player from the server entirely: their channel
// membership, and their entry in the player table. Used by explicit
// DISCONNECT, ping-timeout reap, and KICK_SERVER.
//
// Caller must hold s.Lock() for the duration of the call.
func (s *Server) Disconnect(playerID PlayerID) {
	p, ok := s.players.Load(playerID)
	if !ok {
		return
	}
	if ch, ok := s.channels.Load(p.InChannel); ok {
		delete(ch.Members, playerID)
	}
	s.removePlayer(playerID)
}

// KickFromChannel removes a player from their current channel only,
// relocating them to the server's DEFAULT channel.
//
// Caller must hold s.Lock() for the duration of the call.
func (s *Server) KickFromChannel(playerID PlayerID) error {
	p, ok := s.players.Load(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	def, ok := s.channels.Load(s.defaultChannel)
	if !ok {
		return ErrNoDefaultChannel
	}
	if from, ok := s.channels.Load(p.InChannel); ok {
		delete(from.Members, playerID)
	}
	p.InChannel = def.ID
	def.Members[playerID] = struct{}{}
	return nil
}
