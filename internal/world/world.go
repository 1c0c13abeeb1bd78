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

// Package world holds the live domain model: the Server singleton, its
// Channel tree, connected Players, Registrations, and per-channel
// privilege records. All cross-references are ids into arenas rather
// than pointers, since the channel tree is naturally cyclic (a channel
// points at its parent and its children); the two arenas (channels,
// players) use xsync.Map for lock-free reads, while
// every structural mutation (tree edits, membership moves, privilege
// writes) is serialised under a single Server-wide mutex.
package world

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/soliloque-go/voiced/internal/voiceconst"
)

// PlayerID is a connected session's public_id: 16-bit, unique for the
// server's process lifetime.
type PlayerID = uint32

// ChannelID is a channel's persistent or ephemeral identifier.
type ChannelID = uint32

// RegistrationID is a persisted identity's id.
type RegistrationID = uint32

// Config is the immutable configuration snapshot the Server was built
// with: welcome message, capacity, and server join password.
type Config struct {
	WelcomeMessage string
	MaxUsers       int
	Password       string
}

// Server is the process-wide singleton owning the channel tree and the
// connected-player table. Construct with NewServer.
type Server struct {
	Config Config

	mu sync.Mutex // guards every structural mutation; see package doc

	channels      *xsync.Map[ChannelID, *Channel]
	players       *xsync.Map[PlayerID, *Player]
	registrations *xsync.Map[RegistrationID, *Registration]

	defaultChannel ChannelID

	nextPublicID  uint32
	nextChannelID uint32

	// pending backs the "entity pending" marker (see pending.go). Left
	// nil, MarkPending is a no-op, so a deployment with no shared kv
	// backend just keeps the handler's own synchronous rollback as its
	// only safety net.
	pending pendingBackend
}

// NewServer constructs an empty Server. Callers must then create the
// default channel with CreateDefaultChannel before accepting players.
func NewServer(cfg Config) *Server {
	return &Server{
		Config:        cfg,
		channels:      xsync.NewMap[ChannelID, *Channel](),
		players:       xsync.NewMap[PlayerID, *Player](),
		registrations: xsync.NewMap[RegistrationID, *Registration](),
	}
}

// Lock acquires the server-wide structural mutation lock. Handlers must
// hold this for the full validate-mutate-persist-broadcast transaction;
// it is exported so internal/voiceserver's handlers can wrap a whole
// command in one critical section instead of per-call locking.
func (s *Server) Lock() {
	s.mu.Lock()
}

// Unlock releases the lock acquired by Lock.
func (s *Server) Unlock() {
	s.mu.Unlock()
}

// NextPublicID issues a fresh public id. Callers that exhaust the space
// will start colliding, which should be treated as a capacity error; no
// recovery path is defined for public_id exhaustion.
func (s *Server) NextPublicID() PlayerID {
	return atomic.AddUint32(&s.nextPublicID, 1)
}

// NextPrivateID issues a fresh 32-bit random private id, the secret
// session-possession proof sent to exactly one client.
func NextPrivateID() uint32 {
	return rand.Uint32() //nolint:gosec // not a cryptographic auth mechanism
}

// NextChannelID issues a fresh 32-bit channel id.
func (s *Server) NextChannelID() ChannelID {
	return atomic.AddUint32(&s.nextChannelID, 1)
}

// Player returns the live player with the given public id, if connected.
func (s *Server) Player(id PlayerID) (*Player, bool) {
	return s.players.Load(id)
}

// PlayerByPrivateID finds a player by their private id. O(n) over
// connected players: private_id is only consulted once per inbound
// packet, on the authentication-carrying field, never in a hot
// broadcast loop, so a linear scan is acceptable.
func (s *Server) PlayerByPrivateID(privateID uint32) (*Player, bool) {
	var found *Player
	s.players.Range(func(_ PlayerID, p *Player) bool {
		if p.PrivateID == privateID {
			found = p
			return false
		}
		return true
	})
	return found, found != nil
}

// PlayerByNickname finds a player by nickname. O(n) over connected
// players; nickname collisions are checked rarely enough that a linear
// scan is acceptable.
func (s *Server) PlayerByNickname(nickname string) (*Player, bool) {
	var found *Player
	s.players.Range(func(_ PlayerID, p *Player) bool {
		if p.Nickname == nickname {
			found = p
			return false
		}
		return true
	})
	return found, found != nil
}

// EachPlayer calls fn for every connected player; fn returning false
// stops the iteration early. This is the iterator the broadcast engine
// ranges over to fan a notification out to every connected session.
func (s *Server) EachPlayer(fn func(*Player) bool) {
	s.players.Range(func(_ PlayerID, p *Player) bool {
		return fn(p)
	})
}

// PlayerCount returns the number of connected players.
func (s *Server) PlayerCount() int {
	return s.players.Size()
}

// Channel returns the channel with the given id, if it exists.
func (s *Server) Channel(id ChannelID) (*Channel, bool) {
	return s.channels.Load(id)
}

// EachChannel calls fn for every channel.
func (s *Server) EachChannel(fn func(*Channel) bool) {
	s.channels.Range(func(_ ChannelID, c *Channel) bool {
		return fn(c)
	})
}

// DefaultChannel returns the server's unique DEFAULT channel. Panics if
// called before CreateDefaultChannel: its existence is an invariant of
// a running server, so a caller hitting this has a startup bug, not a
// runtime condition to recover from.
func (s *Server) DefaultChannel() *Channel {
	c, ok := s.channels.Load(s.defaultChannel)
	if !ok {
		panic("world: default channel missing; CreateDefaultChannel was never called")
	}
	return c
}

// addPlayer registers a newly logged-in player. Caller must hold Lock.
func (s *Server) addPlayer(p *Player) {
	s.players.Store(p.PublicID, p)
}

// removePlayer deregisters a player, e.g. on disconnect/kick/reap.
// Caller must hold Lock.
func (s *Server) removePlayer(id PlayerID) {
	s.players.Delete(id)
}

// addChannel inserts a new channel into the arena. Caller must hold Lock.
func (s *Server) addChannel(c *Channel) {
	s.channels.Store(c.ID, c)
}

// removeChannel deletes a channel from the arena. Caller must hold Lock.
func (s *Server) removeChannel(id ChannelID) {
	s.channels.Delete(id)
}

// RequiredCreateOps returns the set of ops implied by a channel's
// creation flags: REGISTERED channels require CREATE_REGISTERED,
// DEFAULT requires CREATE_DEFAULT, and so on. Used by the dispatch
// handler, not the privilege engine itself, to build the set of ops to
// check.
func RequiredCreateOps(flags voiceconst.ChannelFlag) []Op {
	var ops []Op
	if flags&voiceconst.ChanFlagUnregistered == 0 {
		ops = append(ops, OpCreateRegistered)
	} else {
		ops = append(ops, OpCreateUnregistered)
	}
	if flags&voiceconst.ChanFlagDefault != 0 {
		ops = append(ops, OpCreateDefault)
	}
	if flags&voiceconst.ChanFlagModerated != 0 {
		ops = append(ops, OpCreateModerated)
	}
	if flags&voiceconst.ChanFlagSubchannels != 0 {
		ops = append(ops, OpCreateSubchanneled)
	}
	return ops
}
