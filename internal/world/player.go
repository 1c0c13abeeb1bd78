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
	"net"
	"time"

	"github.com/soliloque-go/voiced/internal/voiceconst"
)

// SessionState is a player's position in the per-session state machine:
// UNAUTHENTICATED accepts only LOGIN; LIVE accepts the full command
// table; DEAD means the session is being torn down.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateLive
	StateDead
)

// Player is a connected session. Zero value is not meaningful; build
// with NewPlayer.
type Player struct {
	PublicID  PlayerID
	PrivateID uint32
	Nickname  string

	State      SessionState
	InChannel  ChannelID
	RemoteAddr *net.UDPAddr

	LastPingReceivedAt time.Time

	F0SCounter uint32 // last outbound control sequence number sent; the next packet carries this plus one
	F0RCounter uint32 // highest observed inbound sequence number

	PlayerAttributes voiceconst.PlayerAttribute
	GlobalFlags      voiceconst.GlobalFlag

	// RegistrationID is the bound Registration, or 0 if none (a
	// public_id of 0 is never assigned, see voiceconst.ParrotPublicID,
	// so 0 safely doubles as "no registration" for this field too —
	// registration ids are assigned starting at 1 by internal/store).
	RegistrationID RegistrationID
}

// NewPlayer constructs an unauthenticated-state player shell; LOGIN's
// handler fills in identity fields once credentials are validated.
func NewPlayer(addr *net.UDPAddr) *Player {
	return &Player{
		State:      StateUnauthenticated,
		RemoteAddr: addr,
	}
}

// Registered reports whether the player has an attached Registration.
func (p *Player) Registered() bool {
	return p.GlobalFlags&voiceconst.FlagRegistered != 0
}

// IsServerAdmin reports the ServerAdmin global flag.
func (p *Player) IsServerAdmin() bool {
	return p.GlobalFlags&voiceconst.FlagServerAdmin != 0
}
