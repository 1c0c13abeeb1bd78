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

import "github.com/soliloque-go/voiced/internal/voiceconst"

// Channel is a named room players may inhabit. All cross-references
// (parent, children, members) are ids, not pointers, so the channel
// table can be stored in a concurrent map without pointer aliasing
// hazards across resizes. Mutate only while the owning Server's Lock
// is held.
type Channel struct {
	ID          ChannelID
	ParentID    ChannelID // 0 = root
	Name        string
	Topic       string
	Description string
	Password    string
	MaxUsers    int
	SortOrder   int
	Flags       voiceconst.ChannelFlag

	Members  map[PlayerID]struct{}
	Children map[ChannelID]struct{}

	// Privileges maps a discriminated binding key to the bits granted
	// to it in this channel. See PrivilegeKey.
	Privileges map[PrivilegeKey]voiceconst.ChannelPrivilege
}

// newChannel allocates a channel shell; callers fill ID via
// Server.NextChannelID before inserting it into the arena.
func newChannel() *Channel {
	return &Channel{
		Members:    make(map[PlayerID]struct{}),
		Children:   make(map[ChannelID]struct{}),
		Privileges: make(map[PrivilegeKey]voiceconst.ChannelPrivilege),
	}
}

// Registered reports whether the channel has a persisted row, i.e. it
// does not carry the UNREGISTERED flag.
func (c *Channel) Registered() bool {
	return c.Flags&voiceconst.ChanFlagUnregistered == 0
}

// HasPassword reports the PASSWORD flag.
func (c *Channel) HasPassword() bool {
	return c.Flags&voiceconst.ChanFlagPassword != 0
}

// Empty reports whether the channel has no members and no subchannels,
// the precondition a delete request must satisfy.
func (c *Channel) Empty() bool {
	return len(c.Members) == 0 && len(c.Children) == 0
}

// Full reports whether the channel is at capacity. A MaxUsers of 0
// means unlimited.
func (c *Channel) Full() bool {
	return c.MaxUsers > 0 && len(c.Members) >= c.MaxUsers
}

// PrivilegeKeyKind discriminates whether a PlayerChannelPrivilege binds
// to a live Player or a persisted Registration.
type PrivilegeKeyKind int

const (
	BoundToPlayer PrivilegeKeyKind = iota
	BoundToRegistration
)

// PrivilegeKey identifies a PlayerChannelPrivilege's binding within one
// channel's Privileges map.
type PrivilegeKey struct {
	Kind PrivilegeKeyKind
	ID   uint32 // PlayerID or RegistrationID depending on Kind
}

// PlayerKey builds a PrivilegeKey bound to a live player.
func PlayerKey(id PlayerID) PrivilegeKey {
	return PrivilegeKey{Kind: BoundToPlayer, ID: id}
}

// RegistrationKey builds a PrivilegeKey bound to a persisted registration.
func RegistrationKey(id RegistrationID) PrivilegeKey {
	return PrivilegeKey{Kind: BoundToRegistration, ID: id}
}

// PrivilegeFor resolves the effective privilege bits for a player in
// this channel: prefer the Registration-bound record when the player is
// Registered (so a returning registered user keeps their rights),
// falling back to a Player-bound record for unregistered sessions or
// ad-hoc grants.
func (c *Channel) PrivilegeFor(p *Player) voiceconst.ChannelPrivilege {
	if p.Registered() {
		if bits, ok := c.Privileges[RegistrationKey(p.RegistrationID)]; ok {
			return bits
		}
	}
	return c.Privileges[PlayerKey(p.PublicID)]
}

// RebindRegistrationPrivileges moves every privilege bound to regID onto
// playerID, discarding the Registration-bound record. Called when a
// player loses Registered status mid-session: their channel rights
// survive for the rest of the session as Player-bound records, then
// vanish at disconnect along with every other ephemeral Player-bound
// grant.
func (c *Channel) RebindRegistrationPrivileges(regID RegistrationID, playerID PlayerID) {
	key := RegistrationKey(regID)
	bits, ok := c.Privileges[key]
	if !ok {
		return
	}
	delete(c.Privileges, key)
	c.Privileges[PlayerKey(playerID)] = bits
}
