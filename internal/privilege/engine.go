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

// Package privilege resolves whether a player may perform a named
// operation, either server-wide or against a specific channel.
package privilege

import (
	"github.com/soliloque-go/voiced/internal/voiceconst"
	"github.com/soliloque-go/voiced/internal/world"
)

// serverOps are ops resolved purely against Player.GlobalFlags; any op
// not in this set, and not a self-op, is channel-scoped.
var serverOps = map[world.Op]struct{}{
	world.OpGrantServerAdmin:   {},
	world.OpRevokeServerAdmin:  {},
	world.OpGrantAllowReg:      {},
	world.OpRevokeAllowReg:     {},
	world.OpCreateRegistration: {},
	world.OpDeleteRegistration: {},
	world.OpKickServer:         {},
	world.OpEditServerInfo:     {},
}

// selfOps are always allowed on the actor's own session regardless of
// privilege state.
var selfOps = map[world.Op]struct{}{
	world.OpChangeOwnNickname:   {},
	world.OpChangeOwnAttributes: {},
}

// channelOpBits maps a channel-scoped Op onto the ChannelPrivilege bit
// that grants it, per the protocol's fixed bit-to-op table. ChanPrivAdmin
// additionally implies every other channel-scoped op in that channel;
// that escalation is applied in Engine.May, not encoded here.
var channelOpBits = map[world.Op]voiceconst.ChannelPrivilege{
	world.OpGrantChannelAdmin:  voiceconst.ChanPrivAdmin,
	world.OpRevokeChannelAdmin: voiceconst.ChanPrivAdmin,
	world.OpGrantOperator:      voiceconst.ChanPrivOperator,
	world.OpRevokeOperator:     voiceconst.ChanPrivOperator,
	world.OpGrantVoice:         voiceconst.ChanPrivVoice,
	world.OpRevokeVoice:        voiceconst.ChanPrivVoice,
	world.OpGrantAutoOp:        voiceconst.ChanPrivAutoOp,
	world.OpRevokeAutoOp:       voiceconst.ChanPrivAutoOp,
	world.OpGrantAutoVoice:     voiceconst.ChanPrivAutoVoice,
	world.OpRevokeAutoVoice:    voiceconst.ChanPrivAutoVoice,
	// Operator implies kick-channel, channel-info edits, channel
	// deletion and joining without the password, none of which has a
	// bit of its own.
	world.OpKickChannel:         voiceconst.ChanPrivOperator,
	world.OpEditChannelInfo:     voiceconst.ChanPrivOperator,
	world.OpDeleteChannel:       voiceconst.ChanPrivOperator,
	world.OpJoinWithoutPassword: voiceconst.ChanPrivOperator,
}

// Engine is the privilege predicate. It holds no state of its own; every
// check reads straight from the live domain model passed in.
type Engine struct{}

// New constructs a privilege Engine.
func New() *Engine {
	return &Engine{}
}

// May reports whether actor is permitted to perform op, optionally
// scoped to context (nil for server-scoped and self ops). Resolution
// order:
//
//  1. actor.GlobalFlags&FlagServerAdmin != 0 allows everything.
//  2. Server-scoped ops consult GlobalFlags only.
//  3. Channel-scoped ops consult the PlayerChannelPrivilege bound to
//     (actor, context); ChanPrivAdmin implies every other channel-scoped
//     op in that channel, ChanPrivOperator implies kick/edit/delete.
//  4. Self-ops are always allowed.
//  5. Default deny.
func (e *Engine) May(actor *world.Player, op world.Op, context *world.Channel) bool {
	if actor.GlobalFlags&voiceconst.FlagServerAdmin != 0 {
		return true
	}

	if _, ok := serverOps[op]; ok {
		return e.mayServer(actor, op)
	}

	if bit, ok := channelOpBits[op]; ok {
		if context == nil {
			return false
		}
		return e.mayChannel(actor, context, bit)
	}

	if _, ok := selfOps[op]; ok {
		return true
	}

	return false
}

func (e *Engine) mayServer(actor *world.Player, op world.Op) bool {
	switch op {
	case world.OpGrantAllowReg, world.OpRevokeAllowReg:
		return actor.GlobalFlags&voiceconst.FlagAllowReg != 0
	default:
		// Every other server-scoped op (grant/revoke SA, registration
		// create/delete, kick-server, edit-server-info) requires
		// SERVER_ADMIN, already checked in May above; falling through to
		// here without that flag is a deny.
		return false
	}
}

func (e *Engine) mayChannel(actor *world.Player, context *world.Channel, required voiceconst.ChannelPrivilege) bool {
	bits := context.PrivilegeFor(actor)
	if bits&voiceconst.ChanPrivAdmin != 0 {
		return true
	}
	return bits&required != 0
}
