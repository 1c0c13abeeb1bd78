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

// Op is a named privilege operation: callers name the action they want
// to perform and the privilege engine translates it to the underlying
// permission bits. Op lives alongside Player/Channel rather than in
// internal/privilege so both that package and the dispatch handlers can
// depend on the domain model without a cycle.
type Op int

const (
	// Server-scoped ops; resolved against GlobalFlags only.
	OpGrantServerAdmin Op = iota
	OpRevokeServerAdmin
	OpGrantAllowReg
	OpRevokeAllowReg
	OpCreateRegistration
	OpDeleteRegistration
	OpKickServer
	OpEditServerInfo

	// Channel-creation ops, consulted as a set by CREATE_CH.
	OpCreateRegistered
	OpCreateUnregistered
	OpCreateDefault
	OpCreateModerated
	OpCreateSubchanneled

	// Channel-scoped ops, resolved against a PlayerChannelPrivilege.
	OpGrantChannelAdmin
	OpRevokeChannelAdmin
	OpGrantOperator
	OpRevokeOperator
	OpGrantVoice
	OpRevokeVoice
	OpGrantAutoOp
	OpRevokeAutoOp
	OpGrantAutoVoice
	OpRevokeAutoVoice
	OpKickChannel
	OpEditChannelInfo
	OpDeleteChannel
	OpJoinWithoutPassword

	// Self-ops: a player always has these on themselves.
	OpChangeOwnNickname
	OpChangeOwnAttributes
)
