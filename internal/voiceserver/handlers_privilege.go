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
	"net"

	"go.opentelemetry.io/otel"

	"github.com/soliloque-go/voiced/internal/store/models"
	"github.com/soliloque-go/voiced/internal/voiceconst"
	"github.com/soliloque-go/voiced/internal/wire"
	"github.com/soliloque-go/voiced/internal/world"
)

// chanPrivGrantOps and chanPrivRevokeOps map a (right_bit_offset,
// on_off) pair from the wire onto
// the named Op the privilege engine checks, per §4.E's fixed
// bit-to-(grant-op,revoke-op) table. rightOffset is the bit position
// within voiceconst.ChannelPrivilege (0=Admin, 1=Operator, 2=Voice,
// 3=AutoOp, 4=AutoVoice).
var chanPrivGrantOps = []world.Op{
	world.OpGrantChannelAdmin,
	world.OpGrantOperator,
	world.OpGrantVoice,
	world.OpGrantAutoOp,
	world.OpGrantAutoVoice,
}

var chanPrivRevokeOps = []world.Op{
	world.OpRevokeChannelAdmin,
	world.OpRevokeOperator,
	world.OpRevokeVoice,
	world.OpRevokeAutoOp,
	world.OpRevokeAutoVoice,
}

var chanPrivBits = []voiceconst.ChannelPrivilege{
	voiceconst.ChanPrivAdmin,
	voiceconst.ChanPrivOperator,
	voiceconst.ChanPrivVoice,
	voiceconst.ChanPrivAutoOp,
	voiceconst.ChanPrivAutoVoice,
}

// handleChangePlChannelPriv grants or revokes one channel-privilege bit
// on the target player, bound to the actor's current channel.
func handleChangePlChannelPriv(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleChangePlChannelPriv")
	defer span.End()

	req, err := wire.DecodeChangePlPrivRequest(f.Payload)
	if err != nil || !req.OnOff.Valid() || int(req.RightOffset) >= len(chanPrivBits) {
		s.recordOutcome(f.Command, "malformed")
		return
	}

	target, ok := s.world.Player(req.TargetPublicID)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}
	ch, ok := s.world.Channel(player.InChannel)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}

	op := chanPrivGrantOps[req.RightOffset]
	if req.OnOff == voiceconst.Revoke {
		op = chanPrivRevokeOps[req.RightOffset]
	}
	if !s.priv.May(player, op, ch) {
		s.recordOutcome(f.Command, "denied")
		return
	}

	bit := chanPrivBits[req.RightOffset]
	key := world.PlayerKey(target.PublicID)
	if target.Registered() {
		key = world.RegistrationKey(target.RegistrationID)
	}
	current := ch.Privileges[key]
	if req.OnOff == voiceconst.Grant {
		current |= bit
	} else {
		current &^= bit
	}
	ch.Privileges[key] = current

	if target.Registered() && s.store != nil {
		pctx, cancel := persistenceContext(ctx)
		defer cancel()
		clear, err := s.world.MarkPending(pctx, "registration", target.RegistrationID)
		if err != nil {
			s.logger.Warn("voiceserver: registration pending for CHANGE_PL_CH_PRIV", "error", err)
			if req.OnOff == voiceconst.Grant {
				ch.Privileges[key] = current &^ bit
			} else {
				ch.Privileges[key] = current | bit
			}
			s.recordOutcome(f.Command, "transient")
			return
		}
		defer clear()
		if err := s.store.SetPrivilege(pctx, models.PlayerChannelPrivilege{
			ServerID: s.serverID, ChannelID: ch.ID, RegistrationID: target.RegistrationID,
			Privileges: uint8(current),
		}); err != nil {
			s.logger.Warn("voiceserver: persisting channel privilege", "error", err)
			if req.OnOff == voiceconst.Grant {
				ch.Privileges[key] = current &^ bit
			} else {
				ch.Privileges[key] = current | bit
			}
			if s.m != nil {
				s.m.RecordPersistenceError("set_privilege")
			}
			s.recordOutcome(f.Command, "persistence")
			return
		}
	}

	notify := &wire.ChangePlPrivNotify{
		TargetPublicID: target.PublicID, OnOff: req.OnOff, RightOffset: req.RightOffset,
		ActorPublicID: player.PublicID,
	}
	if err := s.broadcastFrame(voiceconst.CmdChangePlChPriv, notify.Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting CHANGE_PL_CHPRIV", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}

// handleChangePlServerPriv grants or revokes a server-scoped global
// flag on the target player. RightOffset 0 selects ServerAdmin, 1
// selects AllowReg, 2 selects Registered itself: revoking Registered
// deletes the underlying Registration and rebinds every channel
// privilege it held onto the now-unregistered player, per
// ctl_change_player.c's GLOBAL_FLAG_REGISTERED special case.
func handleChangePlServerPriv(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleChangePlServerPriv")
	defer span.End()

	req, err := wire.DecodeChangePlPrivRequest(f.Payload)
	if err != nil || !req.OnOff.Valid() {
		s.recordOutcome(f.Command, "malformed")
		return
	}

	target, ok := s.world.Player(req.TargetPublicID)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}

	var flag voiceconst.GlobalFlag
	var grantOp, revokeOp world.Op
	switch req.RightOffset {
	case 0:
		flag, grantOp, revokeOp = voiceconst.FlagServerAdmin, world.OpGrantServerAdmin, world.OpRevokeServerAdmin
	case 1:
		flag, grantOp, revokeOp = voiceconst.FlagAllowReg, world.OpGrantAllowReg, world.OpRevokeAllowReg
	case 2:
		flag, grantOp, revokeOp = voiceconst.FlagRegistered, world.OpCreateRegistration, world.OpDeleteRegistration
	default:
		s.recordOutcome(f.Command, "malformed")
		return
	}
	op := grantOp
	if req.OnOff == voiceconst.Revoke {
		op = revokeOp
	}
	if !s.priv.May(player, op, nil) {
		s.recordOutcome(f.Command, "denied")
		return
	}

	if req.OnOff == voiceconst.Revoke && flag == voiceconst.FlagRegistered && target.Registered() {
		if !s.deleteRegistration(ctx, f, target) {
			return
		}
	}

	if req.OnOff == voiceconst.Grant {
		target.GlobalFlags |= flag
	} else {
		target.GlobalFlags &^= flag
	}

	notify := &wire.ChangePlPrivNotify{
		TargetPublicID: target.PublicID, OnOff: req.OnOff, RightOffset: req.RightOffset,
		ActorPublicID: player.PublicID,
	}
	if err := s.broadcastFrame(voiceconst.CmdChangePlSvPriv, notify.Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting CHANGE_PL_SVPRIV", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}

// deleteRegistration unpersists target's Registration, drops it from the
// world's registration cache, and rebinds every channel privilege bound
// to it onto target's live PublicID, so
// the player keeps the rights they were exercising for the rest of
// this session. Reports its own outcome and returns false on failure,
// so the caller can bail out without also clearing FlagRegistered.
func (s *Server) deleteRegistration(ctx context.Context, f *wire.Frame, target *world.Player) bool {
	regID := target.RegistrationID

	if s.store != nil {
		pctx, cancel := persistenceContext(ctx)
		defer cancel()
		clear, err := s.world.MarkPending(pctx, "registration", regID)
		if err != nil {
			s.logger.Warn("voiceserver: registration pending for CHANGE_PL_SVPRIV", "registrationID", regID, "error", err)
			s.recordOutcome(f.Command, "transient")
			return false
		}
		defer clear()
		if err := s.store.UnregisterPlayer(pctx, s.serverID, regID); err != nil {
			s.logger.Warn("voiceserver: unpersisting registration", "registrationID", regID, "error", err)
			if s.m != nil {
				s.m.RecordPersistenceError("unregister_player")
			}
			s.recordOutcome(f.Command, "persistence")
			return false
		}
	}

	s.world.EachChannel(func(ch *world.Channel) bool {
		ch.RebindRegistrationPrivileges(regID, target.PublicID)
		return true
	})
	s.world.RemoveRegistration(regID)
	target.RegistrationID = 0
	return true
}

// handleChangePlStatus updates the sender's own self-managed attribute
// bitfield (mute, away, etc). The target is always the sender: this is
// a self-op, always allowed.
func handleChangePlStatus(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleChangePlStatus")
	defer span.End()

	req, err := wire.DecodeChangePlStatusNotify(f.Payload)
	if err != nil {
		s.recordOutcome(f.Command, "malformed")
		return
	}

	player.PlayerAttributes = req.NewAttributes
	notify := &wire.ChangePlStatusNotify{PublicID: player.PublicID, NewAttributes: player.PlayerAttributes}
	if err := s.broadcastFrame(voiceconst.CmdChangePlStatus, notify.Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting CHANGE_PL_STATUS", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}
