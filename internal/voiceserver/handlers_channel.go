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

// handleSwitchChan moves the sender into a different channel, subject
// to the target's PASSWORD flag: allowed if the target has no password,
// the actor holds JoinWithoutPassword in the target, or the supplied
// password matches.
func handleSwitchChan(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleSwitchChan")
	defer span.End()

	req, err := wire.DecodeSwitchChanRequest(f.Payload)
	if err != nil {
		s.logger.Debug("voiceserver: malformed SWITCHCHAN payload", "error", err)
		s.recordOutcome(f.Command, "malformed")
		return
	}

	target, ok := s.world.Channel(req.TargetChannelID)
	if !ok {
		s.logger.Debug("voiceserver: SWITCHCHAN to unknown channel", "channelID", req.TargetChannelID)
		s.recordOutcome(f.Command, "precondition")
		return
	}

	if target.HasPassword() && target.Password != req.Password && !s.priv.May(player, world.OpJoinWithoutPassword, target) {
		s.recordOutcome(f.Command, "denied")
		return
	}

	fromID := player.InChannel
	if err := s.world.MovePlayer(player.PublicID, target.ID); err != nil {
		s.logger.Debug("voiceserver: SWITCHCHAN move failed", "error", err)
		s.recordOutcome(f.Command, "precondition")
		return
	}

	notify := &wire.SwitchChanNotify{
		ActorPublicID: player.PublicID,
		FromChannelID: fromID,
		ToChannelID:   target.ID,
		NewPrivileges: target.PrivilegeFor(player),
	}
	if err := s.broadcastFrame(voiceconst.CmdSwitchChan, notify.Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting SWITCHCHAN", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}

// handleCreateCh creates a new channel, checking the union of privilege
// ops implied by the requested flags before allocating anything.
func handleCreateCh(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleCreateCh")
	defer span.End()

	req, err := wire.DecodeCreateChRequest(f.Payload)
	if err != nil {
		s.logger.Debug("voiceserver: malformed CREATE_CH payload", "error", err)
		s.recordOutcome(f.Command, "malformed")
		return
	}

	var parent *world.Channel
	if req.ParentID != 0 {
		p, ok := s.world.Channel(req.ParentID)
		if !ok {
			s.recordOutcome(f.Command, "precondition")
			return
		}
		parent = p
	}

	for _, op := range world.RequiredCreateOps(req.Flags) {
		if !s.priv.May(player, op, parent) {
			s.recordOutcome(f.Command, "denied")
			return
		}
	}

	ch, err := s.world.CreateChannel(req.ParentID, req.Name, req.Topic, req.Description, req.Password, int(req.MaxUsers), req.Flags)
	if err != nil {
		s.logger.Debug("voiceserver: CREATE_CH failed", "error", err)
		s.recordOutcome(f.Command, "precondition")
		return
	}

	if ch.Registered() && s.store != nil {
		pctx, cancel := persistenceContext(ctx)
		defer cancel()
		clear, err := s.world.MarkPending(pctx, "channel", ch.ID)
		if err != nil {
			s.logger.Warn("voiceserver: channel pending for CREATE_CH", "channelID", ch.ID, "error", err)
			_ = s.world.DeleteChannel(ch.ID)
			s.recordOutcome(f.Command, "transient")
			return
		}
		defer clear()
		if err := s.store.RegisterChannel(pctx, models.Channel{
			ID: ch.ID, ServerID: s.serverID, ParentID: ch.ParentID,
			Name: ch.Name, Topic: ch.Topic, Description: ch.Description,
			Flags: uint16(ch.Flags), MaxUsers: ch.MaxUsers, SortOrder: ch.SortOrder,
			Password: ch.Password,
		}); err != nil {
			s.logger.Warn("voiceserver: persisting new channel", "channelID", ch.ID, "error", err)
			_ = s.world.DeleteChannel(ch.ID)
			if s.m != nil {
				s.m.RecordPersistenceError("register_channel")
			}
			s.recordOutcome(f.Command, "persistence")
			return
		}
	}

	notify := &wire.CreateChNotify{ChannelID: ch.ID, ParentID: ch.ParentID, Name: ch.Name, Flags: ch.Flags}
	if err := s.broadcastFrame(voiceconst.CmdCreateCh, notify.Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting CREATE_CH", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}

// handleChanDelete removes an empty channel, or replies
// CHANDELETE_ERROR (carrying the original counter) if it still has
// members or subchannels.
func handleChanDelete(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleChanDelete")
	defer span.End()

	req, err := wire.DecodeSwitchChanRequest(f.Payload) // TargetChannelID-shaped payload, no password field used
	if err != nil {
		s.recordOutcome(f.Command, "malformed")
		return
	}

	ch, ok := s.world.Channel(req.TargetChannelID)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}
	if !s.priv.May(player, world.OpDeleteChannel, ch) {
		s.recordOutcome(f.Command, "denied")
		return
	}

	if !ch.Empty() {
		reply := &wire.ChanDeleteError{ChannelID: ch.ID, OriginalCounter: f.Counter}
		if err := s.sendToPlayer(player, voiceconst.CmdChanDeleteError, reply.Encode()); err != nil {
			s.logger.Warn("voiceserver: sending CHANDELETE_ERROR", "error", err)
		}
		s.recordOutcome(f.Command, "precondition")
		return
	}

	registered := ch.Registered()
	if registered && s.store != nil {
		pctx, cancel := persistenceContext(ctx)
		defer cancel()
		clear, err := s.world.MarkPending(pctx, "channel", ch.ID)
		if err != nil {
			s.logger.Warn("voiceserver: channel pending for CHANDELETE", "channelID", ch.ID, "error", err)
			s.recordOutcome(f.Command, "transient")
			return
		}
		defer clear()
		if err := s.store.UnregisterChannel(pctx, s.serverID, ch.ID); err != nil {
			s.logger.Warn("voiceserver: unpersisting deleted channel", "channelID", ch.ID, "error", err)
			if s.m != nil {
				s.m.RecordPersistenceError("unregister_channel")
			}
			s.recordOutcome(f.Command, "persistence")
			return
		}
	}

	if err := s.world.DeleteChannel(ch.ID); err != nil {
		s.logger.Warn("voiceserver: CHANDELETE failed after persistence committed", "channelID", ch.ID, "error", err)
		s.recordOutcome(f.Command, "precondition")
		return
	}

	if err := s.broadcastFrame(voiceconst.CmdChanDelete, (&wire.ChanDeleteNotify{ChannelID: ch.ID}).Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting CHANDELETE", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}

// handleChangeChInfo edits a channel's descriptive fields, requiring
// the same Operator-implied right as channel kick/delete.
func handleChangeChInfo(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleChangeChInfo")
	defer span.End()

	req, err := wire.DecodeChangeChInfoRequest(f.Payload)
	if err != nil {
		s.recordOutcome(f.Command, "malformed")
		return
	}

	ch, ok := s.world.Channel(req.ChannelID)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}
	if !s.priv.May(player, world.OpEditChannelInfo, ch) {
		s.recordOutcome(f.Command, "denied")
		return
	}

	prevTopic, prevDesc, prevPassword, prevMaxUsers, prevFlags := ch.Topic, ch.Description, ch.Password, ch.MaxUsers, ch.Flags
	ch.Topic = req.Topic
	ch.Description = req.Description
	ch.Password = req.Password
	ch.MaxUsers = int(req.MaxUsers)
	ch.Flags = req.Flags

	if ch.Registered() && s.store != nil {
		pctx, cancel := persistenceContext(ctx)
		defer cancel()
		clear, err := s.world.MarkPending(pctx, "channel", ch.ID)
		if err != nil {
			s.logger.Warn("voiceserver: channel pending for CHANGE_CH_INFO", "channelID", ch.ID, "error", err)
			ch.Topic, ch.Description, ch.Password, ch.MaxUsers, ch.Flags = prevTopic, prevDesc, prevPassword, prevMaxUsers, prevFlags
			s.recordOutcome(f.Command, "transient")
			return
		}
		defer clear()
		if err := s.store.UpdateChannel(pctx, models.Channel{
			ID: ch.ID, ServerID: s.serverID, ParentID: ch.ParentID,
			Name: ch.Name, Topic: ch.Topic, Description: ch.Description,
			Flags: uint16(ch.Flags), MaxUsers: ch.MaxUsers, SortOrder: ch.SortOrder,
			Password: ch.Password,
		}); err != nil {
			s.logger.Warn("voiceserver: persisting channel edit", "channelID", ch.ID, "error", err)
			ch.Topic, ch.Description, ch.Password, ch.MaxUsers, ch.Flags = prevTopic, prevDesc, prevPassword, prevMaxUsers, prevFlags
			if s.m != nil {
				s.m.RecordPersistenceError("update_channel")
			}
			s.recordOutcome(f.Command, "persistence")
			return
		}
	}

	if err := s.broadcastFrame(voiceconst.CmdChangeChInfo, f.Payload); err != nil {
		s.logger.Warn("voiceserver: broadcasting CHANGE_CH_INFO", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}
