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

	"github.com/soliloque-go/voiced/internal/voiceconst"
	"github.com/soliloque-go/voiced/internal/wire"
	"github.com/soliloque-go/voiced/internal/world"
)

// handlePing records the liveness timestamp and answers with PONG. The
// client is expected to PING roughly every 10s; reapTick drops any
// player silent past the configured timeout.
func handlePing(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handlePing")
	defer span.End()

	player.LastPingReceivedAt = s.clock.Now()
	if err := s.sendToPlayer(player, voiceconst.CmdPong, (wire.PingPong{}).Encode()); err != nil {
		s.logger.Warn("voiceserver: sending PONG", "publicID", player.PublicID, "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}

// handleKickServer removes the target from the server entirely,
// broadcasting the event and sending the victim a terminal
// notification in addition to the standard disconnect broadcast.
func handleKickServer(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleKickServer")
	defer span.End()

	req, err := wire.DecodeKickRequest(f.Payload)
	if err != nil {
		s.recordOutcome(f.Command, "malformed")
		return
	}
	if !s.priv.May(player, world.OpKickServer, nil) {
		s.recordOutcome(f.Command, "denied")
		return
	}
	target, ok := s.world.Player(req.TargetPublicID)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}

	notify := &wire.KickNotify{TargetPublicID: target.PublicID, ActorPublicID: player.PublicID, Reason: req.Reason}
	if err := s.sendToPlayer(target, voiceconst.CmdKickServer, notify.Encode()); err != nil {
		s.logger.Warn("voiceserver: notifying kicked player", "publicID", target.PublicID, "error", err)
	}
	s.destroySession(target.PublicID, "kicked")
	if err := s.broadcastFrame(voiceconst.CmdKickServer, notify.Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting KICK_SERVER", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}

// handleKickChannel removes the target from their current channel only,
// relocating them to the DEFAULT channel.
func handleKickChannel(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleKickChannel")
	defer span.End()

	req, err := wire.DecodeKickRequest(f.Payload)
	if err != nil {
		s.recordOutcome(f.Command, "malformed")
		return
	}

	target, ok := s.world.Player(req.TargetPublicID)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}
	ch, ok := s.world.Channel(target.InChannel)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}
	if !s.priv.May(player, world.OpKickChannel, ch) {
		s.recordOutcome(f.Command, "denied")
		return
	}

	if err := s.world.KickFromChannel(target.PublicID); err != nil {
		s.logger.Debug("voiceserver: KICK_CHANNEL failed", "error", err)
		s.recordOutcome(f.Command, "precondition")
		return
	}

	notify := &wire.KickNotify{TargetPublicID: target.PublicID, ActorPublicID: player.PublicID, Reason: req.Reason}
	if err := s.broadcastFrame(voiceconst.CmdKickChannel, notify.Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting KICK_CHANNEL", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}
