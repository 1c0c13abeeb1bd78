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

// handleMessagePlayer delivers text to a single player; no domain
// mutation, so it is exempt from the usual persist/broadcast steps.
func handleMessagePlayer(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleMessagePlayer")
	defer span.End()

	msg, err := wire.DecodeMessage(f.Payload)
	if err != nil {
		s.recordOutcome(f.Command, "malformed")
		return
	}
	target, ok := s.world.Player(msg.TargetID)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}
	if err := s.sendToPlayer(target, voiceconst.CmdMessagePl, msg.Encode()); err != nil {
		s.logger.Warn("voiceserver: delivering MESSAGE_PL", "target", target.PublicID, "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}

// handleMessageChannel delivers text to every member of a channel.
func handleMessageChannel(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleMessageChannel")
	defer span.End()

	msg, err := wire.DecodeMessage(f.Payload)
	if err != nil {
		s.recordOutcome(f.Command, "malformed")
		return
	}
	ch, ok := s.world.Channel(msg.TargetID)
	if !ok {
		s.recordOutcome(f.Command, "precondition")
		return
	}
	for memberID := range ch.Members {
		member, ok := s.world.Player(memberID)
		if !ok {
			continue
		}
		if err := s.sendToPlayer(member, voiceconst.CmdMessageCh, msg.Encode()); err != nil {
			s.logger.Warn("voiceserver: delivering MESSAGE_CH", "target", member.PublicID, "error", err)
		}
	}
	s.recordOutcome(f.Command, "ok")
}

// handleMessageServer broadcasts text to every connected player.
func handleMessageServer(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleMessageServer")
	defer span.End()

	msg, err := wire.DecodeMessage(f.Payload)
	if err != nil {
		s.recordOutcome(f.Command, "malformed")
		return
	}
	if err := s.broadcastFrame(voiceconst.CmdMessageServer, msg.Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting MESSAGE_SERVER", "error", err)
	}
	s.recordOutcome(f.Command, "ok")
}
