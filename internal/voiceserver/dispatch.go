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
	"time"

	"go.opentelemetry.io/otel"

	"github.com/soliloque-go/voiced/internal/reliability"
	"github.com/soliloque-go/voiced/internal/voiceconst"
	"github.com/soliloque-go/voiced/internal/wire"
	"github.com/soliloque-go/voiced/internal/world"
)

// persistenceDeadline bounds every RegistrationStore call a handler
// makes; an expired call is treated as failed, per §5.
const persistenceDeadline = 5 * time.Second

// persistenceContext derives a bounded context for a single persistence
// call from a handler's request context.
func persistenceContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, persistenceDeadline)
}

// handlePacket runs one received datagram through §4.B framing, the
// ACK/control split, duplicate detection, and the per-command handler
// table. The whole body (after the cheap ACK-class short-circuit) runs
// under the domain model's single exclusive lock, per §5's concurrency
// model: handlers are short, and the lock-acquire-per-packet cost is
// preferred over fine-grained locking across the channel/player cycle.
func (s *Server) handlePacket(ctx context.Context, addr *net.UDPAddr, data []byte) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handlePacket")
	defer span.End()

	f, err := wire.ParseFrame(data)
	if err != nil {
		s.logger.Debug("voiceserver: dropping malformed packet", "addr", addr.String(), "error", err)
		return
	}

	if f.Class == voiceconst.ClassAck {
		s.handleAck(f)
		return
	}

	s.world.Lock()
	defer s.world.Unlock()

	player := s.resolvePlayer(addr, f)
	if player == nil {
		if f.Command != voiceconst.CmdLogin && f.Command != voiceconst.CmdLoginExisting {
			s.logger.Debug("voiceserver: control packet from unrecognized session dropped",
				"addr", addr.String(), "command", f.Command)
			return
		}
		player = s.sessions.start(addr)
	}

	duplicate := reliability.IsDuplicate(player.F0RCounter, f.Counter)
	if !duplicate {
		player.F0RCounter = f.Counter
	}
	s.sendAck(addr, f.PrivateID, f.PublicID, f.Counter)
	if duplicate {
		// Re-ACKed, not re-applied: §4.C's documented loss/duplicate policy.
		return
	}

	if player.State != world.StateLive && f.Command != voiceconst.CmdLogin && f.Command != voiceconst.CmdLoginExisting {
		s.logger.Debug("voiceserver: non-LOGIN command from unauthenticated session dropped",
			"addr", addr.String(), "command", f.Command)
		return
	}

	handler, ok := s.handlers[f.Command]
	if !ok {
		s.logger.Debug("voiceserver: unknown command dropped", "command", f.Command)
		return
	}
	handler(ctx, s, addr, player, f)
}

// resolvePlayer finds the session a packet belongs to: a live player
// indexed by the private_id it carries, or a pending UNAUTHENTICATED
// session indexed by remote address. A zero private_id always means
// "not logged in yet" (voiceconst.ParrotPublicID reserves 0 the same
// way on the public_id side).
func (s *Server) resolvePlayer(addr *net.UDPAddr, f *wire.Frame) *world.Player {
	if f.PrivateID != 0 {
		if p, ok := s.world.PlayerByPrivateID(f.PrivateID); ok {
			return p
		}
	}
	return s.sessions.lookup(addr)
}

// handleAck drops the matching retained packet from the reliability
// layer's resend queue. Acks are never themselves acked or retried.
func (s *Server) handleAck(f *wire.Frame) {
	ack, err := wire.DecodeAckPayload(f.Payload)
	if err != nil {
		s.logger.Debug("voiceserver: dropping malformed ack", "error", err)
		return
	}
	s.rel.Ack(f.PublicID, ack.Counter)
}

// sendAck sends the reliability-obligation ACK for an inbound control
// packet. It bypasses internal/reliability entirely: ACK packets carry
// no counter of their own to retry, per §4.C.
func (s *Server) sendAck(addr *net.UDPAddr, privateID, publicID, counter uint32) {
	payload := (&wire.AckPayload{Counter: counter}).Encode()
	frame := &wire.Frame{
		Class:     voiceconst.ClassAck,
		Command:   voiceconst.CmdAck,
		PrivateID: privateID,
		PublicID:  publicID,
		Payload:   payload,
	}
	if err := s.conn.SendTo(addr, frame.Encode()); err != nil {
		s.logger.Warn("voiceserver: sending ack", "addr", addr.String(), "error", err)
	}
}

// sendToPlayer sends a single-recipient control packet through the
// reliability layer, stamping and advancing p's own f0_s_counter.
// Callers must hold s.world.Lock().
func (s *Server) sendToPlayer(p *world.Player, cmd voiceconst.Command, payload []byte) error {
	counter := p.F0SCounter + 1
	frame := &wire.Frame{
		Class:     voiceconst.ClassControl,
		Command:   cmd,
		PrivateID: p.PrivateID,
		PublicID:  p.PublicID,
		Counter:   counter,
		Payload:   payload,
	}
	if err := s.rel.Send(p.PublicID, counter, frame.Encode()); err != nil {
		return err
	}
	p.F0SCounter = counter
	return nil
}

// broadcastFrame publishes a notification to every connected player via
// internal/broadcast's template-then-personalise engine (§4.G). Caller
// need not hold s.world.Lock(): Publish only touches the pubsub
// transport, never the domain model.
func (s *Server) broadcastFrame(cmd voiceconst.Command, payload []byte) error {
	frame := &wire.Frame{Class: voiceconst.ClassControl, Command: cmd, Payload: payload}
	return s.bcast.Publish(frame)
}

// recordOutcome is the metrics hook every handler calls at each exit
// point, giving §8's outcome buckets (ok/denied/malformed/precondition/
// persistence) a single place to land.
func (s *Server) recordOutcome(cmd voiceconst.Command, outcome string) {
	if s.m == nil {
		return
	}
	s.m.RecordCommandHandled(cmd.String(), outcome)
}

// destroySession tears a player down: removes them from the domain
// model, stops tracking their reliability queue, and broadcasts their
// departure. Used by the ping-timeout reap sweep, dead-peer detection,
// and KICK_SERVER. Caller must hold s.world.Lock().
func (s *Server) destroySession(publicID uint32, reason string) {
	s.rel.RemovePeer(publicID)
	s.world.Disconnect(publicID)
	if s.m != nil {
		s.m.RecordSessionReaped()
	}
	notify := &wire.DisconnectNotify{PublicID: publicID, Reason: disconnectReasonCode(reason)}
	if err := s.broadcastFrame(voiceconst.CmdDisconnect, notify.Encode()); err != nil {
		s.logger.Warn("voiceserver: broadcasting disconnect", "publicID", publicID, "error", err)
	}
}

// disconnectReasonCode maps a human reason string onto the wire's
// DISCONNECT reason code. Any reason without a code of its own (such as
// an explicit DISCONNECT) is sent as disconnectReasonExplicit.
func disconnectReasonCode(reason string) uint32 {
	switch reason {
	case "ping timeout":
		return disconnectReasonPingTimeout
	case "reliability gave up":
		return disconnectReasonReliabilityGaveUp
	case "kicked":
		return disconnectReasonKicked
	default:
		return disconnectReasonExplicit
	}
}

const (
	disconnectReasonExplicit         uint32 = 0
	disconnectReasonPingTimeout      uint32 = 1
	disconnectReasonReliabilityGaveUp uint32 = 2
	disconnectReasonKicked           uint32 = 3
)
