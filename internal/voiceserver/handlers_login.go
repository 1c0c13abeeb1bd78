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

	"github.com/soliloque-go/voiced/internal/store"
	"github.com/soliloque-go/voiced/internal/voiceconst"
	"github.com/soliloque-go/voiced/internal/wire"
	"github.com/soliloque-go/voiced/internal/world"
)

const (
	loginFailBadCredentials uint32 = 1
	loginFailServerFull     uint32 = 2
)

// handleLogin serves both LOGIN and LOGIN_EXISTING: parse credentials,
// match against Registrations, assign identity, place in the DEFAULT
// channel, and reply with LOGIN_OK followed by a CHANLIST and
// PLAYERLIST snapshot addressed to the new player only. Caller already
// holds s.world.Lock() (dispatch.go's handlePacket).
func handleLogin(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleLogin")
	defer span.End()

	req, err := wire.DecodeLoginRequest(f.Payload)
	if err != nil {
		s.logger.Debug("voiceserver: malformed LOGIN payload", "addr", addr.String(), "error", err)
		s.recordOutcome(f.Command, "malformed")
		return
	}

	if s.cfg.MaxUsers > 0 && s.world.PlayerCount() >= s.cfg.MaxUsers {
		s.sendLoginFail(player, loginFailServerFull)
		s.recordOutcome(f.Command, "precondition")
		return
	}

	var reg *world.Registration
	if req.Login != "" {
		found, ok := s.world.RegistrationByName(req.Login)
		if !ok || !store.ComparePassword(s.passwordSalt, req.Password, found.PasswordHash) {
			s.sendLoginFail(player, loginFailBadCredentials)
			s.recordOutcome(f.Command, "denied")
			return
		}
		reg = found
	}

	player.PublicID = s.world.NextPublicID()
	player.PrivateID = world.NextPrivateID()
	player.Nickname = req.Nickname
	if reg != nil {
		player.RegistrationID = reg.ID
		player.GlobalFlags |= voiceconst.FlagRegistered
	}

	if err := s.world.Login(player); err != nil {
		s.logger.Warn("voiceserver: LOGIN could not place player in default channel", "error", err)
		s.recordOutcome(f.Command, "precondition")
		return
	}
	s.sessions.promote(addr)
	s.rel.AddPeer(player.PublicID, addr)

	if err := s.sendToPlayer(player, voiceconst.CmdLoginOK, (&wire.LoginOK{
		PublicID:  player.PublicID,
		PrivateID: player.PrivateID,
	}).Encode()); err != nil {
		s.logger.Warn("voiceserver: sending LOGIN_OK", "publicID", player.PublicID, "error", err)
	}
	if err := s.sendToPlayer(player, voiceconst.CmdChanList, s.chanListSnapshot().Encode()); err != nil {
		s.logger.Warn("voiceserver: sending CHANLIST snapshot", "publicID", player.PublicID, "error", err)
	}
	if err := s.sendToPlayer(player, voiceconst.CmdPlayerList, s.playerListSnapshot().Encode()); err != nil {
		s.logger.Warn("voiceserver: sending PLAYERLIST snapshot", "publicID", player.PublicID, "error", err)
	}
	if s.cfg.WelcomeMessage != "" {
		if err := s.sendToPlayer(player, voiceconst.CmdMessageServer, (&wire.Message{Text: s.cfg.WelcomeMessage}).Encode()); err != nil {
			s.logger.Warn("voiceserver: sending welcome message", "publicID", player.PublicID, "error", err)
		}
	}
	s.recordOutcome(f.Command, "ok")
}

func (s *Server) sendLoginFail(player *world.Player, reason uint32) {
	payload := (&wire.LoginFail{Reason: reason}).Encode()
	frame := &wire.Frame{
		Class:     voiceconst.ClassControl,
		Command:   voiceconst.CmdLoginFail,
		PrivateID: player.PrivateID,
		PublicID:  player.PublicID,
	}
	frame.Payload = payload
	if err := s.conn.SendTo(player.RemoteAddr, frame.Encode()); err != nil {
		s.logger.Warn("voiceserver: sending LOGIN_FAIL", "addr", player.RemoteAddr.String(), "error", err)
	}
}

// handleDisconnect tears down a player's own session on their explicit
// request.
func handleDisconnect(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.handleDisconnect")
	defer span.End()

	if player.State != world.StateLive {
		s.recordOutcome(f.Command, "precondition")
		return
	}
	s.destroySession(player.PublicID, "explicit disconnect")
	s.recordOutcome(f.Command, "ok")
}
