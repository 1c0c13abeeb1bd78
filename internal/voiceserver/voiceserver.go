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

// Package voiceserver is the UDP control-plane dispatch loop: it turns
// datagrams into typed commands, runs each one through the five-step
// handler template (parse, ack, lookup, privilege-check, mutate +
// persist + broadcast), and drives the reliability and session-reap
// timers. It is the thing cmd/root.go actually starts.
package voiceserver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"log/slog"

	"github.com/soliloque-go/voiced/internal/broadcast"
	"github.com/soliloque-go/voiced/internal/config"
	"github.com/soliloque-go/voiced/internal/metrics"
	"github.com/soliloque-go/voiced/internal/privilege"
	"github.com/soliloque-go/voiced/internal/reliability"
	"github.com/soliloque-go/voiced/internal/store"
	"github.com/soliloque-go/voiced/internal/voiceconst"
	"github.com/soliloque-go/voiced/internal/wire"
	"github.com/soliloque-go/voiced/internal/world"
)

const tracerName = "voiced"

// Socket is the core's transport collaborator: receive a datagram with
// its sender address, send a datagram to an address. internal/voiceserver
// never touches net.UDPConn directly outside of udpSocket, so tests can
// substitute an in-memory Socket.
type Socket interface {
	RecvFrom(buf []byte) (n int, addr *net.UDPAddr, err error)
	SendTo(addr net.Addr, data []byte) error
	Close() error
}

// Clock abstracts wall-clock reads. It is the same shape as
// internal/reliability.Clock; a production *Server uses the same
// SystemClock value for both.
type Clock = reliability.Clock

// tickInterval is how often the reliability resend sweep and the
// ping-timeout reap sweep run.
const tickInterval = 500 * time.Millisecond

type handlerFunc func(ctx context.Context, s *Server, addr *net.UDPAddr, player *world.Player, f *wire.Frame)

// Server is the process's single UDP control-plane listener: one
// world.Server, wired to the privilege engine, the registration store,
// the reliability layer, and the broadcast engine.
type Server struct {
	cfg          config.Voice
	serverID     uint32
	passwordSalt string

	world *world.Server
	priv  *privilege.Engine
	store store.RegistrationStore
	rel   *reliability.Manager
	bcast *broadcast.Engine
	m     *metrics.Metrics
	logger *slog.Logger
	clock Clock

	conn     Socket
	sessions *sessionTable
	handlers map[voiceconst.Command]handlerFunc

	wg sync.WaitGroup
}

// New builds a Server. serverID is the models.Server row this process
// is running (single-server-per-process, see internal/broadcast's
// Topic doc). passwordSalt is config.Config.PasswordSalt, mixed into
// registration password hashing at rest (internal/store.ComparePassword)
// — unrelated to the wire protocol's own cleartext join password.
// logger and clock may be nil; nil logger falls back to slog.Default(),
// nil clock to reliability.SystemClock.
func New(
	cfg config.Voice,
	serverID uint32,
	passwordSalt string,
	w *world.Server,
	priv *privilege.Engine,
	st store.RegistrationStore,
	rel *reliability.Manager,
	bcast *broadcast.Engine,
	m *metrics.Metrics,
	logger *slog.Logger,
	clock Clock,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = reliability.SystemClock
	}
	s := &Server{
		cfg:          cfg,
		serverID:     serverID,
		passwordSalt: passwordSalt,
		world:        w,
		priv:         priv,
		store:        st,
		rel:          rel,
		bcast:        bcast,
		m:            m,
		logger:       logger,
		clock:        clock,
		sessions:     newSessionTable(),
	}
	s.handlers = s.buildHandlerTable()
	return s
}

func (s *Server) buildHandlerTable() map[voiceconst.Command]handlerFunc {
	return map[voiceconst.Command]handlerFunc{
		voiceconst.CmdLogin:          handleLogin,
		voiceconst.CmdLoginExisting:  handleLogin,
		voiceconst.CmdDisconnect:     handleDisconnect,
		voiceconst.CmdSwitchChan:     handleSwitchChan,
		voiceconst.CmdCreateCh:       handleCreateCh,
		voiceconst.CmdChanDelete:     handleChanDelete,
		voiceconst.CmdChangeChInfo:   handleChangeChInfo,
		voiceconst.CmdChangePlChPriv: handleChangePlChannelPriv,
		voiceconst.CmdChangePlSvPriv: handleChangePlServerPriv,
		voiceconst.CmdChangePlStatus: handleChangePlStatus,
		voiceconst.CmdPing:           handlePing,
		voiceconst.CmdKickServer:     handleKickServer,
		voiceconst.CmdKickChannel:    handleKickChannel,
		voiceconst.CmdMessagePl:      handleMessagePlayer,
		voiceconst.CmdMessageCh:      handleMessageChannel,
		voiceconst.CmdMessageServer:  handleMessageServer,
	}
}

// Run binds conn as the UDP transport and blocks, servicing the accept
// loop and the reliability/reap timers, until ctx is cancelled. The
// broadcast engine's own relay loop (e.Run) is started by the caller
// alongside Run, since it is shared infrastructure cmd/root.go also
// owns the lifetime of.
func (s *Server) Run(ctx context.Context, conn Socket) {
	s.conn = conn

	s.wg.Add(2)
	go s.acceptLoop(ctx)
	go s.tickLoop(ctx)
	s.wg.Wait()
}

// Stop closes the transport, unblocking acceptLoop.
func (s *Server) Stop() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	buf := make([]byte, voiceconst.MaxPacketSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, addr, err := s.conn.RecvFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.logger.Warn("voiceserver: reading from socket", "error", err)
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		s.handlePacket(ctx, addr, data)
	}
}

// tickLoop drives the reliability resend sweep and the ping-timeout
// reap sweep on a fixed interval, per §5's "timer path fires
// ping-timeouts and retransmissions" scheduling model.
func (s *Server) tickLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.resendTick(ctx)
			s.reapTick(ctx)
		}
	}
}

func (s *Server) resendTick(ctx context.Context) {
	_, span := otel.Tracer(tracerName).Start(ctx, "voiceserver.resendTick")
	defer span.End()

	dead := s.rel.Tick()
	if len(dead) == 0 {
		return
	}
	s.world.Lock()
	defer s.world.Unlock()
	for _, d := range dead {
		s.destroySession(d.PublicID, "reliability gave up")
	}
}
