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

// Package reliability implements the reliable-ordered delivery layer on
// top of UDP: duplicate detection against a peer's inbound counter, an
// acknowledgement-tracked resend queue with exponential backoff, and
// dead-peer detection. The counters themselves live on world.Player.
//
// Loss is accepted rather than buffered: a duplicate inbound counter is
// re-ACKed but not re-applied, and a gap in inbound counters is not
// recovered by the layer itself. Handlers above this layer are expected
// to be idempotent where it matters; this is the documented choice
// allowed (and required to be explicit) for the "accept loss" policy.
package reliability

import (
	"net"
	"sync"
	"time"

	"github.com/soliloque-go/voiced/internal/metrics"
)

const (
	// InitialBackoff is the first retransmit delay for an unacknowledged packet.
	InitialBackoff = 200 * time.Millisecond
	// MaxBackoff caps the exponential backoff applied to repeated retransmits.
	MaxBackoff = 2 * time.Second
	// MaxRetries is the number of failed resends after which a peer is declared dead.
	MaxRetries = 10
	// DeadPeerTimeout is the total elapsed time after which a peer is declared
	// dead regardless of retry count.
	DeadPeerTimeout = 30 * time.Second
)

// Sender delivers an already-framed datagram to a peer address. It is the
// only outbound collaborator this package needs; internal/voiceserver's
// Socket satisfies it directly.
type Sender interface {
	SendTo(addr net.Addr, data []byte) error
}

// Clock abstracts wall-clock reads so backoff and dead-peer detection are
// testable without real sleeps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production Clock backed by time.Now.
var SystemClock Clock = systemClock{}

type pendingPacket struct {
	data      []byte
	firstSent time.Time
	lastSent  time.Time
	nextDelay time.Duration
	attempts  int
}

type peerState struct {
	addr    net.Addr
	pending map[uint32]*pendingPacket
}

// Manager tracks every live peer's resend queue and retransmit state. One
// Manager serves the whole server; callers index peers by their public_id.
type Manager struct {
	mu      sync.Mutex
	peers   map[uint32]*peerState
	sender  Sender
	clock   Clock
	metrics *metrics.Metrics
}

// NewManager builds a reliability Manager. metrics may be nil in tests that
// don't care about recorded counters.
func NewManager(sender Sender, clock Clock, m *metrics.Metrics) *Manager {
	if clock == nil {
		clock = SystemClock
	}
	return &Manager{
		peers:   make(map[uint32]*peerState),
		sender:  sender,
		clock:   clock,
		metrics: m,
	}
}

// AddPeer begins tracking a peer's resend queue under publicID. The
// f0_s_counter/f0_r_counter values themselves live on world.Player, not
// here: this package only owns the retained-packet queue and the
// retry/dead-peer bookkeeping keyed by whatever counter the caller
// already assigned. Re-adding an existing publicID resets its queue.
func (m *Manager) AddPeer(publicID uint32, addr net.Addr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers[publicID] = &peerState{
		addr:    addr,
		pending: make(map[uint32]*pendingPacket),
	}
}

// RemovePeer stops tracking a peer and discards its resend queue.
func (m *Manager) RemovePeer(publicID uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.peers, publicID)
}

// IsDuplicate reports whether counter is a duplicate given a peer's
// current inbound high-water mark (world.Player.F0RCounter): at or below
// the mark, it has already been applied and must be re-ACKed but not
// reapplied. A gap above mark+1 is accepted as lost, per this package's
// documented loss policy — callers advance the mark to counter
// themselves when this returns false.
func IsDuplicate(highWaterMark, counter uint32) bool {
	return counter <= highWaterMark
}
