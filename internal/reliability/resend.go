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

package reliability

import (
	"fmt"
	"net"
)

// Send delivers data to publicID immediately and retains it in that peer's
// resend queue under counter until Ack(publicID, counter) arrives. counter
// is the value already stamped into data's header (callers own framing).
func (m *Manager) Send(publicID, counter uint32, data []byte) error {
	m.mu.Lock()
	p, ok := m.peers[publicID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("reliability: unknown peer %d", publicID)
	}
	p.pending[counter] = &pendingPacket{
		data:      data,
		firstSent: m.clock.Now(),
		lastSent:  m.clock.Now(),
		nextDelay: InitialBackoff,
	}
	addr := p.addr
	m.mu.Unlock()

	return m.sender.SendTo(addr, data)
}

// Ack drops the retained packet for publicID/counter, if any. Acking an
// unknown counter or peer is a no-op (the packet may already have been
// acked, or the peer may have been reaped).
func (m *Manager) Ack(publicID, counter uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.peers[publicID]
	if !ok {
		return
	}
	delete(p.pending, counter)
}

// DeadPeer is one peer the Tick sweep has declared unreachable: its
// resend queue has a packet that exceeded MaxRetries attempts or
// DeadPeerTimeout total elapsed time.
type DeadPeer struct {
	PublicID uint32
}

// Tick resends every due packet across all tracked peers and returns the
// set of peers that must now be torn down. Call it on a fixed-interval
// timer from the server's event loop; it does not block on I/O beyond the
// individual SendTo calls.
func (m *Manager) Tick() []DeadPeer {
	type resend struct {
		addr net.Addr
		data []byte
	}

	m.mu.Lock()
	var toResend []resend
	var dead []DeadPeer
	nowT := m.clock.Now()

	for publicID, p := range m.peers {
		peerDead := false
		for _, pkt := range p.pending {
			if nowT.Sub(pkt.lastSent) < pkt.nextDelay {
				continue
			}
			if pkt.attempts >= MaxRetries || nowT.Sub(pkt.firstSent) >= DeadPeerTimeout {
				peerDead = true
				break
			}
			pkt.attempts++
			pkt.lastSent = nowT
			pkt.nextDelay *= 2
			if pkt.nextDelay > MaxBackoff {
				pkt.nextDelay = MaxBackoff
			}
			toResend = append(toResend, resend{addr: p.addr, data: pkt.data})
			if m.metrics != nil {
				m.metrics.RecordRetransmit()
			}
		}
		if peerDead {
			dead = append(dead, DeadPeer{PublicID: publicID})
			if m.metrics != nil {
				m.metrics.RecordDeadPeer()
			}
		}
	}
	m.mu.Unlock()

	for _, r := range toResend {
		_ = m.sender.SendTo(r.addr, r.data)
	}
	return dead
}
