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

package reliability_test

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soliloque-go/voiced/internal/reliability"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendTo(addr net.Addr, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, addr.String())
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testAddr(t *testing.T) net.Addr {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:9000")
	require.NoError(t, err)
	return addr
}

func TestAckRemovesFromResendQueue(t *testing.T) {
	sender := &fakeSender{}
	clock := newFakeClock()
	m := reliability.NewManager(sender, clock, nil)
	m.AddPeer(1, testAddr(t))

	require.NoError(t, m.Send(1, 1, []byte("payload")))
	assert.Equal(t, 1, sender.count())

	m.Ack(1, 1)

	clock.Advance(reliability.InitialBackoff * 2)
	dead := m.Tick()
	assert.Empty(t, dead)
	assert.Equal(t, 1, sender.count(), "acked packet must not be resent")
}

func TestTickResendsUnackedPacketAfterBackoff(t *testing.T) {
	sender := &fakeSender{}
	clock := newFakeClock()
	m := reliability.NewManager(sender, clock, nil)
	m.AddPeer(1, testAddr(t))

	require.NoError(t, m.Send(1, 1, []byte("payload")))
	assert.Equal(t, 1, sender.count())

	// Not due yet.
	dead := m.Tick()
	assert.Empty(t, dead)
	assert.Equal(t, 1, sender.count())

	clock.Advance(reliability.InitialBackoff)
	dead = m.Tick()
	assert.Empty(t, dead)
	assert.Equal(t, 2, sender.count(), "overdue packet should be resent")
}

func TestTickDeclaresPeerDeadAfterMaxRetries(t *testing.T) {
	sender := &fakeSender{}
	clock := newFakeClock()
	m := reliability.NewManager(sender, clock, nil)
	m.AddPeer(7, testAddr(t))

	require.NoError(t, m.Send(7, 1, []byte("payload")))

	delay := reliability.InitialBackoff
	for i := 0; i < reliability.MaxRetries; i++ {
		clock.Advance(delay)
		dead := m.Tick()
		assert.Empty(t, dead)
		delay *= 2
		if delay > reliability.MaxBackoff {
			delay = reliability.MaxBackoff
		}
	}

	clock.Advance(delay)
	dead := m.Tick()
	require.Len(t, dead, 1)
	assert.Equal(t, uint32(7), dead[0].PublicID)
}

func TestTickDeclaresPeerDeadAfterTotalTimeout(t *testing.T) {
	sender := &fakeSender{}
	clock := newFakeClock()
	m := reliability.NewManager(sender, clock, nil)
	m.AddPeer(3, testAddr(t))

	require.NoError(t, m.Send(3, 1, []byte("payload")))

	clock.Advance(reliability.DeadPeerTimeout + time.Second)
	dead := m.Tick()
	require.Len(t, dead, 1)
	assert.Equal(t, uint32(3), dead[0].PublicID)
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, reliability.IsDuplicate(0, 1), "first counter above zero is not a duplicate")
	assert.True(t, reliability.IsDuplicate(5, 5), "re-seeing the high-water mark is a duplicate")
	assert.True(t, reliability.IsDuplicate(5, 3), "a counter below the high-water mark is a duplicate")
	assert.False(t, reliability.IsDuplicate(5, 6), "advancing past the high-water mark is not a duplicate")
}

func TestRemovePeerDropsResendQueue(t *testing.T) {
	sender := &fakeSender{}
	clock := newFakeClock()
	m := reliability.NewManager(sender, clock, nil)
	m.AddPeer(1, testAddr(t))
	require.NoError(t, m.Send(1, 1, []byte("payload")))

	m.RemovePeer(1)

	clock.Advance(reliability.DeadPeerTimeout * 2)
	dead := m.Tick()
	assert.Empty(t, dead, "removed peer must not be swept")
}
