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

package broadcast_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soliloque-go/voiced/internal/broadcast"
	"github.com/soliloque-go/voiced/internal/config"
	"github.com/soliloque-go/voiced/internal/pubsub"
	"github.com/soliloque-go/voiced/internal/reliability"
	"github.com/soliloque-go/voiced/internal/voiceconst"
	"github.com/soliloque-go/voiced/internal/wire"
	"github.com/soliloque-go/voiced/internal/world"
)

type recordingSender struct {
	mu     sync.Mutex
	frames map[uint32][]byte
}

func newRecordingSender() *recordingSender {
	return &recordingSender{frames: make(map[uint32][]byte)}
}

// SendTo records the frame sent to each address, keyed by UDP port. Test
// fixtures below give each player a distinct port equal to their
// public_id so assertions can look frames up by player.
func (s *recordingSender) SendTo(addr net.Addr, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.frames[uint32(addr.(*net.UDPAddr).Port)] = cp
	return nil
}

func newTestServer(t *testing.T) (*world.Server, *world.Player, *world.Player) {
	t.Helper()
	w := world.NewServer(world.Config{WelcomeMessage: "hi", MaxUsers: 10})
	w.Lock()
	_, err := w.CreateDefaultChannel("DEFAULT")
	require.NoError(t, err)

	alice := world.NewPlayer(&net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1})
	alice.PublicID = w.NextPublicID()
	alice.PrivateID = 111
	require.NoError(t, w.Login(alice))

	bob := world.NewPlayer(&net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 2})
	bob.PublicID = w.NextPublicID()
	bob.PrivateID = 222
	require.NoError(t, w.Login(bob))
	w.Unlock()

	return w, alice, bob
}

func testPubSub(t *testing.T) pubsub.PubSub {
	t.Helper()
	ps, err := pubsub.MakePubSub(context.Background(), &config.Config{})
	require.NoError(t, err)
	return ps
}

func TestEngineRelaysToEveryLivePlayer(t *testing.T) {
	w, alice, bob := newTestServer(t)
	ps := testPubSub(t)

	sender := newRecordingSender()
	rel := reliability.NewManager(sender, nil, nil)
	rel.AddPeer(alice.PublicID, alice.RemoteAddr)
	rel.AddPeer(bob.PublicID, bob.RemoteAddr)

	engine := broadcast.NewEngine(ps, w, rel, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	// Give the relay goroutine a moment to subscribe before publishing.
	time.Sleep(10 * time.Millisecond)

	frame := &wire.Frame{
		Class:   voiceconst.ClassControl,
		Command: voiceconst.CmdChanList,
		Payload: []byte("hello"),
	}
	require.NoError(t, engine.Publish(frame))

	require.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.frames) == 2
	}, time.Second, 5*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	aliceFrame := sender.frames[1]
	bobFrame := sender.frames[2]
	require.NotNil(t, aliceFrame)
	require.NotNil(t, bobFrame)

	decodedAlice, err := wire.ParseFrame(aliceFrame)
	require.NoError(t, err)
	assert.Equal(t, alice.PrivateID, decodedAlice.PrivateID)
	assert.Equal(t, alice.PublicID, decodedAlice.PublicID)
	assert.Equal(t, uint32(1), decodedAlice.Counter)

	decodedBob, err := wire.ParseFrame(bobFrame)
	require.NoError(t, err)
	assert.Equal(t, bob.PrivateID, decodedBob.PrivateID)
	assert.Equal(t, bob.PublicID, decodedBob.PublicID)
	assert.Equal(t, uint32(1), decodedBob.Counter)

	assert.Equal(t, uint32(1), alice.F0SCounter, "recipient's counter must advance")
	assert.Equal(t, uint32(1), bob.F0SCounter)
}

func TestEngineSkipsNonLivePlayers(t *testing.T) {
	w := world.NewServer(world.Config{})
	w.Lock()
	_, err := w.CreateDefaultChannel("DEFAULT")
	require.NoError(t, err)
	dying := world.NewPlayer(&net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9})
	dying.PublicID = w.NextPublicID()
	require.NoError(t, w.Login(dying))
	// Simulate the brief window between a reap decision and removal: the
	// session is marked DEAD but hasn't been Disconnect()ed yet.
	dying.State = world.StateDead
	w.Unlock()

	ps := testPubSub(t)
	sender := newRecordingSender()
	rel := reliability.NewManager(sender, nil, nil)

	engine := broadcast.NewEngine(ps, w, rel, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)
	time.Sleep(10 * time.Millisecond)

	frame := &wire.Frame{Class: voiceconst.ClassControl, Command: voiceconst.CmdChanList, Payload: []byte("x")}
	require.NoError(t, engine.Publish(frame))

	time.Sleep(50 * time.Millisecond)
	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Empty(t, sender.frames, "a DEAD player must not receive broadcasts")
}
