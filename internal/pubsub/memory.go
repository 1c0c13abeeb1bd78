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

package pubsub

import (
	"sync"

	"github.com/soliloque-go/voiced/internal/config"
)

func makeInMemoryPubSub(_ *config.Config) (PubSub, error) {
	return &inMemoryPubSub{
		topics: make(map[string]map[*inMemorySubscription]struct{}),
	}, nil
}

// inMemoryPubSub is a single-process topic broker: each Publish fans a
// message out to every currently-registered subscriber channel for
// that topic. It exists so a single voiced instance can run the
// broadcast engine without a Redis dependency.
type inMemoryPubSub struct {
	mu     sync.Mutex
	topics map[string]map[*inMemorySubscription]struct{}
}

func (ps *inMemoryPubSub) Publish(topic string, message []byte) error {
	ps.mu.Lock()
	subs := make([]*inMemorySubscription, 0, len(ps.topics[topic]))
	for s := range ps.topics[topic] {
		subs = append(subs, s)
	}
	ps.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- message:
		default:
			// Slow subscriber: drop rather than block the publisher, the
			// same trade-off the broadcast engine already makes for a
			// dead or congested per-peer socket write.
		}
	}
	return nil
}

func (ps *inMemoryPubSub) Subscribe(topic string) Subscription {
	s := &inMemorySubscription{
		ps:    ps,
		topic: topic,
		ch:    make(chan []byte, 64),
	}
	ps.mu.Lock()
	if ps.topics[topic] == nil {
		ps.topics[topic] = make(map[*inMemorySubscription]struct{})
	}
	ps.topics[topic][s] = struct{}{}
	ps.mu.Unlock()
	return s
}

func (ps *inMemoryPubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.topics = make(map[string]map[*inMemorySubscription]struct{})
	return nil
}

type inMemorySubscription struct {
	ps    *inMemoryPubSub
	topic string
	ch    chan []byte

	closeOnce sync.Once
}

func (s *inMemorySubscription) Close() error {
	s.closeOnce.Do(func() {
		s.ps.mu.Lock()
		delete(s.ps.topics[s.topic], s)
		s.ps.mu.Unlock()
		close(s.ch)
	})
	return nil
}

func (s *inMemorySubscription) Channel() <-chan []byte {
	return s.ch
}
