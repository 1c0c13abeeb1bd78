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

package world

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// persistenceDeadline mirrors internal/store's per-call context
// deadline. pendingTTL gives the marker a little slack past it so a
// worker that dies mid-call doesn't wedge the entity forever, the same
// margin the teacher's InstanceRegistry gives a heartbeat past its
// reporting interval.
const (
	persistenceDeadline = 5 * time.Second
	pendingTTL          = persistenceDeadline + time.Second
)

// ErrEntityPending is returned by MarkPending when the same entity
// already has a persistence call in flight.
var ErrEntityPending = errors.New("world: entity has a persistence operation in flight")

// AttachPendingStore wires the kv-backed "entity pending" marker. Call
// once at startup; leaving it unattached makes MarkPending a no-op.
func (s *Server) AttachPendingStore(store pendingBackend) {
	s.pending = store
}

// pendingBackend is the subset of kv.KV the marker needs, named here
// rather than imported directly so this file only requires Set/Has/
// Expire/Delete and not the rest of kv.KV's surface.
type pendingBackend interface {
	Has(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func pendingKey(kind string, id uint32) string {
	return fmt.Sprintf("pending:%s:%d", kind, id)
}

// MarkPending records that a persistence call is starting for the
// named entity, rejecting a second concurrent call on the same entity
// with ErrEntityPending. The returned func clears the marker and must
// be called (typically deferred) once the persistence call returns,
// success or failure alike.
func (s *Server) MarkPending(ctx context.Context, kind string, id uint32) (func(), error) {
	if s.pending == nil {
		return func() {}, nil
	}

	key := pendingKey(kind, id)
	has, err := s.pending.Has(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("world: checking pending marker for %s: %w", key, err)
	}
	if has {
		return nil, ErrEntityPending
	}
	if err := s.pending.Set(ctx, key, []byte{1}); err != nil {
		return nil, fmt.Errorf("world: setting pending marker for %s: %w", key, err)
	}
	if err := s.pending.Expire(ctx, key, pendingTTL); err != nil {
		return nil, fmt.Errorf("world: setting pending marker ttl for %s: %w", key, err)
	}

	return func() {
		clearCtx, cancel := context.WithTimeout(context.Background(), persistenceDeadline)
		defer cancel()
		_ = s.pending.Delete(clearCtx, key)
	}, nil
}
