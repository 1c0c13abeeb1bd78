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

package kv

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/soliloque-go/voiced/internal/config"
)

func makeInMemoryKV(_ context.Context, _ *config.Config) (KV, error) {
	return &inMemoryKV{
		kv: xsync.NewMap[string, *kvValue](),
	}, nil
}

// kvValue holds one key's list of values plus an optional expiry. A
// plain string/get value is stored as a one-element list.
type kvValue struct {
	mu     sync.Mutex
	values [][]byte
	expiry time.Time // zero means no expiry
}

func (v *kvValue) expired() bool {
	return !v.expiry.IsZero() && time.Now().After(v.expiry)
}

type inMemoryKV struct {
	kv *xsync.Map[string, *kvValue]
}

func (k *inMemoryKV) Has(_ context.Context, key string) (bool, error) {
	v, ok := k.kv.Load(key)
	if !ok {
		return false, nil
	}
	if v.expired() {
		k.kv.Delete(key)
		return false, nil
	}
	return true, nil
}

func (k *inMemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := k.kv.Load(key)
	if !ok {
		return nil, fmt.Errorf("kv: key %q not found", key)
	}
	if v.expired() {
		k.kv.Delete(key)
		return nil, fmt.Errorf("kv: key %q not found", key)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.values) == 0 {
		return nil, fmt.Errorf("kv: key %q has no values", key)
	}
	return v.values[0], nil
}

func (k *inMemoryKV) Set(_ context.Context, key string, value []byte) error {
	k.kv.Store(key, &kvValue{values: [][]byte{value}})
	return nil
}

func (k *inMemoryKV) Delete(_ context.Context, key string) error {
	k.kv.Delete(key)
	return nil
}

func (k *inMemoryKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	v, ok := k.kv.Load(key)
	if !ok {
		return fmt.Errorf("kv: key %q not found", key)
	}
	if ttl <= 0 {
		k.kv.Delete(key)
		return nil
	}
	v.mu.Lock()
	v.expiry = time.Now().Add(ttl)
	v.mu.Unlock()
	return nil
}

func (k *inMemoryKV) Scan(_ context.Context, _ uint64, match string, _ int64) ([]string, uint64, error) {
	keys := make([]string, 0)
	k.kv.Range(func(key string, v *kvValue) bool {
		if v.expired() {
			k.kv.Delete(key)
			return true
		}
		matched := match == ""
		if !matched {
			matched, _ = path.Match(match, key)
		}
		if matched {
			keys = append(keys, key)
		}
		return true
	})
	// The in-memory backend has no pagination state, so it always
	// reports cursor 0 ("scan complete") after a single pass.
	return keys, 0, nil
}

func (k *inMemoryKV) RPush(_ context.Context, key string, value []byte) (int64, error) {
	v, _ := k.kv.LoadOrStore(key, &kvValue{})
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values = append(v.values, value)
	return int64(len(v.values)), nil
}

func (k *inMemoryKV) LDrain(_ context.Context, key string) ([][]byte, error) {
	v, ok := k.kv.LoadAndDelete(key)
	if !ok {
		return nil, nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.values, nil
}

func (k *inMemoryKV) Close() error {
	return nil
}
