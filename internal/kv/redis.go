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
	"runtime"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/soliloque-go/voiced/internal/config"
)

// connsPerCPU and maxIdleTime size the Redis connection pool relative
// to the number of available cores, matching the pool the internal/pubsub
// Redis backend uses for the same deployment.
const (
	connsPerCPU = 10
	maxIdleTime = 10 * time.Minute
)

func makeRedisKV(ctx context.Context, cfg *config.Config) (KV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		PoolFIFO:        true,
		PoolSize:        runtime.GOMAXPROCS(0) * connsPerCPU,
		MinIdleConns:    runtime.GOMAXPROCS(0),
		ConnMaxIdleTime: maxIdleTime,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if cfg.Metrics.OTLPEndpoint != "" {
		if err := redisotel.InstrumentTracing(client); err != nil {
			return nil, fmt.Errorf("failed to trace redis: %w", err)
		}
		if err := redisotel.InstrumentMetrics(client); err != nil {
			return nil, fmt.Errorf("failed to instrument redis metrics: %w", err)
		}
	}

	return &redisKV{client: client}, nil
}

type redisKV struct {
	client *redis.Client
}

func (k *redisKV) Has(ctx context.Context, key string) (bool, error) {
	n, err := k.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("kv: redis EXISTS %q: %w", key, err)
	}
	return n > 0, nil
}

func (k *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := k.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("kv: redis GET %q: %w", key, err)
	}
	return v, nil
}

func (k *redisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := k.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv: redis SET %q: %w", key, err)
	}
	return nil
}

func (k *redisKV) Delete(ctx context.Context, key string) error {
	if err := k.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv: redis DEL %q: %w", key, err)
	}
	return nil
}

func (k *redisKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return k.Delete(ctx, key)
	}
	if err := k.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("kv: redis EXPIRE %q: %w", key, err)
	}
	return nil
}

func (k *redisKV) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	keys, next, err := k.client.Scan(ctx, cursor, match, count).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("kv: redis SCAN: %w", err)
	}
	return keys, next, nil
}

func (k *redisKV) RPush(ctx context.Context, key string, value []byte) (int64, error) {
	n, err := k.client.RPush(ctx, key, value).Result()
	if err != nil {
		return 0, fmt.Errorf("kv: redis RPUSH %q: %w", key, err)
	}
	return n, nil
}

func (k *redisKV) LDrain(ctx context.Context, key string) ([][]byte, error) {
	pipe := k.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("kv: redis LDrain %q: %w", key, err)
	}
	values := rangeCmd.Val()
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out, nil
}

func (k *redisKV) Close() error {
	if err := k.client.Close(); err != nil {
		return fmt.Errorf("kv: closing redis client: %w", err)
	}
	return nil
}
