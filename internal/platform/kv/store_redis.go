// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// scanBatchSize bounds each SCAN iteration; 256 keeps round trips low
// without large reply payloads.
const scanBatchSize = 256

// RedisStore implements [Store] on a Redis database.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed [Store].
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value at key, or ErrKeyNotFound.
func (store *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := store.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("kv: redis get %q: %w", key, err)
	}
	return value, nil
}

// Set stores value at key with no expiry, fully replacing any prior value.
func (store *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := store.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv: redis set %q: %w", key, err)
	}
	return nil
}

// SetIfAbsent stores value only when key does not exist, via SETNX.
func (store *RedisStore) SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	created, err := store.client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("kv: redis setnx %q: %w", key, err)
	}
	return created, nil
}

// Delete removes the key.
func (store *RedisStore) Delete(ctx context.Context, key string) error {
	if err := store.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv: redis del %q: %w", key, err)
	}
	return nil
}

// GetByPrefix scans the keyspace for prefix* and fetches values in batches.
//
// SCAN (not KEYS) keeps the server responsive; MGET per batch keeps the
// number of round trips proportional to result size, not keyspace size.
func (store *RedisStore) GetByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	var results [][]byte
	var cursor uint64

	for {
		keys, nextCursor, err := store.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("kv: redis scan %q: %w", prefix, err)
		}

		if len(keys) > 0 {
			values, err := store.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("kv: redis mget: %w", err)
			}
			for _, value := range values {
				// A key can expire between SCAN and MGET; skip the hole.
				if value == nil {
					continue
				}
				if text, ok := value.(string); ok {
					results = append(results, []byte(text))
				}
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			return results, nil
		}
	}
}
