// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/constants"
)

// SessionStore tracks opaque refresh tokens.
//
// Only the SHA-256 hash of a token is stored, so a dump of Redis cannot be
// replayed as live sessions. Expiry is enforced by the key TTL.
type SessionStore interface {
	// Create registers a refresh session for the user, valid for ttl.
	Create(ctx context.Context, tokenHash, userID string, ttl time.Duration) error

	// Find resolves a token hash to its user ID.
	// Returns apperr.Unauthorized when the session is unknown or expired.
	Find(ctx context.Context, tokenHash string) (string, error)

	// Delete revokes the session. Revoking an absent session is not an error.
	Delete(ctx context.Context, tokenHash string) error
}

// RedisSessionStore implements [SessionStore] on Redis.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed [SessionStore].
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixRefreshToken + tokenHash
}

// Create registers a refresh session keyed by the token hash.
func (store *RedisSessionStore) Create(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	if err := store.client.Set(ctx, sessionKey(tokenHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("identity_session_create_failed: %w", err)
	}
	return nil
}

// Find resolves a token hash to the owning user ID.
func (store *RedisSessionStore) Find(ctx context.Context, tokenHash string) (string, error) {
	userID, err := store.client.Get(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.Unauthorized("Invalid or expired refresh token")
		}
		return "", fmt.Errorf("identity_session_find_failed: %w", err)
	}
	return userID, nil
}

// Delete revokes the session.
func (store *RedisSessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := store.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("identity_session_delete_failed: %w", err)
	}
	return nil
}
