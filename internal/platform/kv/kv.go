// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

/*
Package kv defines the opaque key-value storage contract every domain is
built on, together with its Redis and PostgreSQL implementations.

Architecture:

  - Store: get/set/set-if-absent/delete/prefix-scan over raw JSON values.
  - One shared keyspace: domains coordinate via documented key prefixes
    (see the constants package) rather than per-domain tables, because
    several operations read across domains (assignment resolution scans
    user records, student deletion cascades into attendance and leaves).

All values are opaque byte slices; encoding and schema belong to the callers.
*/
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key is absent.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is the storage contract shared by every domain service.
//
// Writes replace the whole value (no merge); last write wins. SetIfAbsent is
// the only conditional primitive — it backs the per-day check-in guard so the
// duplicate check is atomic rather than read-then-write.
type Store interface {
	// Get returns the value at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key, fully replacing any prior value.
	Set(ctx context.Context, key string, value []byte) error

	// SetIfAbsent stores value only when the key does not exist yet.
	// It reports whether the write happened.
	SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// GetByPrefix returns the values of every key starting with prefix,
	// in unspecified order.
	GetByPrefix(ctx context.Context, prefix string) ([][]byte, error)
}
