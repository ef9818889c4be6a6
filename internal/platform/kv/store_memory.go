// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package kv

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-process [Store] used by unit tests and local tooling.
//
// # Concurrency
//
// Guarded by a single RWMutex; SetIfAbsent is atomic under the write lock,
// matching the semantics the real backends provide.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory [Store].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get returns the value at key, or ErrKeyNotFound.
func (store *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return cloneBytes(value), nil
}

// Set stores value at key.
func (store *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.entries[key] = cloneBytes(value)
	return nil
}

// SetIfAbsent stores value only when key is new.
func (store *MemoryStore) SetIfAbsent(_ context.Context, key string, value []byte) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.entries[key]; exists {
		return false, nil
	}
	store.entries[key] = cloneBytes(value)
	return true, nil
}

// Delete removes the key.
func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.entries, key)
	return nil
}

// GetByPrefix returns every value whose key starts with prefix.
func (store *MemoryStore) GetByPrefix(_ context.Context, prefix string) ([][]byte, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var results [][]byte
	for key, value := range store.entries {
		if strings.HasPrefix(key, prefix) {
			results = append(results, cloneBytes(value))
		}
	}
	return results, nil
}

// Len reports the number of stored keys. Test helper.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.entries)
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
