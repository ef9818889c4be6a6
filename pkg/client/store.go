// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package client is the session-aware SDK for the attendance API.
//
// # Architecture
//
//   - [Store] persists the session credential and the cached identity.
//   - [TokenManager] owns the refresh decision and the fail-closed policy.
//   - [Client] attaches bearer tokens and retries exactly once on 401.
//   - [Bootstrap] restores a session at startup without a network call.
//
// All state lives in an injected [Store]; the package keeps no globals, so an
// application can run several independent sessions side by side.
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Credential is the persisted session token set. It is written wholesale on
// every refresh; there are no partial updates.
type Credential struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Identity is the cached copy of the signed-in user. The server remains the
// source of truth; this cache only makes startup instant.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	Role      string `json:"role"`
	Semester  string `json:"semester,omitempty"`
}

// Store persists the credential and the cached identity. Load calls return
// nil without error when nothing is stored.
type Store interface {
	Save(credential *Credential) error
	Load() (*Credential, error)
	Clear() error

	SaveIdentity(identity *Identity) error
	LoadIdentity() (*Identity, error)
	ClearIdentity() error
}

// # File Store

const (
	credentialFileName = "credential.json"
	identityFileName   = "identity.json"
)

// FileStore keeps the session under two JSON files in one directory, each
// written with 0600 permissions.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a [FileStore].
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("client: create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save replaces the stored credential.
func (store *FileStore) Save(credential *Credential) error {
	return store.writeFile(credentialFileName, credential)
}

// Load returns the stored credential, or nil when absent.
func (store *FileStore) Load() (*Credential, error) {
	var credential Credential
	found, err := store.readFile(credentialFileName, &credential)
	if err != nil || !found {
		return nil, err
	}
	return &credential, nil
}

// Clear removes the stored credential. Clearing an empty store is a no-op.
func (store *FileStore) Clear() error {
	return store.removeFile(credentialFileName)
}

// SaveIdentity replaces the cached identity.
func (store *FileStore) SaveIdentity(identity *Identity) error {
	return store.writeFile(identityFileName, identity)
}

// LoadIdentity returns the cached identity, or nil when absent.
func (store *FileStore) LoadIdentity() (*Identity, error) {
	var identity Identity
	found, err := store.readFile(identityFileName, &identity)
	if err != nil || !found {
		return nil, err
	}
	return &identity, nil
}

// ClearIdentity removes the cached identity.
func (store *FileStore) ClearIdentity() error {
	return store.removeFile(identityFileName)
}

func (store *FileStore) writeFile(name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("client: encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(store.dir, name), raw, 0o600); err != nil {
		return fmt.Errorf("client: write %s: %w", name, err)
	}
	return nil
}

func (store *FileStore) readFile(name string, value any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(store.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("client: read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, value); err != nil {
		return false, fmt.Errorf("client: decode %s: %w", name, err)
	}
	return true, nil
}

func (store *FileStore) removeFile(name string) error {
	if err := os.Remove(filepath.Join(store.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("client: remove %s: %w", name, err)
	}
	return nil
}

// # Memory Store

// MemStore is an in-memory [Store] for tests and short-lived processes.
type MemStore struct {
	mu         sync.Mutex
	credential *Credential
	identity   *Identity
}

// NewMemStore returns an empty [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Save replaces the stored credential.
func (store *MemStore) Save(credential *Credential) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	clone := *credential
	store.credential = &clone
	return nil
}

// Load returns the stored credential, or nil when absent.
func (store *MemStore) Load() (*Credential, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.credential == nil {
		return nil, nil
	}
	clone := *store.credential
	return &clone, nil
}

// Clear removes the stored credential.
func (store *MemStore) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.credential = nil
	return nil
}

// SaveIdentity replaces the cached identity.
func (store *MemStore) SaveIdentity(identity *Identity) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	clone := *identity
	store.identity = &clone
	return nil
}

// LoadIdentity returns the cached identity, or nil when absent.
func (store *MemStore) LoadIdentity() (*Identity, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.identity == nil {
		return nil, nil
	}
	clone := *store.identity
	return &clone, nil
}

// ClearIdentity removes the cached identity.
func (store *MemStore) ClearIdentity() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.identity = nil
	return nil
}
