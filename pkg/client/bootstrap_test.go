// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminaramim/mpi-attendence-management/pkg/client"
)

/*
TestBootstrap_RestoresSession verifies startup restore when both a valid
token and a cached identity exist: no network call is needed.
*/
func TestBootstrap_RestoresSession(t *testing.T) {
	store := client.NewMemStore()
	manager := client.NewTokenManager(store, "http://unused", nil)
	require.NoError(t, manager.SaveTokens("access-a", "refresh-r", 3600))
	require.NoError(t, store.SaveIdentity(&client.Identity{
		ID:        "user-1",
		Email:     "student@mpi.edu",
		Name:      "Student One",
		StudentID: "S-001",
		Role:      "student",
		Semester:  "4th",
	}))

	session, err := client.Bootstrap(context.Background(), manager, store)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "access-a", session.AccessToken)
	assert.Equal(t, "S-001", session.Identity.StudentID)
}

/*
TestBootstrap_NoCredential verifies the unauthenticated start: nil session,
no error, and no leftover identity cache.
*/
func TestBootstrap_NoCredential(t *testing.T) {
	store := client.NewMemStore()
	manager := client.NewTokenManager(store, "http://unused", nil)
	require.NoError(t, store.SaveIdentity(&client.Identity{ID: "user-1"}))

	session, err := client.Bootstrap(context.Background(), manager, store)
	require.NoError(t, err)
	assert.Nil(t, session)

	identity, err := store.LoadIdentity()
	require.NoError(t, err)
	assert.Nil(t, identity, "stale identity cache must be cleared")
}

/*
TestBootstrap_TokenWithoutIdentity verifies that a token without a cached
identity cannot restore a session; the tokens are cleared instead.
*/
func TestBootstrap_TokenWithoutIdentity(t *testing.T) {
	store := client.NewMemStore()
	manager := client.NewTokenManager(store, "http://unused", nil)
	require.NoError(t, manager.SaveTokens("access-a", "refresh-r", 3600))

	session, err := client.Bootstrap(context.Background(), manager, store)
	require.NoError(t, err)
	assert.Nil(t, session)

	credential, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, credential)
}
