// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package client

import (
	"context"
)

// Session is a restored sign-in: a valid access token plus the cached
// identity that was stored alongside it.
type Session struct {
	AccessToken string
	Identity    *Identity
}

// Bootstrap restores a session at application start without a network round
// trip for the identity.
//
// # Trust Boundary
//
// Only the token's presence and validity are checked; the cached identity is
// trusted as-is. The server re-validates the caller on every request, so a
// stale cache can mislabel the UI but never widen access.
//
// # Returns
//   - A [*Session] when a valid token and a cached identity both exist.
//   - nil (no error) when the client starts unauthenticated; any stored
//     tokens have been cleared by then.
func Bootstrap(ctx context.Context, tokens *TokenManager, store Store) (*Session, error) {
	accessToken, err := tokens.GetValidToken(ctx)
	if err != nil {
		_ = tokens.ClearTokens()
		_ = store.ClearIdentity()
		return nil, nil
	}

	identity, err := store.LoadIdentity()
	if err != nil {
		return nil, err
	}
	if identity == nil {
		_ = tokens.ClearTokens()
		return nil, nil
	}

	return &Session{AccessToken: accessToken, Identity: identity}, nil
}
