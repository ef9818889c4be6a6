// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminaramim/mpi-attendence-management/internal/platform/middleware"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/sec"
)

type stubVerifier struct {
	claims map[string]*sec.AuthClaims
}

func (verifier stubVerifier) VerifyToken(tokenStr string) (*sec.AuthClaims, error) {
	claims, ok := verifier.claims[tokenStr]
	if !ok {
		return nil, errors.New("bad token")
	}
	return claims, nil
}

type stubRoles struct {
	roles map[string]sec.UserRole
}

func (source stubRoles) RoleOf(_ context.Context, userID string) (sec.UserRole, error) {
	return source.roles[userID], nil
}

// serveGuarded runs a request through Authenticate and the given guard,
// returning the recorder.
func serveGuarded(t *testing.T, guard func(http.Handler) http.Handler, verifier middleware.TokenVerifier, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	handler := middleware.Authenticate(verifier)(guard(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})))

	request := httptest.NewRequest(http.MethodGet, "/all-users", nil)
	if authHeader != "" {
		request.Header.Set("Authorization", authHeader)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestAuthenticate covers header parsing: anonymous pass-through, malformed
headers, and invalid tokens.
*/
func TestAuthenticate(t *testing.T) {
	verifier := stubVerifier{claims: map[string]*sec.AuthClaims{
		"good-token": {UserID: "user-1", Role: "student"},
	}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"anonymous_passes_through", "", http.StatusOK},
		{"malformed_header", "good-token", http.StatusUnauthorized},
		{"wrong_scheme", "Basic good-token", http.StatusUnauthorized},
		{"invalid_token", "Bearer forged", http.StatusUnauthorized},
		{"valid_token", "Bearer good-token", http.StatusOK},
	}

	passthrough := func(next http.Handler) http.Handler { return next }
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serveGuarded(t, passthrough, verifier, tt.header)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

/*
TestRequireAuth verifies the guard blocks anonymous callers and admits any
verified identity.
*/
func TestRequireAuth(t *testing.T) {
	verifier := stubVerifier{claims: map[string]*sec.AuthClaims{
		"good-token": {UserID: "user-1", Role: "student"},
	}}

	recorder := serveGuarded(t, middleware.RequireAuth, verifier, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, recorder.Body.String())

	recorder = serveGuarded(t, middleware.RequireAuth, verifier, "Bearer good-token")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestRequireAdmin verifies role gating consults the STORED role, not the role
claim baked into the token: a demoted admin is rejected immediately.
*/
func TestRequireAdmin(t *testing.T) {
	verifier := stubVerifier{claims: map[string]*sec.AuthClaims{
		"admin-token":   {UserID: "admin-1", Role: "admin"},
		"student-token": {UserID: "student-1", Role: "student"},
		"demoted-token": {UserID: "demoted-1", Role: "admin"}, // stale claim
	}}
	roles := stubRoles{roles: map[string]sec.UserRole{
		"admin-1":   sec.RoleAdmin,
		"student-1": sec.RoleStudent,
		"demoted-1": sec.RoleStudent, // stored role already downgraded
	}}
	guard := middleware.RequireAdmin(roles)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"student", "Bearer student-token", http.StatusForbidden},
		{"admin", "Bearer admin-token", http.StatusOK},
		{"demoted_admin_with_stale_token", "Bearer demoted-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serveGuarded(t, guard, verifier, tt.header)
			require.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, recorder.Body.String())
			}
		})
	}
}
