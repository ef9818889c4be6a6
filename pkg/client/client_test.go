// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminaramim/mpi-attendence-management/pkg/client"
)

// apiFixture bundles a fake API server with refresh endpoint, token manager,
// and client under test.
type apiFixture struct {
	client       *client.Client
	manager      *client.TokenManager
	store        *client.MemStore
	apiCalls     *atomic.Int32
	refreshCalls *atomic.Int32
}

// newAPIFixture serves /api/* through handler and /refresh with a rotating
// token pair.
func newAPIFixture(t *testing.T, handler http.HandlerFunc) *apiFixture {
	t.Helper()

	fixture := &apiFixture{
		store:        client.NewMemStore(),
		apiCalls:     &atomic.Int32{},
		refreshCalls: &atomic.Int32{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/refresh", func(writer http.ResponseWriter, request *http.Request) {
		fixture.refreshCalls.Add(1)
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"accessToken":  "refreshed-access",
			"refreshToken": "refreshed-refresh",
			"expiresIn":    3600,
		})
	})
	mux.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		fixture.apiCalls.Add(1)
		handler(writer, request)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	fixture.manager = client.NewTokenManager(fixture.store, server.URL+"/refresh", nil)
	fixture.client = client.NewClient(server.URL, fixture.manager, nil)
	return fixture
}

/*
TestClient_Get_AttachesBearer verifies the happy path: token attached,
response body returned.
*/
func TestClient_Get_AttachesBearer(t *testing.T) {
	fixture := newAPIFixture(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer access-a", request.Header.Get("Authorization"))
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]any{"success": true, "value": 42})
	})
	require.NoError(t, fixture.manager.SaveTokens("access-a", "refresh-r", 3600))

	raw, err := fixture.client.Get(context.Background(), "/my-attendance")
	require.NoError(t, err)

	var payload struct {
		Success bool `json:"success"`
		Value   int  `json:"value"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, 42, payload.Value)
}

/*
TestClient_NoToken_ShortCircuits verifies that without a stored credential no
network call is made at all.
*/
func TestClient_NoToken_ShortCircuits(t *testing.T) {
	fixture := newAPIFixture(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	_, err := fixture.client.Get(context.Background(), "/my-attendance")
	assert.ErrorIs(t, err, client.ErrAuthenticationRequired)
	assert.Equal(t, int32(0), fixture.apiCalls.Load())
	assert.Equal(t, int32(0), fixture.refreshCalls.Load())
}

/*
TestClient_401_RefreshAndRetryOnce verifies the bounded recovery: exactly one
refresh and one retry after a first 401.
*/
func TestClient_401_RefreshAndRetryOnce(t *testing.T) {
	fixture := newAPIFixture(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		if request.Header.Get("Authorization") == "Bearer refreshed-access" {
			_ = json.NewEncoder(writer).Encode(map[string]any{"success": true})
			return
		}
		writer.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(writer).Encode(map[string]any{"error": "Invalid or expired token"})
	})
	require.NoError(t, fixture.manager.SaveTokens("stale-access", "refresh-r", 3600))

	raw, err := fixture.client.Get(context.Background(), "/user-data")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "true")

	assert.Equal(t, int32(1), fixture.refreshCalls.Load())
	assert.Equal(t, int32(2), fixture.apiCalls.Load())
}

/*
TestClient_SecondUnauthorized_Propagated verifies a 401 on the retried
request surfaces as an API error without a second refresh.
*/
func TestClient_SecondUnauthorized_Propagated(t *testing.T) {
	fixture := newAPIFixture(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(writer).Encode(map[string]any{"error": "Invalid or expired token"})
	})
	require.NoError(t, fixture.manager.SaveTokens("stale-access", "refresh-r", 3600))

	_, err := fixture.client.Get(context.Background(), "/user-data")
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.Equal(t, int32(1), fixture.refreshCalls.Load(), "exactly one refresh, never more")
	assert.Equal(t, int32(2), fixture.apiCalls.Load(), "exactly one retry, never more")
}

/*
TestClient_SkipAuth verifies unauthenticated calls send no bearer header and
never trigger the 401 recovery.
*/
func TestClient_SkipAuth(t *testing.T) {
	fixture := newAPIFixture(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Empty(t, request.Header.Get("Authorization"))
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(writer).Encode(map[string]any{"error": "Invalid login credentials"})
	})

	_, err := fixture.client.Request(context.Background(), http.MethodPost, "/login",
		map[string]string{"email": "x@y.z", "password": "nope"},
		client.RequestOptions{SkipAuth: true})
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)

	assert.Equal(t, int32(1), fixture.apiCalls.Load())
	assert.Equal(t, int32(0), fixture.refreshCalls.Load())
}

/*
TestClient_ErrorEnvelope covers server-message extraction and the generic
fallback for unparseable bodies.
*/
func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"server_message", http.StatusBadRequest, `{"error":"Already checked in today"}`, "Already checked in today"},
		{"not_json", http.StatusInternalServerError, "<html>oops</html>", "HTTP 500"},
		{"empty_body", http.StatusNotFound, "", "HTTP 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newAPIFixture(t, func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			})
			require.NoError(t, fixture.manager.SaveTokens("a", "r", 3600))

			_, err := fixture.client.Post(context.Background(), "/check-in", nil)
			require.Error(t, err)

			var apiErr *client.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

/*
TestClient_NetworkError verifies transport failures are reported as a
distinct error kind, not an API error.
*/
func TestClient_NetworkError(t *testing.T) {
	store := client.NewMemStore()
	manager := client.NewTokenManager(store, "http://127.0.0.1:1/refresh", nil)
	require.NoError(t, manager.SaveTokens("a", "r", 3600))

	apiClient := client.NewClient("http://127.0.0.1:1", manager, nil)
	_, err := apiClient.Get(context.Background(), "/my-attendance")
	require.Error(t, err)

	var networkErr *client.NetworkError
	assert.ErrorAs(t, err, &networkErr)
	var apiErr *client.APIError
	assert.False(t, errors.As(err, &apiErr), "transport failure must not look like a server error")
}
