// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// RefreshLeeway is the expiry lookahead window. A token expiring within
	// this window is refreshed before use so it cannot expire mid-flight.
	RefreshLeeway = 5 * time.Minute

	// DefaultExpiresIn is assumed when the server omits a token lifetime.
	DefaultExpiresIn = 3600

	defaultHTTPTimeout = 15 * time.Second
)

// TokenManager owns the session credential lifecycle: deciding when to
// refresh, calling the refresh endpoint, and persisting the result.
//
// # Fail-Closed Policy
//
// Any refresh failure — transport error, non-2xx status, malformed body —
// clears the store entirely. A broken refresh token must force full
// re-authentication rather than be retried indefinitely.
type TokenManager struct {
	store      Store
	refreshURL string
	httpClient *http.Client

	// now is replaceable in tests.
	now func() time.Time

	// mu serializes refreshes within this manager so concurrent callers
	// racing on expiry trigger at most one refresh between them.
	mu sync.Mutex
}

// NewTokenManager constructs a [TokenManager]. A nil httpClient gets a
// default with a bounded timeout; outbound calls must never hang forever.
func NewTokenManager(store Store, refreshURL string, httpClient *http.Client) *TokenManager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &TokenManager{
		store:      store,
		refreshURL: refreshURL,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// SaveTokens persists a fresh credential, computing the absolute expiry from
// the token lifetime. A non-positive expiresIn falls back to
// [DefaultExpiresIn].
func (manager *TokenManager) SaveTokens(accessToken, refreshToken string, expiresIn int) error {
	if expiresIn <= 0 {
		expiresIn = DefaultExpiresIn
	}
	return manager.store.Save(&Credential{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    manager.now().Add(time.Duration(expiresIn) * time.Second),
	})
}

// ClearTokens removes the stored credential.
func (manager *TokenManager) ClearTokens() error {
	return manager.store.Clear()
}

// AccessToken returns the stored access token without any expiry check.
func (manager *TokenManager) AccessToken() (string, error) {
	credential, err := manager.store.Load()
	if err != nil {
		return "", err
	}
	if credential == nil {
		return "", ErrAuthenticationRequired
	}
	return credential.AccessToken, nil
}

// RefreshToken returns the stored refresh token without any expiry check.
func (manager *TokenManager) RefreshToken() (string, error) {
	credential, err := manager.store.Load()
	if err != nil {
		return "", err
	}
	if credential == nil {
		return "", ErrAuthenticationRequired
	}
	return credential.RefreshToken, nil
}

// IsExpired reports whether the stored access token is missing, expired, or
// expiring within [RefreshLeeway].
func (manager *TokenManager) IsExpired() bool {
	credential, err := manager.store.Load()
	if err != nil || credential == nil {
		return true
	}
	return !manager.now().Before(credential.ExpiresAt.Add(-RefreshLeeway))
}

// GetValidToken returns an access token that is good for at least
// [RefreshLeeway], refreshing at most once when the stored one is expiring.
//
// # Returns
//   - The access token on success.
//   - [ErrAuthenticationRequired] when no credential is stored.
//   - A [*RefreshError] when the single refresh attempt fails; the store has
//     been cleared by then.
func (manager *TokenManager) GetValidToken(ctx context.Context) (string, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	credential, err := manager.store.Load()
	if err != nil {
		return "", err
	}
	if credential == nil {
		return "", ErrAuthenticationRequired
	}
	if manager.now().Before(credential.ExpiresAt.Add(-RefreshLeeway)) {
		return credential.AccessToken, nil
	}

	return manager.refreshLocked(ctx, credential)
}

// RefreshAccessToken forces one refresh with the stored refresh token.
func (manager *TokenManager) RefreshAccessToken(ctx context.Context) (string, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	credential, err := manager.store.Load()
	if err != nil {
		return "", err
	}
	if credential == nil {
		return "", ErrAuthenticationRequired
	}
	return manager.refreshLocked(ctx, credential)
}

// refreshPayload mirrors the session envelope of the /auth/refresh endpoint.
type refreshPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// refreshLocked performs the refresh round trip. Callers hold manager.mu.
func (manager *TokenManager) refreshLocked(ctx context.Context, credential *Credential) (string, error) {
	token, err := manager.callRefreshEndpoint(ctx, credential.RefreshToken)
	if err != nil {
		// Fail closed: a rejected refresh token forces re-authentication.
		_ = manager.store.Clear()
		return "", &RefreshError{Err: err}
	}
	return token, nil
}

func (manager *TokenManager) callRefreshEndpoint(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.New("no refresh token stored")
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", fmt.Errorf("encode refresh request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, manager.refreshURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := manager.httpClient.Do(request)
	if err != nil {
		return "", &NetworkError{URL: manager.refreshURL, Err: err}
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", &APIError{Status: response.StatusCode, Message: errorMessage(raw, response.StatusCode)}
	}

	var payload refreshPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("refresh response missing access token")
	}

	// A provider that omits the refresh token retains the current one.
	newRefreshToken := payload.RefreshToken
	if newRefreshToken == "" {
		newRefreshToken = refreshToken
	}

	if err := manager.SaveTokens(payload.AccessToken, newRefreshToken, payload.ExpiresIn); err != nil {
		return "", fmt.Errorf("persist refreshed tokens: %w", err)
	}
	return payload.AccessToken, nil
}

// errorMessage extracts the server `{"error": ...}` message, falling back to
// a generic "HTTP <status>" when the body is not parseable.
func errorMessage(raw []byte, status int) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return fmt.Sprintf("HTTP %d", status)
}
