// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client issues authenticated requests against the attendance API.
//
// # Retry Guarantee
//
// A 401 response triggers exactly one refresh and one retry of the original
// request. A second 401 is surfaced to the caller, never retried again, so a
// permanently invalid refresh token cannot cause a loop.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenManager
}

// NewClient constructs a [Client]. A nil httpClient gets a default with a
// bounded timeout.
func NewClient(baseURL string, tokens *TokenManager, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// RequestOptions tune a single request.
type RequestOptions struct {
	// SkipAuth issues the request without a bearer token and disables the
	// 401 refresh-retry. Used for signup and login.
	SkipAuth bool
}

// Request issues one API call and returns the raw response body.
//
// # Flow
//  1. Obtain a valid token (unless SkipAuth); no token means no network call.
//  2. Issue the request with the bearer header attached.
//  3. On the first 401, refresh once and retry the identical request once.
//  4. Other non-2xx responses become an [*APIError] with the server message.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any, opts RequestOptions) (json.RawMessage, error) {
	return c.do(ctx, method, endpoint, body, opts.SkipAuth, 0)
}

// Get issues an authenticated GET.
func (c *Client) Get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, false, 0)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, endpoint, body, false, 0)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, endpoint, body, false, 0)
}

// Delete issues an authenticated DELETE with an optional JSON body.
func (c *Client) Delete(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, endpoint, body, false, 0)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, skipAuth bool, retryCount int) (json.RawMessage, error) {
	// ── 1. Token Acquisition ──────────────────────────────────────────────
	token := ""
	if !skipAuth {
		validToken, err := c.tokens.GetValidToken(ctx)
		if err != nil {
			return nil, err
		}
		token = validToken
	}

	// ── 2. Request Construction ───────────────────────────────────────────
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	// ── 3. Dispatch ───────────────────────────────────────────────────────
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	// ── 4. One-Shot 401 Recovery ──────────────────────────────────────────
	if response.StatusCode == http.StatusUnauthorized && retryCount == 0 && !skipAuth {
		if _, err := c.tokens.RefreshAccessToken(ctx); err != nil {
			return nil, err
		}
		return c.do(ctx, method, endpoint, body, skipAuth, 1)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &APIError{Status: response.StatusCode, Message: errorMessage(raw, response.StatusCode)}
	}

	return json.RawMessage(raw), nil
}
