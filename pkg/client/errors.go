// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package client

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired is returned when no usable access token exists.
// The request is short-circuited before any network call is made.
var ErrAuthenticationRequired = errors.New("client: authentication required")

// APIError is a failure reported by the server as an `{"error": ...}` body.
type APIError struct {
	// Status is the HTTP status code of the response.
	Status int

	// Message is the server-provided error message, or "HTTP <status>" when
	// the body was not parseable JSON.
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NetworkError is a transport-level failure: no HTTP response was received.
// It is distinguishable from [APIError] so callers can offer a retry instead
// of showing a server message.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("client: network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RefreshError reports a failed token refresh. By the time it is returned the
// token store has already been cleared; the caller must re-authenticate.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("client: token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}
