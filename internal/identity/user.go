// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package identity owns user accounts, credentials, and session lifecycle.
//
// # Architecture
//
// Account profiles live in the shared key-value store under "user:<id>";
// login credentials are kept separately under "cred:<email>" so prefix scans
// over profiles never touch password hashes. Refresh sessions are always in
// Redis with a TTL, regardless of which KV backend holds the profiles.
package identity

import (
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/sec"
)

// User is the stored account profile.
//
// JSON field names are part of the wire contract: profiles are returned
// verbatim to the dashboard clients.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	StudentID    string       `json:"studentId"`
	Role         sec.UserRole `json:"role"`
	Semester     string       `json:"semester,omitempty"`
	ProfileImage string       `json:"profileImage,omitempty"`
	Blocked      bool         `json:"blocked,omitempty"`
}

// IsAdmin reports whether the account carries the admin role.
func (user *User) IsAdmin() bool {
	return user.Role == sec.RoleAdmin
}

// Credential maps a login email to an account and its password hash.
// Stored under "cred:<email>", never returned over the wire.
type Credential struct {
	UserID       string `json:"userId"`
	PasswordHash string `json:"passwordHash"`
}
