// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access: manages students, teachers, managers,
	// notices, leaves, and assignments.
	RoleAdmin UserRole = "admin"

	// Default role: scoped strictly to the caller's own records.
	RoleStudent UserRole = "student"
)

// IsValid reports whether the role is one of the known roles.
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleStudent
}
