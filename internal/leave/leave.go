// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package leave owns leave applications and per-student leave balances.
//
// # Keyspace
//
// Applications live under "leave:<studentId>:<id>" and carry their full key
// in the ID field, so admin operations can address one application directly.
// Balances live under "leaveBalance:<studentId>".
package leave

// Application statuses.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// Leave categories. LWP (leave without pay) is unbounded.
const (
	TypeCasual = "CL"
	TypeSick   = "SL"
	TypeEarned = "EL"
	TypeUnpaid = "LWP"
)

// Application is one leave request.
type Application struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Type        string `json:"type"`
	FromDate    string `json:"fromDate"`
	ToDate      string `json:"toDate"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
	AppliedOn   string `json:"appliedOn"`
}

// Allowance tracks usage of one leave category.
type Allowance struct {
	Taken int `json:"taken"`
	Total int `json:"total"` // -1 means unlimited
}

// Balance maps a leave category to its allowance.
type Balance map[string]Allowance

// defaultBalance is seeded for every new student at signup.
func defaultBalance() Balance {
	return Balance{
		TypeCasual: {Taken: 0, Total: 3},
		TypeSick:   {Taken: 0, Total: 6},
		TypeEarned: {Taken: 0, Total: 0},
		TypeUnpaid: {Taken: 0, Total: -1},
	}
}
