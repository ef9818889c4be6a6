// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package complaint owns student complaints and their admin resolution.
//
// # Keyspace
//
// Complaints live under "complaint:<studentId>:<id>" and carry their full
// key in the ID field. The student ID in the key lets a student's own
// complaints be listed with a single prefix scan.
package complaint

// Complaint statuses.
const (
	StatusPending  = "Pending"
	StatusResolved = "Resolved"
	StatusRejected = "Rejected"
)

// Complaint is one student submission.
type Complaint struct {
	ID           string   `json:"id"`
	StudentID    string   `json:"studentId"`
	StudentName  string   `json:"studentName"`
	StudentEmail string   `json:"studentEmail"`
	Subject      string   `json:"subject"`
	Description  string   `json:"description"`
	Attachments  []string `json:"attachments"`
	Status       string   `json:"status"`
	SubmittedOn  string   `json:"submittedOn"`
	Response     string   `json:"response,omitempty"`
}
