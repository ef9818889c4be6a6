// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package attendance owns daily check-in/check-out records.
//
// # Keyspace
//
// Records live under "attendance:<studentId>:<date>", one key per student
// per campus day. The date component uses the campus date format, so a
// prefix scan on "attendance:<studentId>:" lists one student's history.
package attendance

// Record statuses.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusOffDay  = "OFFDAY"
)

// Record is one student's attendance for one campus day.
type Record struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	CheckIn   string `json:"checkIn,omitempty"`
	CheckOut  string `json:"checkOut,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Status    string `json:"status"`
}
