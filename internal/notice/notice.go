// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package notice owns the campus notice board.
//
// # Keyspace
//
// Notices live under "notice:<id>" and carry their full key in the ID field.
// Reactions are stored inline as a user-ID-to-emoji map, which keeps a
// reaction toggle to a single read-modify-write of one key.
package notice

// Audience selectors.
const (
	AudienceAllStudents = "All Students"
	SemesterAll         = "all"
)

// Notice is one board posting.
type Notice struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Content        string            `json:"content"`
	TargetAudience string            `json:"targetAudience"`
	Semester       string            `json:"semester"`
	Attachments    []string          `json:"attachments"`
	PostedBy       string            `json:"postedBy"`
	PostedOn       string            `json:"postedOn"`
	Reactions      map[string]string `json:"reactions"`
}

// VisibleTo reports whether a student in the given semester should see
// the notice.
func (notice *Notice) VisibleTo(semester string) bool {
	return notice.TargetAudience == AudienceAllStudents ||
		notice.Semester == SemesterAll ||
		notice.Semester == semester
}
