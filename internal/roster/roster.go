// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package roster owns the staff directory (teachers, managers, semesters)
// and the per-student assignment records that link students to staff.
//
// # Keyspace
//
//   - "teacher:<id>" and "manager-record:<id>": staff cards, full key in ID.
//   - "semester:<code>": semester catalog.
//   - "student-teacher:<studentId>": the student's teacher assignment.
//   - "manager:<studentId>": the student's manager assignment or, for fresh
//     accounts, the seeded default contact card.
//
// # Resolution
//
// Lookups fall back in tiers: an explicit assignment wins; otherwise
// teachers are matched by the student's semester, and the manager collapses
// to a generic "Administrator" card. Clients therefore always get an answer.
package roster

// FallbackManagerName is returned when no manager is assigned.
const FallbackManagerName = "Administrator"

// Teacher is one staff card in the teacher directory.
type Teacher struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Semester string `json:"semester"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// Manager is one staff card in the manager directory.
type Manager struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// Semester is one entry in the semester catalog.
type Semester struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// TeacherAssignment links a student to an explicit teacher.
type TeacherAssignment struct {
	StudentID   string `json:"studentId"`
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	AssignedAt  string `json:"assignedAt"`
}

// ManagerAssignment is the record under "manager:<studentId>".
//
// Two shapes share the key: an explicit assignment fills ManagerID and
// AdminName; the default card seeded at signup fills the supervisor contact
// fields instead. Omitempty keeps whichever shape is stored.
type ManagerAssignment struct {
	ManagerID  string `json:"managerId,omitempty"`
	AdminName  string `json:"adminName,omitempty"`
	AssignedAt string `json:"assignedAt,omitempty"`

	Supervisor            string `json:"supervisor,omitempty"`
	SupervisorDesignation string `json:"supervisorDesignation,omitempty"`
	SupervisorPhone       string `json:"supervisorPhone,omitempty"`
	DottedSupervisor      string `json:"dottedSupervisor,omitempty"`
	DottedSupervisorPhone string `json:"dottedSupervisorPhone,omitempty"`
	LineManager           string `json:"lineManager,omitempty"`
	LineManagerPhone      string `json:"lineManagerPhone,omitempty"`
}

// ManagerCard is the resolved manager answer returned to students.
type ManagerCard struct {
	AdminName string `json:"adminName"`
}
