// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/clock"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/constants"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/kv"
	"github.com/jasminaramim/mpi-attendence-management/pkg/uuidv7"
)

// UserDirectory resolves account profiles for roster operations.
type UserDirectory interface {
	UserByID(ctx context.Context, userID string) (*identity.User, error)
	UserByStudentID(ctx context.Context, studentID string) (*identity.User, error)
}

// Service implements staff directory and assignment use cases.
type Service struct {
	store kv.Store
	users UserDirectory
	clock clock.Clock
}

// NewService constructs a roster [Service].
func NewService(store kv.Store, users UserDirectory, campusClock clock.Clock) *Service {
	return &Service{store: store, users: users, clock: campusClock}
}

func teacherAssignmentKey(studentID string) string {
	return constants.KeyPrefixTeacherAssign + studentID
}

func managerAssignmentKey(studentID string) string {
	return constants.KeyPrefixManagerAssign + studentID
}

// SeedStudentDefaults writes the default manager contact card for a fresh
// student. Implements the signup seeding contract of the identity service.
func (service *Service) SeedStudentDefaults(ctx context.Context, studentID string) error {
	card := &ManagerAssignment{
		Supervisor:            "Dr. Sarah Johnson",
		SupervisorDesignation: "Head of Department",
		SupervisorPhone:       "+1-555-0101",
		DottedSupervisor:      "Prof. Michael Brown",
		DottedSupervisorPhone: "+1-555-0102",
		LineManager:           "Admin Office",
		LineManagerPhone:      "+1-555-0100",
	}
	raw, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("roster_seed_encode_failed: %w", err)
	}
	if err := service.store.Set(ctx, managerAssignmentKey(studentID), raw); err != nil {
		return fmt.Errorf("roster_seed_failed: %w", err)
	}
	return nil
}

// # Semester Catalog

// AddSemester registers a semester keyed by its code; re-adding a code
// overwrites the entry.
func (service *Service) AddSemester(ctx context.Context, name, code string) (*Semester, error) {
	entry := &Semester{
		ID:   constants.KeyPrefixSemester + code,
		Name: name,
		Code: code,
	}
	if err := service.set(ctx, entry.ID, entry, "roster_semester_save_failed"); err != nil {
		return nil, err
	}
	return entry, nil
}

// AllSemesters lists the semester catalog.
func (service *Service) AllSemesters(ctx context.Context) ([]*Semester, error) {
	values, err := service.store.GetByPrefix(ctx, constants.KeyPrefixSemester)
	if err != nil {
		return nil, fmt.Errorf("roster_semester_scan_failed: %w", err)
	}
	semesters := make([]*Semester, 0, len(values))
	for _, raw := range values {
		var entry Semester
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("roster_semester_decode_failed: %w", err)
		}
		semesters = append(semesters, &entry)
	}
	return semesters, nil
}

// # Teacher Directory

// AddTeacherInput carries a new teacher card.
type AddTeacherInput struct {
	Name     string
	Subject  string
	Semester string
	Phone    string
	Email    string
}

// AddTeacher registers a teacher card.
func (service *Service) AddTeacher(ctx context.Context, input AddTeacherInput) (*Teacher, error) {
	card := &Teacher{
		ID:       constants.KeyPrefixTeacher + uuidv7.New(),
		Name:     input.Name,
		Subject:  input.Subject,
		Semester: input.Semester,
		Phone:    input.Phone,
		Email:    input.Email,
	}
	if err := service.set(ctx, card.ID, card, "roster_teacher_save_failed"); err != nil {
		return nil, err
	}
	return card, nil
}

// AllTeachers lists every teacher card.
func (service *Service) AllTeachers(ctx context.Context) ([]*Teacher, error) {
	values, err := service.store.GetByPrefix(ctx, constants.KeyPrefixTeacher)
	if err != nil {
		return nil, fmt.Errorf("roster_teacher_scan_failed: %w", err)
	}
	teachers := make([]*Teacher, 0, len(values))
	for _, raw := range values {
		var card Teacher
		if err := json.Unmarshal(raw, &card); err != nil {
			return nil, fmt.Errorf("roster_teacher_decode_failed: %w", err)
		}
		teachers = append(teachers, &card)
	}
	return teachers, nil
}

// TeacherByID loads one teacher card by its full key.
func (service *Service) TeacherByID(ctx context.Context, teacherID string) (*Teacher, error) {
	raw, err := service.store.Get(ctx, teacherID)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, apperr.NotFound("Teacher")
		}
		return nil, fmt.Errorf("roster_teacher_load_failed: %w", err)
	}
	var card Teacher
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("roster_teacher_decode_failed: %w", err)
	}
	return &card, nil
}

// UpdateTeacherInput carries editable teacher fields. Empty fields keep
// their stored values.
type UpdateTeacherInput struct {
	Name     string
	Subject  string
	Semester string
	Phone    string
	Email    string
}

// UpdateTeacher edits an existing teacher card.
func (service *Service) UpdateTeacher(ctx context.Context, teacherID string, input UpdateTeacherInput) (*Teacher, error) {
	card, err := service.TeacherByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		card.Name = input.Name
	}
	if input.Subject != "" {
		card.Subject = input.Subject
	}
	if input.Semester != "" {
		card.Semester = input.Semester
	}
	if input.Phone != "" {
		card.Phone = input.Phone
	}
	if input.Email != "" {
		card.Email = input.Email
	}

	if err := service.set(ctx, card.ID, card, "roster_teacher_save_failed"); err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteTeacher removes a teacher card. Existing assignments pointing at it
// fall back to semester matching on the next resolution.
func (service *Service) DeleteTeacher(ctx context.Context, teacherID string) error {
	if err := service.store.Delete(ctx, teacherID); err != nil {
		return fmt.Errorf("roster_teacher_delete_failed: %w", err)
	}
	return nil
}

// # Manager Directory

// AddManagerInput carries a new manager card.
type AddManagerInput struct {
	Name        string
	Designation string
	Phone       string
	Email       string
}

// AddManager registers a manager card.
func (service *Service) AddManager(ctx context.Context, input AddManagerInput) (*Manager, error) {
	card := &Manager{
		ID:          constants.KeyPrefixManagerRecord + uuidv7.New(),
		Name:        input.Name,
		Designation: input.Designation,
		Phone:       input.Phone,
		Email:       input.Email,
	}
	if err := service.set(ctx, card.ID, card, "roster_manager_save_failed"); err != nil {
		return nil, err
	}
	return card, nil
}

// AllManagers lists every manager card.
func (service *Service) AllManagers(ctx context.Context) ([]*Manager, error) {
	values, err := service.store.GetByPrefix(ctx, constants.KeyPrefixManagerRecord)
	if err != nil {
		return nil, fmt.Errorf("roster_manager_scan_failed: %w", err)
	}
	managers := make([]*Manager, 0, len(values))
	for _, raw := range values {
		var card Manager
		if err := json.Unmarshal(raw, &card); err != nil {
			return nil, fmt.Errorf("roster_manager_decode_failed: %w", err)
		}
		managers = append(managers, &card)
	}
	return managers, nil
}

// ManagerByID loads one manager card by its full key.
func (service *Service) ManagerByID(ctx context.Context, managerID string) (*Manager, error) {
	raw, err := service.store.Get(ctx, managerID)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, apperr.NotFound("Manager")
		}
		return nil, fmt.Errorf("roster_manager_load_failed: %w", err)
	}
	var card Manager
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("roster_manager_decode_failed: %w", err)
	}
	return &card, nil
}

// DeleteManager removes a manager card.
func (service *Service) DeleteManager(ctx context.Context, managerID string) error {
	if err := service.store.Delete(ctx, managerID); err != nil {
		return fmt.Errorf("roster_manager_delete_failed: %w", err)
	}
	return nil
}

// # Assignments

// AssignTeacher links a student to a teacher, replacing any prior link.
func (service *Service) AssignTeacher(ctx context.Context, studentID, teacherID string) error {
	if _, err := service.users.UserByStudentID(ctx, studentID); err != nil {
		return err
	}
	teacher, err := service.TeacherByID(ctx, teacherID)
	if err != nil {
		return err
	}

	assignment := &TeacherAssignment{
		StudentID:   studentID,
		TeacherID:   teacherID,
		TeacherName: teacher.Name,
		AssignedAt:  clock.FormatDate(service.clock.Now()),
	}
	return service.set(ctx, teacherAssignmentKey(studentID), assignment, "roster_assign_teacher_failed")
}

// AssignManager links a student to a manager, replacing the seeded default
// card or any prior link. The manager's name is denormalized into the
// assignment so resolution does not depend on the card surviving.
func (service *Service) AssignManager(ctx context.Context, studentID, managerID string) error {
	if _, err := service.users.UserByStudentID(ctx, studentID); err != nil {
		return err
	}
	manager, err := service.ManagerByID(ctx, managerID)
	if err != nil {
		return err
	}

	assignment := &ManagerAssignment{
		ManagerID:  managerID,
		AdminName:  manager.Name,
		AssignedAt: clock.FormatDate(service.clock.Now()),
	}
	return service.set(ctx, managerAssignmentKey(studentID), assignment, "roster_assign_manager_failed")
}

// TeacherAssignmentOf returns the student's explicit teacher assignment,
// or nil when none exists.
func (service *Service) TeacherAssignmentOf(ctx context.Context, studentID string) (*TeacherAssignment, error) {
	raw, err := service.store.Get(ctx, teacherAssignmentKey(studentID))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("roster_assignment_load_failed: %w", err)
	}
	var assignment TeacherAssignment
	if err := json.Unmarshal(raw, &assignment); err != nil {
		return nil, fmt.Errorf("roster_assignment_decode_failed: %w", err)
	}
	return &assignment, nil
}

// ManagerAssignmentOf returns the record under "manager:<studentId>",
// or nil when none exists.
func (service *Service) ManagerAssignmentOf(ctx context.Context, studentID string) (*ManagerAssignment, error) {
	raw, err := service.store.Get(ctx, managerAssignmentKey(studentID))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("roster_assignment_load_failed: %w", err)
	}
	var assignment ManagerAssignment
	if err := json.Unmarshal(raw, &assignment); err != nil {
		return nil, fmt.Errorf("roster_assignment_decode_failed: %w", err)
	}
	return &assignment, nil
}

// # Resolution

// ResolveTeachersFor answers "who teaches this student".
//
// # Fallback Tiers
//  1. Explicit assignment whose teacher card still exists.
//  2. Every teacher card matching the student's semester.
//  3. An empty list; never an error for missing data.
func (service *Service) ResolveTeachersFor(ctx context.Context, student *identity.User) ([]*Teacher, error) {
	assignment, err := service.TeacherAssignmentOf(ctx, student.StudentID)
	if err != nil {
		return nil, err
	}

	if assignment != nil && assignment.TeacherID != "" {
		teacher, err := service.TeacherByID(ctx, assignment.TeacherID)
		if err == nil {
			return []*Teacher{teacher}, nil
		}
		if apperr.As(err) == nil {
			return nil, err
		}
		// Assigned teacher card was deleted; fall through to semester match.
	}

	allTeachers, err := service.AllTeachers(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*Teacher, 0)
	for _, teacher := range allTeachers {
		if teacher.Semester == student.Semester {
			matched = append(matched, teacher)
		}
	}
	return matched, nil
}

// ResolveManagerFor answers "who manages this student".
//
// # Fallback Tiers
//  1. Explicit assignment: the admin name snapshotted at assignment time is
//     returned as-is, never re-read from the manager directory.
//  2. The generic [FallbackManagerName] card; never an error.
func (service *Service) ResolveManagerFor(ctx context.Context, studentID string) (*ManagerCard, error) {
	assignment, err := service.ManagerAssignmentOf(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if assignment != nil && assignment.AdminName != "" {
		return &ManagerCard{AdminName: assignment.AdminName}, nil
	}

	return &ManagerCard{AdminName: FallbackManagerName}, nil
}

// # Internal Helpers

func (service *Service) set(ctx context.Context, key string, value any, failCode string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", failCode, err)
	}
	if err := service.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("%s: %w", failCode, err)
	}
	return nil
}
