// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package roster_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/clock"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/kv"
	"github.com/jasminaramim/mpi-attendence-management/internal/roster"
)

var assignmentDay = time.Date(2026, time.August, 23, 11, 0, 0, 0, time.UTC)

type stubDirectory struct {
	users map[string]*identity.User
}

func (directory stubDirectory) UserByID(_ context.Context, userID string) (*identity.User, error) {
	user, ok := directory.users[userID]
	if !ok {
		return nil, apperr.NotFound("User data")
	}
	return user, nil
}

func (directory stubDirectory) UserByStudentID(_ context.Context, studentID string) (*identity.User, error) {
	for _, user := range directory.users {
		if user.StudentID == studentID {
			return user, nil
		}
	}
	return nil, apperr.NotFound("Student")
}

func newFixture() (*roster.Service, *identity.User) {
	student := &identity.User{ID: "user-1", Name: "Student One", StudentID: "S-001", Role: "student", Semester: "4th"}
	directory := stubDirectory{users: map[string]*identity.User{"user-1": student}}
	service := roster.NewService(kv.NewMemoryStore(), directory, clock.Fixed{Instant: assignmentDay})
	return service, student
}

/*
TestResolveTeachersFor_ExplicitAssignmentWins verifies tier one: the assigned
teacher is returned alone even when others share the student's semester.
*/
func TestResolveTeachersFor_ExplicitAssignmentWins(t *testing.T) {
	service, student := newFixture()
	ctx := context.Background()

	assigned, err := service.AddTeacher(ctx, roster.AddTeacherInput{Name: "Assigned Teacher", Semester: "4th"})
	require.NoError(t, err)
	_, err = service.AddTeacher(ctx, roster.AddTeacherInput{Name: "Same Semester Teacher", Semester: "4th"})
	require.NoError(t, err)

	require.NoError(t, service.AssignTeacher(ctx, "S-001", assigned.ID))

	teachers, err := service.ResolveTeachersFor(ctx, student)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, assigned.ID, teachers[0].ID)
}

/*
TestResolveTeachersFor_SemesterFallback verifies tier two: without an explicit
assignment, every teacher matching the student's semester is returned.
*/
func TestResolveTeachersFor_SemesterFallback(t *testing.T) {
	service, student := newFixture()
	ctx := context.Background()

	_, err := service.AddTeacher(ctx, roster.AddTeacherInput{Name: "Fourth A", Semester: "4th"})
	require.NoError(t, err)
	_, err = service.AddTeacher(ctx, roster.AddTeacherInput{Name: "Fourth B", Semester: "4th"})
	require.NoError(t, err)
	_, err = service.AddTeacher(ctx, roster.AddTeacherInput{Name: "Sixth", Semester: "6th"})
	require.NoError(t, err)

	teachers, err := service.ResolveTeachersFor(ctx, student)
	require.NoError(t, err)
	assert.Len(t, teachers, 2)
	for _, teacher := range teachers {
		assert.Equal(t, "4th", teacher.Semester)
	}
}

/*
TestResolveTeachersFor_DanglingAssignment verifies a deleted teacher card
does not break resolution: the dangling assignment is skipped per-read and
the semester fallback applies.
*/
func TestResolveTeachersFor_DanglingAssignment(t *testing.T) {
	service, student := newFixture()
	ctx := context.Background()

	assigned, err := service.AddTeacher(ctx, roster.AddTeacherInput{Name: "Leaving Teacher", Semester: "4th"})
	require.NoError(t, err)
	remaining, err := service.AddTeacher(ctx, roster.AddTeacherInput{Name: "Remaining Teacher", Semester: "4th"})
	require.NoError(t, err)

	require.NoError(t, service.AssignTeacher(ctx, "S-001", assigned.ID))
	require.NoError(t, service.DeleteTeacher(ctx, assigned.ID))

	teachers, err := service.ResolveTeachersFor(ctx, student)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, remaining.ID, teachers[0].ID)
}

/*
TestResolveTeachersFor_EmptyFallback verifies tier three: no assignment and
no semester match yields an empty list, never an error.
*/
func TestResolveTeachersFor_EmptyFallback(t *testing.T) {
	service, student := newFixture()

	teachers, err := service.ResolveTeachersFor(context.Background(), student)
	require.NoError(t, err)
	assert.Empty(t, teachers)
}

/*
TestAssignTeacher_Validation verifies both referenced entities must exist at
assignment time and the teacher name is denormalized into the record.
*/
func TestAssignTeacher_Validation(t *testing.T) {
	service, _ := newFixture()
	ctx := context.Background()

	teacher, err := service.AddTeacher(ctx, roster.AddTeacherInput{Name: "Ms. Rahman", Semester: "4th"})
	require.NoError(t, err)

	assert.Error(t, service.AssignTeacher(ctx, "S-404", teacher.ID), "unknown student")
	assert.Error(t, service.AssignTeacher(ctx, "S-001", "teacher:missing"), "unknown teacher")

	require.NoError(t, service.AssignTeacher(ctx, "S-001", teacher.ID))

	assignment, err := service.TeacherAssignmentOf(ctx, "S-001")
	require.NoError(t, err)
	require.NotNil(t, assignment)
	assert.Equal(t, "Ms. Rahman", assignment.TeacherName)
	assert.Equal(t, "23 Aug, 2026", assignment.AssignedAt)
}

/*
TestResolveManagerFor_Tiers covers the manager fallback ladder: explicit
assignment answered from the denormalized snapshot, and the generic
Administrator card when nothing is assigned.
*/
func TestResolveManagerFor_Tiers(t *testing.T) {
	service, _ := newFixture()
	ctx := context.Background()

	// No assignment at all: generic fallback.
	card, err := service.ResolveManagerFor(ctx, "S-001")
	require.NoError(t, err)
	assert.Equal(t, roster.FallbackManagerName, card.AdminName)

	// Explicit assignment resolves to the snapshotted admin name.
	manager, err := service.AddManager(ctx, roster.AddManagerInput{Name: "Mr. Karim", Designation: "Coordinator"})
	require.NoError(t, err)
	require.NoError(t, service.AssignManager(ctx, "S-001", manager.ID))

	card, err = service.ResolveManagerFor(ctx, "S-001")
	require.NoError(t, err)
	assert.Equal(t, "Mr. Karim", card.AdminName)

	// The snapshot outlives the manager card: deleting the manager does not
	// change the answer until the student is reassigned.
	require.NoError(t, service.DeleteManager(ctx, manager.ID))
	card, err = service.ResolveManagerFor(ctx, "S-001")
	require.NoError(t, err)
	assert.Equal(t, "Mr. Karim", card.AdminName)
}

/*
TestSeedStudentDefaults_WritesContactCard verifies signup seeding stores the
default supervisor contact card under the student's manager key.
*/
func TestSeedStudentDefaults_WritesContactCard(t *testing.T) {
	service, _ := newFixture()
	ctx := context.Background()

	require.NoError(t, service.SeedStudentDefaults(ctx, "S-001"))

	assignment, err := service.ManagerAssignmentOf(ctx, "S-001")
	require.NoError(t, err)
	require.NotNil(t, assignment)
	assert.Equal(t, "Dr. Sarah Johnson", assignment.Supervisor)
	assert.Empty(t, assignment.ManagerID, "seeded card carries no explicit assignment")

	// The seeded card alone still resolves to the generic manager answer.
	card, err := service.ResolveManagerFor(ctx, "S-001")
	require.NoError(t, err)
	assert.Equal(t, roster.FallbackManagerName, card.AdminName)
}
