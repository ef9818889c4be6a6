// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package notice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/notice"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/clock"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/kv"
)

var postingDay = time.Date(2026, time.August, 23, 12, 0, 0, 0, time.UTC)

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

func newFixture() *notice.Service {
	directory := stubDirectory{users: map[string]*identity.User{
		"admin-1":   {ID: "admin-1", Name: "Registrar", Role: "admin"},
		"student-4": {ID: "student-4", Name: "Fourth Sem", StudentID: "S-004", Role: "student", Semester: "4th"},
		"student-6": {ID: "student-6", Name: "Sixth Sem", StudentID: "S-006", Role: "student", Semester: "6th"},
	}}
	return notice.NewService(kv.NewMemoryStore(), directory, clock.Fixed{Instant: postingDay})
}

/*
TestCreate_Defaults verifies author resolution and the all-semester default.
*/
func TestCreate_Defaults(t *testing.T) {
	service := newFixture()

	posting, err := service.Create(context.Background(), "admin-1", notice.CreateInput{
		Title:   "Exam Schedule",
		Content: "Finals start next month.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Registrar", posting.PostedBy)
	assert.Equal(t, "23 Aug, 2026", posting.PostedOn)
	assert.Equal(t, notice.SemesterAll, posting.Semester)
	assert.NotNil(t, posting.Attachments)
	assert.NotNil(t, posting.Reactions)
}

/*
TestVisibleTo_FiltersByAudienceAndSemester covers the three visibility rules:
the all-students audience, the all-semesters wildcard, and an exact semester
match.
*/
func TestVisibleTo_FiltersByAudienceAndSemester(t *testing.T) {
	service := newFixture()
	ctx := context.Background()

	_, err := service.Create(ctx, "admin-1", notice.CreateInput{
		Title: "Campus Wide", TargetAudience: notice.AudienceAllStudents, Semester: "6th",
	})
	require.NoError(t, err)
	_, err = service.Create(ctx, "admin-1", notice.CreateInput{
		Title: "Every Semester", Semester: notice.SemesterAll,
	})
	require.NoError(t, err)
	_, err = service.Create(ctx, "admin-1", notice.CreateInput{
		Title: "Fourth Only", Semester: "4th",
	})
	require.NoError(t, err)

	fourth, err := service.VisibleTo(ctx, "student-4")
	require.NoError(t, err)
	assert.Len(t, fourth, 3)

	sixth, err := service.VisibleTo(ctx, "student-6")
	require.NoError(t, err)
	require.Len(t, sixth, 2)
	for _, posting := range sixth {
		assert.NotEqual(t, "Fourth Only", posting.Title)
	}
}

/*
TestReact_ReplacesPerUser verifies one reaction per user, replaced on change.
*/
func TestReact_ReplacesPerUser(t *testing.T) {
	service := newFixture()
	ctx := context.Background()

	posting, err := service.Create(ctx, "admin-1", notice.CreateInput{Title: "Holiday"})
	require.NoError(t, err)

	_, err = service.React(ctx, posting.ID, "student-4", "👍")
	require.NoError(t, err)
	updated, err := service.React(ctx, posting.ID, "student-4", "🎉")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"student-4": "🎉"}, updated.Reactions)
}

/*
TestUpdate_KeepsUnsetFields verifies partial edits leave other fields alone.
*/
func TestUpdate_KeepsUnsetFields(t *testing.T) {
	service := newFixture()
	ctx := context.Background()

	posting, err := service.Create(ctx, "admin-1", notice.CreateInput{
		Title: "Orientation", Content: "Room 101", Semester: "4th",
	})
	require.NoError(t, err)

	updated, err := service.Update(ctx, posting.ID, notice.UpdateInput{Content: "Room 202"})
	require.NoError(t, err)

	assert.Equal(t, "Orientation", updated.Title)
	assert.Equal(t, "Room 202", updated.Content)
	assert.Equal(t, "4th", updated.Semester)
}

/*
TestAll_NewestFirst verifies recency ordering via the time-sortable IDs.
*/
func TestAll_NewestFirst(t *testing.T) {
	service := newFixture()
	ctx := context.Background()

	older, err := service.Create(ctx, "admin-1", notice.CreateInput{Title: "Older"})
	require.NoError(t, err)
	newer, err := service.Create(ctx, "admin-1", notice.CreateInput{Title: "Newer"})
	require.NoError(t, err)

	notices, err := service.All(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 2)
	assert.Equal(t, newer.ID, notices[0].ID)
	assert.Equal(t, older.ID, notices[1].ID)
}
