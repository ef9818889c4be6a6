// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/leave"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/clock"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/kv"
)

var today = time.Date(2026, time.August, 23, 10, 0, 0, 0, time.UTC)

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

func newFixture() (*leave.Service, *kv.MemoryStore) {
	store := kv.NewMemoryStore()
	directory := stubDirectory{users: map[string]*identity.User{
		"user-1": {ID: "user-1", Name: "Student One", StudentID: "S-001", Role: "student"},
	}}
	return leave.NewService(store, directory, clock.Fixed{Instant: today}), store
}

/*
TestSeedStudentDefaults verifies the signup-time balance card: 3 casual,
6 sick, 0 earned, unlimited leave-without-pay.
*/
func TestSeedStudentDefaults(t *testing.T) {
	service, _ := newFixture()
	ctx := context.Background()

	require.NoError(t, service.SeedStudentDefaults(ctx, "S-001"))

	balance, err := service.BalanceOf(ctx, "S-001")
	require.NoError(t, err)

	assert.Equal(t, leave.Allowance{Taken: 0, Total: 3}, balance[leave.TypeCasual])
	assert.Equal(t, leave.Allowance{Taken: 0, Total: 6}, balance[leave.TypeSick])
	assert.Equal(t, leave.Allowance{Taken: 0, Total: 0}, balance[leave.TypeEarned])
	assert.Equal(t, leave.Allowance{Taken: 0, Total: -1}, balance[leave.TypeUnpaid])
}

/*
TestApply_CreatesPendingApplication covers the student-facing happy path.
*/
func TestApply_CreatesPendingApplication(t *testing.T) {
	service, _ := newFixture()

	application, err := service.Apply(context.Background(), "user-1", leave.ApplyInput{
		Type:     leave.TypeCasual,
		FromDate: "25 Aug, 2026",
		ToDate:   "25 Aug, 2026",
		Reason:   "family event",
	})
	require.NoError(t, err)

	assert.Equal(t, leave.StatusPending, application.Status)
	assert.Equal(t, "S-001", application.StudentID)
	assert.Equal(t, "Student One", application.StudentName)
	assert.Equal(t, "23 Aug, 2026", application.AppliedOn)
	assert.Contains(t, application.ID, "leave:S-001:")
}

/*
TestUpdateStatus_ApprovalChargesBalance verifies approval debits exactly one
day from the matching category and rejection charges nothing.
*/
func TestUpdateStatus_ApprovalChargesBalance(t *testing.T) {
	service, _ := newFixture()
	ctx := context.Background()
	require.NoError(t, service.SeedStudentDefaults(ctx, "S-001"))

	casual, err := service.Apply(ctx, "user-1", leave.ApplyInput{Type: leave.TypeCasual})
	require.NoError(t, err)
	sick, err := service.Apply(ctx, "user-1", leave.ApplyInput{Type: leave.TypeSick})
	require.NoError(t, err)

	updated, err := service.UpdateStatus(ctx, casual.ID, leave.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, updated.Status)

	_, err = service.UpdateStatus(ctx, sick.ID, leave.StatusRejected)
	require.NoError(t, err)

	balance, err := service.BalanceOf(ctx, "S-001")
	require.NoError(t, err)
	assert.Equal(t, 1, balance[leave.TypeCasual].Taken, "approval charges one day")
	assert.Equal(t, 0, balance[leave.TypeSick].Taken, "rejection charges nothing")
}

/*
TestUpdateStatus_MissingBalanceTolerated verifies approving a leave for an
account without a balance card still succeeds.
*/
func TestUpdateStatus_MissingBalanceTolerated(t *testing.T) {
	service, _ := newFixture()
	ctx := context.Background()

	application, err := service.Apply(ctx, "user-1", leave.ApplyInput{Type: leave.TypeCasual})
	require.NoError(t, err)

	updated, err := service.UpdateStatus(ctx, application.ID, leave.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, updated.Status)
}

/*
TestUpdateStatus_UnknownLeave verifies the not-found mapping.
*/
func TestUpdateStatus_UnknownLeave(t *testing.T) {
	service, _ := newFixture()

	_, err := service.UpdateStatus(context.Background(), "leave:S-001:missing", leave.StatusApproved)
	require.Error(t, err)
	assert.Equal(t, "Leave not found", apperr.As(err).Message)
}

/*
TestMyLeaves_NewestFirst verifies recency ordering via the time-sortable IDs.
*/
func TestMyLeaves_NewestFirst(t *testing.T) {
	service, _ := newFixture()
	ctx := context.Background()

	first, err := service.Apply(ctx, "user-1", leave.ApplyInput{Type: leave.TypeCasual, Reason: "older"})
	require.NoError(t, err)
	second, err := service.Apply(ctx, "user-1", leave.ApplyInput{Type: leave.TypeSick, Reason: "newer"})
	require.NoError(t, err)

	applications, err := service.MyLeaves(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, applications, 2)
	assert.Equal(t, second.ID, applications[0].ID)
	assert.Equal(t, first.ID, applications[1].ID)
}
