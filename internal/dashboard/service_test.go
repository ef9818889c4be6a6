// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminaramim/mpi-attendence-management/internal/attendance"
	"github.com/jasminaramim/mpi-attendence-management/internal/dashboard"
	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/leave"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/clock"
	"github.com/jasminaramim/mpi-attendence-management/internal/roster"
)

// 23 Aug 2026 is a Sunday.
var reportingDay = time.Date(2026, time.August, 23, 14, 0, 0, 0, time.UTC)

type stubStudents struct{ students []*identity.User }

func (stub stubStudents) Students(context.Context) ([]*identity.User, error) {
	return stub.students, nil
}

func (stub stubStudents) UserByStudentID(_ context.Context, studentID string) (*identity.User, error) {
	for _, student := range stub.students {
		if student.StudentID == studentID {
			return student, nil
		}
	}
	return nil, apperr.NotFound("Student")
}

type stubAttendance struct {
	records map[string][]*attendance.Record
	today   map[string]*attendance.Record
	all     []*attendance.Record
}

func (stub stubAttendance) AllRecords(context.Context) ([]*attendance.Record, error) {
	return stub.all, nil
}

func (stub stubAttendance) HistoryOf(_ context.Context, studentID string) ([]*attendance.Record, error) {
	return stub.records[studentID], nil
}

func (stub stubAttendance) TodayRecord(_ context.Context, studentID string) (*attendance.Record, error) {
	return stub.today[studentID], nil
}

type stubLeaves struct {
	all      []*leave.Application
	balances map[string]leave.Balance
}

func (stub stubLeaves) All(context.Context) ([]*leave.Application, error) {
	return stub.all, nil
}

func (stub stubLeaves) LeavesOf(_ context.Context, studentID string) ([]*leave.Application, error) {
	var matched []*leave.Application
	for _, application := range stub.all {
		if application.StudentID == studentID {
			matched = append(matched, application)
		}
	}
	return matched, nil
}

func (stub stubLeaves) BalanceOf(_ context.Context, studentID string) (leave.Balance, error) {
	balance, ok := stub.balances[studentID]
	if !ok {
		return nil, apperr.NotFound("Leave balance")
	}
	return balance, nil
}

type stubManagers struct{}

func (stubManagers) ResolveManagerFor(context.Context, string) (*roster.ManagerCard, error) {
	return &roster.ManagerCard{AdminName: roster.FallbackManagerName}, nil
}

/*
TestOverview verifies the headline figures: present/absent split over today's
records and the pending-leave count.
*/
func TestOverview(t *testing.T) {
	students := stubStudents{students: []*identity.User{
		{StudentID: "S-001", Role: "student"},
		{StudentID: "S-002", Role: "student"},
		{StudentID: "S-003", Role: "student"},
		{StudentID: "S-004", Role: "student"},
	}}
	attendanceSource := stubAttendance{all: []*attendance.Record{
		{StudentID: "S-001", Date: "23 Aug, 2026", CheckIn: "09:00 AM"},
		{StudentID: "S-002", Date: "23 Aug, 2026", CheckIn: "09:10 AM"},
		{StudentID: "S-003", Date: "23 Aug, 2026", CheckIn: "09:20 AM"},
		{StudentID: "S-001", Date: "20 Aug, 2026", CheckIn: "09:00 AM"}, // not today
		{StudentID: "S-004", Date: "23 Aug, 2026"},                     // no check-in
	}}
	leaves := stubLeaves{all: []*leave.Application{
		{StudentID: "S-001", Status: leave.StatusPending},
		{StudentID: "S-002", Status: leave.StatusApproved},
		{StudentID: "S-003", Status: leave.StatusPending},
	}}

	service := dashboard.NewService(students, attendanceSource, leaves, stubManagers{}, clock.Fixed{Instant: reportingDay})

	stats, err := service.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalStudents)
	assert.Equal(t, 3, stats.PresentToday)
	assert.Equal(t, 1, stats.AbsentToday)
	assert.Equal(t, 75.0, stats.AttendancePercentage)
	assert.Equal(t, 2, stats.PendingLeaves)
}

/*
TestOverview_NoStudents verifies the empty campus does not divide by zero.
*/
func TestOverview_NoStudents(t *testing.T) {
	service := dashboard.NewService(stubStudents{}, stubAttendance{}, stubLeaves{}, stubManagers{}, clock.Fixed{Instant: reportingDay})

	stats, err := service.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalStudents)
	assert.Equal(t, 0, stats.AbsentToday)
	assert.Equal(t, 0.0, stats.AttendancePercentage)
}

/*
TestStudentData verifies the per-student snapshot aggregation, including the
tolerated missing balance card.
*/
func TestStudentData(t *testing.T) {
	student := &identity.User{ID: "user-1", StudentID: "S-001", Name: "Student One", Role: "student"}
	students := stubStudents{students: []*identity.User{student}}

	attendanceSource := stubAttendance{
		records: map[string][]*attendance.Record{
			"S-001": {{StudentID: "S-001", Date: "23 Aug, 2026", CheckIn: "09:00 AM"}},
		},
		today: map[string]*attendance.Record{
			"S-001": {StudentID: "S-001", Date: "23 Aug, 2026", CheckIn: "09:00 AM"},
		},
	}
	leaves := stubLeaves{
		all:      []*leave.Application{{StudentID: "S-001", Status: leave.StatusPending}},
		balances: map[string]leave.Balance{"S-001": {leave.TypeCasual: {Taken: 1, Total: 3}}},
	}

	service := dashboard.NewService(students, attendanceSource, leaves, stubManagers{}, clock.Fixed{Instant: reportingDay})

	snapshot, err := service.StudentData(context.Background(), "S-001")
	require.NoError(t, err)

	assert.Equal(t, student, snapshot.Student)
	assert.Len(t, snapshot.AttendanceHistory, 1)
	assert.Len(t, snapshot.Leaves, 1)
	assert.Equal(t, 1, snapshot.LeaveBalance[leave.TypeCasual].Taken)
	assert.Equal(t, roster.FallbackManagerName, snapshot.Manager.AdminName)
	require.NotNil(t, snapshot.CheckIn)

	// Unknown student short-circuits before any aggregation.
	_, err = service.StudentData(context.Background(), "S-404")
	require.Error(t, err)

	// A student without a balance card still gets a snapshot.
	leaves.balances = map[string]leave.Balance{}
	service = dashboard.NewService(students, attendanceSource, leaves, stubManagers{}, clock.Fixed{Instant: reportingDay})
	snapshot, err = service.StudentData(context.Background(), "S-001")
	require.NoError(t, err)
	assert.Nil(t, snapshot.LeaveBalance)
}
