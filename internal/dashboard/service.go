// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package dashboard aggregates cross-domain reads for admin screens. It
// owns no keys of its own; every figure is computed from the other
// services' answers, fetched concurrently.
package dashboard

import (
	"context"
	"math"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jasminaramim/mpi-attendence-management/internal/attendance"
	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/leave"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/clock"
	"github.com/jasminaramim/mpi-attendence-management/internal/roster"
)

// StudentDirectory lists and resolves student accounts.
type StudentDirectory interface {
	Students(ctx context.Context) ([]*identity.User, error)
	UserByStudentID(ctx context.Context, studentID string) (*identity.User, error)
}

// AttendanceSource answers attendance questions for aggregation.
type AttendanceSource interface {
	AllRecords(ctx context.Context) ([]*attendance.Record, error)
	HistoryOf(ctx context.Context, studentID string) ([]*attendance.Record, error)
	TodayRecord(ctx context.Context, studentID string) (*attendance.Record, error)
}

// LeaveSource answers leave questions for aggregation.
type LeaveSource interface {
	All(ctx context.Context) ([]*leave.Application, error)
	LeavesOf(ctx context.Context, studentID string) ([]*leave.Application, error)
	BalanceOf(ctx context.Context, studentID string) (leave.Balance, error)
}

// ManagerSource resolves a student's manager.
type ManagerSource interface {
	ResolveManagerFor(ctx context.Context, studentID string) (*roster.ManagerCard, error)
}

// Service implements dashboard aggregation.
type Service struct {
	students   StudentDirectory
	attendance AttendanceSource
	leaves     LeaveSource
	managers   ManagerSource
	clock      clock.Clock
}

// NewService constructs a dashboard [Service].
func NewService(students StudentDirectory, attendanceSource AttendanceSource, leaves LeaveSource, managers ManagerSource, campusClock clock.Clock) *Service {
	return &Service{
		students:   students,
		attendance: attendanceSource,
		leaves:     leaves,
		managers:   managers,
		clock:      campusClock,
	}
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalStudents        int     `json:"totalStudents"`
	PresentToday         int     `json:"presentToday"`
	AbsentToday          int     `json:"absentToday"`
	AttendancePercentage float64 `json:"attendancePercentage"`
	PendingLeaves        int     `json:"pendingLeaves"`
}

// Overview computes today's headline figures.
//
// # Flow
//  1. Fetch students, all attendance records, and all leaves concurrently.
//  2. Count today's present records and pending leaves.
//  3. Absent is the remainder; the percentage is present over total.
func (service *Service) Overview(ctx context.Context) (*Stats, error) {
	var (
		students []*identity.User
		records  []*attendance.Record
		leaves   []*leave.Application
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		students, err = service.students.Students(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		records, err = service.attendance.AllRecords(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		leaves, err = service.leaves.All(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	today := clock.FormatDate(service.clock.Now())
	present := 0
	for _, record := range records {
		if record.Date == today && record.CheckIn != "" {
			present++
		}
	}

	pending := 0
	for _, application := range leaves {
		if application.Status == leave.StatusPending {
			pending++
		}
	}

	stats := &Stats{
		TotalStudents: len(students),
		PresentToday:  present,
		AbsentToday:   len(students) - present,
		PendingLeaves: pending,
	}
	if stats.AbsentToday < 0 {
		stats.AbsentToday = 0
	}
	if len(students) > 0 {
		stats.AttendancePercentage = math.Round(float64(present)/float64(len(students))*100*10) / 10
	}
	return stats, nil
}

// StudentSnapshot is everything an admin sees on one student's detail page.
type StudentSnapshot struct {
	Student           *identity.User       `json:"student"`
	AttendanceHistory []*attendance.Record `json:"attendanceHistory"`
	LeaveBalance      leave.Balance        `json:"leaveBalance"`
	Leaves            []*leave.Application `json:"leaves"`
	Manager           *roster.ManagerCard  `json:"manager"`
	CheckIn           *attendance.Record   `json:"checkIn"`
}

// StudentData assembles one student's full snapshot, fetching each facet
// concurrently once the account is confirmed to exist.
func (service *Service) StudentData(ctx context.Context, studentID string) (*StudentSnapshot, error) {
	student, err := service.students.UserByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	snapshot := &StudentSnapshot{Student: student}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		snapshot.AttendanceHistory, err = service.attendance.HistoryOf(groupCtx, studentID)
		return err
	})
	group.Go(func() error {
		balance, err := service.leaves.BalanceOf(groupCtx, studentID)
		if err != nil {
			// Accounts created before balance seeding have no card; the
			// snapshot reports a null balance instead of failing.
			if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusNotFound {
				return nil
			}
			return err
		}
		snapshot.LeaveBalance = balance
		return nil
	})
	group.Go(func() error {
		var err error
		snapshot.Leaves, err = service.leaves.LeavesOf(groupCtx, studentID)
		return err
	})
	group.Go(func() error {
		var err error
		snapshot.Manager, err = service.managers.ResolveManagerFor(groupCtx, studentID)
		return err
	})
	group.Go(func() error {
		var err error
		snapshot.CheckIn, err = service.attendance.TodayRecord(groupCtx, studentID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return snapshot, nil
}
