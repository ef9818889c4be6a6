// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/clock"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/constants"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/kv"
)

// UserDirectory resolves account profiles for attendance operations.
type UserDirectory interface {
	UserByID(ctx context.Context, userID string) (*identity.User, error)
	UserByStudentID(ctx context.Context, studentID string) (*identity.User, error)
}

// Service implements attendance use cases on the shared keyspace.
type Service struct {
	store kv.Store
	users UserDirectory
	clock clock.Clock
}

// NewService constructs an attendance [Service].
func NewService(store kv.Store, users UserDirectory, campusClock clock.Clock) *Service {
	return &Service{store: store, users: users, clock: campusClock}
}

func recordKey(studentID, date string) string {
	return constants.KeyPrefixAttendance + studentID + ":" + date
}

// CheckIn stamps today's arrival for the calling student.
//
// # Business Rules
//   - Friday and Saturday are off days; check-in is rejected.
//   - One check-in per student per day. The write uses SetIfAbsent, so two
//     simultaneous requests cannot both create a record.
func (service *Service) CheckIn(ctx context.Context, userID string) (*Record, error) {
	user, err := service.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := service.clock.Now()
	if clock.IsOffDay(now) {
		return nil, apperr.Conflict("Friday and Saturday are OFFDAY. No attendance required.")
	}

	record := &Record{
		StudentID: user.StudentID,
		Name:      user.Name,
		Date:      clock.FormatDate(now),
		CheckIn:   clock.FormatTime(now),
		Status:    StatusPresent,
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("attendance_encode_failed: %w", err)
	}

	created, err := service.store.SetIfAbsent(ctx, recordKey(user.StudentID, record.Date), raw)
	if err != nil {
		return nil, fmt.Errorf("attendance_checkin_failed: %w", err)
	}
	if !created {
		return nil, apperr.Conflict("Already checked in today")
	}

	return record, nil
}

// CheckOut stamps today's departure and computes the worked duration.
func (service *Service) CheckOut(ctx context.Context, userID string) (*Record, error) {
	user, err := service.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := service.clock.Now()
	if clock.IsOffDay(now) {
		return nil, apperr.Conflict("Friday and Saturday are OFFDAY. No attendance required.")
	}

	key := recordKey(user.StudentID, clock.FormatDate(now))
	record, err := service.loadRecord(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, apperr.Conflict("No check-in found for today")
		}
		return nil, err
	}
	if record.CheckOut != "" {
		return nil, apperr.Conflict("Already checked out today")
	}

	record.CheckOut = clock.FormatTime(now)
	record.Duration = durationBetween(record.CheckIn, record.CheckOut)

	if err := service.saveRecord(ctx, key, record); err != nil {
		return nil, err
	}
	return record, nil
}

// History returns the calling student's records, most recent first.
// Off-day dates are reported as OFFDAY regardless of the stored status.
func (service *Service) History(ctx context.Context, userID string) ([]*Record, error) {
	user, err := service.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := service.scan(ctx, constants.KeyPrefixAttendance+user.StudentID+":")
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		normalizeStatus(record)
	}
	sortByDateDesc(records)
	return records, nil
}

// AllRecords returns every attendance record, most recent first.
func (service *Service) AllRecords(ctx context.Context) ([]*Record, error) {
	records, err := service.scan(ctx, constants.KeyPrefixAttendance)
	if err != nil {
		return nil, err
	}
	sortByDateDesc(records)
	return records, nil
}

// UpdateInput carries an admin correction to a record. Empty fields keep
// their stored values; setting both times recomputes the duration.
type UpdateInput struct {
	StudentID string
	Date      string
	Status    string
	CheckIn   string
	CheckOut  string
}

// Update corrects a record, creating it as Absent first when an admin sets
// a status for a day with no record.
func (service *Service) Update(ctx context.Context, input UpdateInput) (*Record, error) {
	key := recordKey(input.StudentID, input.Date)

	record, err := service.loadRecord(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			return nil, err
		}
		if input.Status == "" {
			return nil, apperr.NotFound("Attendance record")
		}

		// Materialize the missing day so the status has somewhere to land.
		name := "Unknown"
		if student, err := service.users.UserByStudentID(ctx, input.StudentID); err == nil {
			name = student.Name
		}
		record = &Record{
			StudentID: input.StudentID,
			Name:      name,
			Date:      input.Date,
			Status:    StatusAbsent,
		}
	}

	if input.Status != "" {
		record.Status = input.Status
	}
	if input.CheckIn != "" {
		record.CheckIn = input.CheckIn
	}
	if input.CheckOut != "" {
		record.CheckOut = input.CheckOut
	}
	if record.CheckIn != "" && record.CheckOut != "" {
		record.Duration = durationBetween(record.CheckIn, record.CheckOut)
	}

	if err := service.saveRecord(ctx, key, record); err != nil {
		return nil, err
	}
	return record, nil
}

// AddInput describes a record created manually by an admin.
type AddInput struct {
	StudentID string
	Name      string
	Date      string
	CheckIn   string
	CheckOut  string
	Status    string
}

// Add writes a manual record, replacing any existing one for that day.
func (service *Service) Add(ctx context.Context, input AddInput) (*Record, error) {
	record := &Record{
		StudentID: input.StudentID,
		Name:      input.Name,
		Date:      input.Date,
		CheckIn:   input.CheckIn,
		CheckOut:  input.CheckOut,
		Status:    input.Status,
	}
	if record.CheckIn != "" && record.CheckOut != "" {
		record.Duration = durationBetween(record.CheckIn, record.CheckOut)
	}

	if err := service.saveRecord(ctx, recordKey(input.StudentID, input.Date), record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes one student's record for one day.
func (service *Service) Delete(ctx context.Context, studentID, date string) error {
	if err := service.store.Delete(ctx, recordKey(studentID, date)); err != nil {
		return fmt.Errorf("attendance_delete_failed: %w", err)
	}
	return nil
}

// TodayRecord returns the student's record for the current campus day, or
// nil when none exists.
func (service *Service) TodayRecord(ctx context.Context, studentID string) (*Record, error) {
	key := recordKey(studentID, clock.FormatDate(service.clock.Now()))
	record, err := service.loadRecord(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// HistoryOf returns one student's records for admin views, most recent first.
func (service *Service) HistoryOf(ctx context.Context, studentID string) ([]*Record, error) {
	records, err := service.scan(ctx, constants.KeyPrefixAttendance+studentID+":")
	if err != nil {
		return nil, err
	}
	sortByDateDesc(records)
	return records, nil
}

// # Internal Helpers

func (service *Service) loadRecord(ctx context.Context, key string) (*Record, error) {
	raw, err := service.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("attendance_load_failed: %w", err)
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("attendance_decode_failed: %w", err)
	}
	return &record, nil
}

func (service *Service) saveRecord(ctx context.Context, key string, record *Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("attendance_encode_failed: %w", err)
	}
	if err := service.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("attendance_save_failed: %w", err)
	}
	return nil
}

func (service *Service) scan(ctx context.Context, prefix string) ([]*Record, error) {
	values, err := service.store.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("attendance_scan_failed: %w", err)
	}
	records := make([]*Record, 0, len(values))
	for _, raw := range values {
		var record Record
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("attendance_decode_failed: %w", err)
		}
		records = append(records, &record)
	}
	return records, nil
}

func normalizeStatus(record *Record) {
	if date, err := clock.ParseDate(record.Date); err == nil && clock.IsOffDay(date) {
		record.Status = StatusOffDay
		return
	}
	if record.Status == "" {
		if record.CheckIn != "" {
			record.Status = StatusPresent
		} else {
			record.Status = StatusAbsent
		}
	}
}

func sortByDateDesc(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		left, leftErr := clock.ParseDate(records[i].Date)
		right, rightErr := clock.ParseDate(records[j].Date)
		if leftErr != nil || rightErr != nil {
			return records[i].Date > records[j].Date
		}
		return left.After(right)
	})
}

// durationBetween renders the span between two clock stamps as "7h 32m".
// Unparseable stamps yield an empty duration rather than an error.
func durationBetween(checkIn, checkOut string) string {
	start, startErr := time.Parse(clock.TimeLayout, checkIn)
	end, endErr := time.Parse(clock.TimeLayout, checkOut)
	if startErr != nil || endErr != nil {
		return ""
	}
	return clock.WorkDuration(start, end)
}
