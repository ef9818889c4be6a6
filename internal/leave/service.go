// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package leave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/clock"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/constants"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/kv"
	"github.com/jasminaramim/mpi-attendence-management/pkg/uuidv7"
)

// UserDirectory resolves the calling student's profile.
type UserDirectory interface {
	UserByID(ctx context.Context, userID string) (*identity.User, error)
}

// Service implements leave use cases.
type Service struct {
	store kv.Store
	users UserDirectory
	clock clock.Clock
}

// NewService constructs a leave [Service].
func NewService(store kv.Store, users UserDirectory, campusClock clock.Clock) *Service {
	return &Service{store: store, users: users, clock: campusClock}
}

func balanceKey(studentID string) string {
	return constants.KeyPrefixLeaveBalance + studentID
}

// SeedStudentDefaults writes the default leave balance for a fresh student.
// Implements the signup seeding contract of the identity service.
func (service *Service) SeedStudentDefaults(ctx context.Context, studentID string) error {
	raw, err := json.Marshal(defaultBalance())
	if err != nil {
		return fmt.Errorf("leave_seed_encode_failed: %w", err)
	}
	if err := service.store.Set(ctx, balanceKey(studentID), raw); err != nil {
		return fmt.Errorf("leave_seed_failed: %w", err)
	}
	return nil
}

// ApplyInput carries a new leave request.
type ApplyInput struct {
	Type     string
	FromDate string
	ToDate   string
	Reason   string
}

// Apply files a new application in Pending state.
func (service *Service) Apply(ctx context.Context, userID string, input ApplyInput) (*Application, error) {
	user, err := service.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	application := &Application{
		ID:          constants.KeyPrefixLeave + user.StudentID + ":" + uuidv7.New(),
		StudentID:   user.StudentID,
		StudentName: user.Name,
		Type:        input.Type,
		FromDate:    input.FromDate,
		ToDate:      input.ToDate,
		Reason:      input.Reason,
		Status:      StatusPending,
		AppliedOn:   clock.FormatDate(service.clock.Now()),
	}

	if err := service.save(ctx, application); err != nil {
		return nil, err
	}
	return application, nil
}

// MyLeaves returns the calling student's applications, most recent first.
func (service *Service) MyLeaves(ctx context.Context, userID string) ([]*Application, error) {
	user, err := service.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return service.scan(ctx, constants.KeyPrefixLeave+user.StudentID+":")
}

// LeavesOf returns one student's applications for admin views.
func (service *Service) LeavesOf(ctx context.Context, studentID string) ([]*Application, error) {
	return service.scan(ctx, constants.KeyPrefixLeave+studentID+":")
}

// All returns every application across students, most recent first.
func (service *Service) All(ctx context.Context) ([]*Application, error) {
	return service.scan(ctx, constants.KeyPrefixLeave)
}

// MyBalance returns the calling student's balance card.
func (service *Service) MyBalance(ctx context.Context, userID string) (Balance, error) {
	user, err := service.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return service.BalanceOf(ctx, user.StudentID)
}

// BalanceOf loads one student's balance card.
func (service *Service) BalanceOf(ctx context.Context, studentID string) (Balance, error) {
	raw, err := service.store.Get(ctx, balanceKey(studentID))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, apperr.NotFound("Leave balance")
		}
		return nil, fmt.Errorf("leave_balance_load_failed: %w", err)
	}

	var balance Balance
	if err := json.Unmarshal(raw, &balance); err != nil {
		return nil, fmt.Errorf("leave_balance_decode_failed: %w", err)
	}
	return balance, nil
}

// UpdateStatus moves an application to the given status.
//
// Approving an application charges one day against the matching balance
// category. Categories with unlimited allowance still count taken days.
func (service *Service) UpdateStatus(ctx context.Context, leaveID, status string) (*Application, error) {
	raw, err := service.store.Get(ctx, leaveID)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, apperr.NotFound("Leave")
		}
		return nil, fmt.Errorf("leave_load_failed: %w", err)
	}

	var application Application
	if err := json.Unmarshal(raw, &application); err != nil {
		return nil, fmt.Errorf("leave_decode_failed: %w", err)
	}

	application.Status = status
	if err := service.save(ctx, &application); err != nil {
		return nil, err
	}

	if status == StatusApproved {
		if err := service.chargeBalance(ctx, application.StudentID, application.Type); err != nil {
			return nil, err
		}
	}

	return &application, nil
}

// # Internal Helpers

func (service *Service) chargeBalance(ctx context.Context, studentID, leaveType string) error {
	balance, err := service.BalanceOf(ctx, studentID)
	if err != nil {
		// No balance card means nothing to charge (e.g. legacy records).
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusNotFound {
			return nil
		}
		return err
	}

	allowance, ok := balance[leaveType]
	if !ok {
		return nil
	}
	allowance.Taken++
	balance[leaveType] = allowance

	raw, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("leave_balance_encode_failed: %w", err)
	}
	if err := service.store.Set(ctx, balanceKey(studentID), raw); err != nil {
		return fmt.Errorf("leave_balance_save_failed: %w", err)
	}
	return nil
}

func (service *Service) save(ctx context.Context, application *Application) error {
	raw, err := json.Marshal(application)
	if err != nil {
		return fmt.Errorf("leave_encode_failed: %w", err)
	}
	if err := service.store.Set(ctx, application.ID, raw); err != nil {
		return fmt.Errorf("leave_save_failed: %w", err)
	}
	return nil
}

func (service *Service) scan(ctx context.Context, prefix string) ([]*Application, error) {
	values, err := service.store.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("leave_scan_failed: %w", err)
	}

	applications := make([]*Application, 0, len(values))
	for _, raw := range values {
		var application Application
		if err := json.Unmarshal(raw, &application); err != nil {
			return nil, fmt.Errorf("leave_decode_failed: %w", err)
		}
		applications = append(applications, &application)
	}

	// IDs embed a time-sortable UUID, so reverse lexicographic order is
	// newest first.
	sort.SliceStable(applications, func(i, j int) bool {
		return applications[i].ID > applications[j].ID
	})
	return applications, nil
}
