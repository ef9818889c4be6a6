// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package complaint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

// Service implements complaint use cases.
type Service struct {
	store kv.Store
	users UserDirectory
	clock clock.Clock
}

// NewService constructs a complaint [Service].
func NewService(store kv.Store, users UserDirectory, campusClock clock.Clock) *Service {
	return &Service{store: store, users: users, clock: campusClock}
}

// SubmitInput carries a new complaint.
type SubmitInput struct {
	Subject     string
	Description string
	Attachments []string
}

// Submit files a complaint in Pending state.
func (service *Service) Submit(ctx context.Context, userID string, input SubmitInput) (*Complaint, error) {
	user, err := service.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	attachments := input.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	submission := &Complaint{
		ID:           constants.KeyPrefixComplaint + user.StudentID + ":" + uuidv7.New(),
		StudentID:    user.StudentID,
		StudentName:  user.Name,
		StudentEmail: user.Email,
		Subject:      input.Subject,
		Description:  input.Description,
		Attachments:  attachments,
		Status:       StatusPending,
		SubmittedOn:  clock.FormatDate(service.clock.Now()),
	}

	if err := service.save(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// MyComplaints returns the calling student's complaints, most recent first.
func (service *Service) MyComplaints(ctx context.Context, userID string) ([]*Complaint, error) {
	user, err := service.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return service.scan(ctx, constants.KeyPrefixComplaint+user.StudentID+":")
}

// All returns every complaint across students, most recent first.
func (service *Service) All(ctx context.Context) ([]*Complaint, error) {
	return service.scan(ctx, constants.KeyPrefixComplaint)
}

// UpdateStatus moves a complaint to the given status, optionally attaching
// an admin response. An empty response keeps the stored one.
func (service *Service) UpdateStatus(ctx context.Context, complaintID, status, response string) (*Complaint, error) {
	raw, err := service.store.Get(ctx, complaintID)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, apperr.NotFound("Complaint")
		}
		return nil, fmt.Errorf("complaint_load_failed: %w", err)
	}

	var submission Complaint
	if err := json.Unmarshal(raw, &submission); err != nil {
		return nil, fmt.Errorf("complaint_decode_failed: %w", err)
	}

	submission.Status = status
	if response != "" {
		submission.Response = response
	}

	if err := service.save(ctx, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// # Internal Helpers

func (service *Service) save(ctx context.Context, submission *Complaint) error {
	raw, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("complaint_encode_failed: %w", err)
	}
	if err := service.store.Set(ctx, submission.ID, raw); err != nil {
		return fmt.Errorf("complaint_save_failed: %w", err)
	}
	return nil
}

func (service *Service) scan(ctx context.Context, prefix string) ([]*Complaint, error) {
	values, err := service.store.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("complaint_scan_failed: %w", err)
	}

	complaints := make([]*Complaint, 0, len(values))
	for _, raw := range values {
		var submission Complaint
		if err := json.Unmarshal(raw, &submission); err != nil {
			return nil, fmt.Errorf("complaint_decode_failed: %w", err)
		}
		complaints = append(complaints, &submission)
	}

	// Time-sortable IDs: reverse lexicographic order is newest first.
	sort.SliceStable(complaints, func(i, j int) bool {
		return complaints[i].ID > complaints[j].ID
	})
	return complaints, nil
}
