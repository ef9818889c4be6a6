// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package notice

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

// UserDirectory resolves account profiles for notice operations.
type UserDirectory interface {
	UserByID(ctx context.Context, userID string) (*identity.User, error)
}

// Service implements notice board use cases.
type Service struct {
	store kv.Store
	users UserDirectory
	clock clock.Clock
}

// NewService constructs a notice [Service].
func NewService(store kv.Store, users UserDirectory, campusClock clock.Clock) *Service {
	return &Service{store: store, users: users, clock: campusClock}
}

// CreateInput carries a new posting.
type CreateInput struct {
	Title          string
	Content        string
	TargetAudience string
	Semester       string
	Attachments    []string
}

// Create posts a notice authored by the given admin.
func (service *Service) Create(ctx context.Context, authorID string, input CreateInput) (*Notice, error) {
	author, err := service.users.UserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	semester := input.Semester
	if semester == "" {
		semester = SemesterAll
	}
	attachments := input.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	posting := &Notice{
		ID:             constants.KeyPrefixNotice + uuidv7.New(),
		Title:          input.Title,
		Content:        input.Content,
		TargetAudience: input.TargetAudience,
		Semester:       semester,
		Attachments:    attachments,
		PostedBy:       author.Name,
		PostedOn:       clock.FormatDate(service.clock.Now()),
		Reactions:      map[string]string{},
	}

	if err := service.save(ctx, posting); err != nil {
		return nil, err
	}
	return posting, nil
}

// All returns every notice, most recent first.
func (service *Service) All(ctx context.Context) ([]*Notice, error) {
	return service.scan(ctx)
}

// VisibleTo returns the notices a student should see, filtered by audience
// and semester, most recent first.
func (service *Service) VisibleTo(ctx context.Context, userID string) ([]*Notice, error) {
	user, err := service.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	notices, err := service.scan(ctx)
	if err != nil {
		return nil, err
	}

	visible := notices[:0]
	for _, posting := range notices {
		if posting.VisibleTo(user.Semester) {
			visible = append(visible, posting)
		}
	}
	return visible, nil
}

// React records (or replaces) the caller's reaction on a notice.
func (service *Service) React(ctx context.Context, noticeID, userID, reaction string) (*Notice, error) {
	posting, err := service.load(ctx, noticeID)
	if err != nil {
		return nil, err
	}

	if posting.Reactions == nil {
		posting.Reactions = map[string]string{}
	}
	posting.Reactions[userID] = reaction

	if err := service.save(ctx, posting); err != nil {
		return nil, err
	}
	return posting, nil
}

// UpdateInput carries the editable notice fields. Empty fields keep their
// stored values.
type UpdateInput struct {
	Title          string
	Content        string
	TargetAudience string
	Semester       string
}

// Update edits an existing notice.
func (service *Service) Update(ctx context.Context, noticeID string, input UpdateInput) (*Notice, error) {
	posting, err := service.load(ctx, noticeID)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		posting.Title = input.Title
	}
	if input.Content != "" {
		posting.Content = input.Content
	}
	if input.TargetAudience != "" {
		posting.TargetAudience = input.TargetAudience
	}
	if input.Semester != "" {
		posting.Semester = input.Semester
	}

	if err := service.save(ctx, posting); err != nil {
		return nil, err
	}
	return posting, nil
}

// Delete removes a notice.
func (service *Service) Delete(ctx context.Context, noticeID string) error {
	if err := service.store.Delete(ctx, noticeID); err != nil {
		return fmt.Errorf("notice_delete_failed: %w", err)
	}
	return nil
}

// # Internal Helpers

func (service *Service) load(ctx context.Context, noticeID string) (*Notice, error) {
	raw, err := service.store.Get(ctx, noticeID)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, apperr.NotFound("Notice")
		}
		return nil, fmt.Errorf("notice_load_failed: %w", err)
	}
	var posting Notice
	if err := json.Unmarshal(raw, &posting); err != nil {
		return nil, fmt.Errorf("notice_decode_failed: %w", err)
	}
	return &posting, nil
}

func (service *Service) save(ctx context.Context, posting *Notice) error {
	raw, err := json.Marshal(posting)
	if err != nil {
		return fmt.Errorf("notice_encode_failed: %w", err)
	}
	if err := service.store.Set(ctx, posting.ID, raw); err != nil {
		return fmt.Errorf("notice_save_failed: %w", err)
	}
	return nil
}

func (service *Service) scan(ctx context.Context) ([]*Notice, error) {
	values, err := service.store.GetByPrefix(ctx, constants.KeyPrefixNotice)
	if err != nil {
		return nil, fmt.Errorf("notice_scan_failed: %w", err)
	}

	notices := make([]*Notice, 0, len(values))
	for _, raw := range values {
		var posting Notice
		if err := json.Unmarshal(raw, &posting); err != nil {
			return nil, fmt.Errorf("notice_decode_failed: %w", err)
		}
		notices = append(notices, &posting)
	}

	// Time-sortable IDs: reverse lexicographic order is newest first.
	sort.SliceStable(notices, func(i, j int) bool {
		return notices[i].ID > notices[j].ID
	})
	return notices, nil
}
