// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/constants"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/kv"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/sec"
	"github.com/jasminaramim/mpi-attendence-management/pkg/uuidv7"
)

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// StudentSeeder initializes per-student records owned by other domains
// (leave balance, default manager card) right after signup.
type StudentSeeder interface {
	SeedStudentDefaults(ctx context.Context, studentID string) error
}

// ImageStorage issues presigned URLs for profile pictures.
type ImageStorage interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// Service implements account and session use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, signup,
// or login logic must be reviewed carefully.
type Service struct {
	store    kv.Store
	sessions SessionStore
	tokens   TokenProvider
	seeders  []StudentSeeder
	images   ImageStorage // nil when object storage is not configured
}

// NewService constructs a new identity [Service] with its dependencies.
func NewService(store kv.Store, sessions SessionStore, tokens TokenProvider, images ImageStorage, seeders ...StudentSeeder) *Service {
	return &Service{
		store:    store,
		sessions: sessions,
		tokens:   tokens,
		seeders:  seeders,
		images:   images,
	}
}

// RegisterSeeders attaches signup seeders after construction. The seeding
// domains read user profiles back through this service, so they are built
// second and registered here before the server starts accepting requests.
func (service *Service) RegisterSeeders(seeders ...StudentSeeder) {
	service.seeders = append(service.seeders, seeders...)
}

func userKey(userID string) string {
	return constants.KeyPrefixUser + userID
}

func credentialKey(email string) string {
	return constants.KeyPrefixCredential + email
}

// SignupInput holds the data required to enroll a new account.
type SignupInput struct {
	Email     string
	Password  string
	Name      string
	StudentID string
	Role      sec.UserRole
	Semester  string
}

// Signup validates, hashes, and persists a brand new account.
//
// # Business Rules
//   - Emails must be unique.
//   - Default role is always 'student'.
//   - Students get a seeded leave balance and a default manager card.
func (service *Service) Signup(ctx context.Context, input SignupInput) (*User, error) {
	// ── 1. Defaults ───────────────────────────────────────────────────────

	role := input.Role
	if role == "" {
		role = sec.RoleStudent
	}
	if !role.IsValid() {
		return nil, apperr.ValidationError("role must be 'student' or 'admin'")
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("identity_signup_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:        uuidv7.New(),
		Email:     input.Email,
		Name:      input.Name,
		StudentID: input.StudentID,
		Role:      role,
		Semester:  input.Semester,
	}

	credential := &Credential{
		UserID:       user.ID,
		PasswordHash: hashedPassword,
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	// The credential write doubles as the uniqueness check: SetIfAbsent is
	// atomic, so two concurrent signups for the same email cannot both win.
	credentialJSON, err := json.Marshal(credential)
	if err != nil {
		return nil, fmt.Errorf("identity_signup_encode_failed: %w", err)
	}
	created, err := service.store.SetIfAbsent(ctx, credentialKey(input.Email), credentialJSON)
	if err != nil {
		return nil, fmt.Errorf("identity_signup_credential_failed: %w", err)
	}
	if !created {
		return nil, apperr.Conflict("Email is already registered")
	}

	if err := service.saveUser(ctx, user); err != nil {
		return nil, err
	}

	// ── 5. Student Defaults ───────────────────────────────────────────────

	if role == sec.RoleStudent {
		for _, seeder := range service.seeders {
			if err := seeder.SeedStudentDefaults(ctx, user.StudentID); err != nil {
				return nil, fmt.Errorf("identity_signup_seed_failed: %w", err)
			}
		}
	}

	return user, nil
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // access token lifetime, seconds
	User         *User
}

// Login validates credentials and issues an access/refresh token pair.
//
// # Flow
//  1. Lookup credential by email.
//  2. Verify password hash using bcrypt.
//  3. Reject blocked accounts.
//  4. Issue a JWT access token and an opaque refresh token.
func (service *Service) Login(ctx context.Context, email, password string) (*LoginSession, error) {
	// ── 1. Fetch Credential ───────────────────────────────────────────────

	credential, err := service.findCredential(ctx, email)
	if err != nil {
		// Generic message to prevent email enumeration.
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	if !sec.CheckPasswordHash(password, credential.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	user, err := service.UserByID(ctx, credential.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if user.Blocked {
		return nil, apperr.Forbidden("Account is blocked")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	return service.issueSession(ctx, user)
}

// RefreshSession implements the refresh token rotation mechanism.
// It verifies the presented token, revokes it to prevent replay, and issues
// a fresh access/refresh pair.
func (service *Service) RefreshSession(ctx context.Context, refreshToken string) (*LoginSession, error) {
	// ── 1. Find Existing Session ──────────────────────────────────────────

	tokenHash := sec.HashToken(refreshToken)
	userID, err := service.sessions.Find(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	// ── 2. Rotation (Revoke Old Session) ──────────────────────────────────

	if err := service.sessions.Delete(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("identity_refresh_revoke_failed: %w", err)
	}

	// ── 3. Re-validate User ───────────────────────────────────────────────

	user, err := service.UserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found")
	}
	if user.Blocked {
		return nil, apperr.Forbidden("Account is blocked")
	}

	// ── 4. Issue New Tokens ───────────────────────────────────────────────

	return service.issueSession(ctx, user)
}

// Logout revokes the presented refresh session. Unknown tokens are treated
// as already logged out (idempotent operation).
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	return service.sessions.Delete(ctx, sec.HashToken(refreshToken))
}

func (service *Service) issueSession(ctx context.Context, user *User) (*LoginSession, error) {
	accessToken, err := service.tokens.GenerateAccessToken(
		user.ID, user.Email, string(user.Role), constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("identity_access_token_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(constants.RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("identity_refresh_token_failed: %w", err)
	}

	err = service.sessions.Create(ctx, sec.HashToken(refreshToken), user.ID, constants.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &LoginSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(constants.AccessTokenTTL.Seconds()),
		User:         user,
	}, nil
}

// # Directory Lookups

// UserByID loads a profile by account ID.
func (service *Service) UserByID(ctx context.Context, userID string) (*User, error) {
	raw, err := service.store.Get(ctx, userKey(userID))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, apperr.NotFound("User data")
		}
		return nil, fmt.Errorf("identity_user_load_failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("identity_user_decode_failed: %w", err)
	}
	return &user, nil
}

// UserByStudentID scans profiles for a student with the given institute ID.
func (service *Service) UserByStudentID(ctx context.Context, studentID string) (*User, error) {
	users, err := service.AllUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.StudentID == studentID && user.Role == sec.RoleStudent {
			return user, nil
		}
	}
	return nil, apperr.NotFound("Student")
}

// AllUsers returns every stored profile, admins included.
func (service *Service) AllUsers(ctx context.Context) ([]*User, error) {
	values, err := service.store.GetByPrefix(ctx, constants.KeyPrefixUser)
	if err != nil {
		return nil, fmt.Errorf("identity_user_scan_failed: %w", err)
	}

	users := make([]*User, 0, len(values))
	for _, raw := range values {
		var user User
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, fmt.Errorf("identity_user_decode_failed: %w", err)
		}
		users = append(users, &user)
	}
	return users, nil
}

// Students returns the profiles carrying the student role.
func (service *Service) Students(ctx context.Context) ([]*User, error) {
	users, err := service.AllUsers(ctx)
	if err != nil {
		return nil, err
	}
	students := users[:0]
	for _, user := range users {
		if user.Role == sec.RoleStudent {
			students = append(students, user)
		}
	}
	return students, nil
}

// RoleOf reports the role currently stored on the user record. It backs the
// admin middleware so role changes apply without waiting for token expiry.
func (service *Service) RoleOf(ctx context.Context, userID string) (sec.UserRole, error) {
	user, err := service.UserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// # Profile Management

// UpdateProfileInput carries the editable profile fields. Empty StudentID
// and Semester keep the stored values.
type UpdateProfileInput struct {
	Name      string
	Email     string
	StudentID string
	Semester  string
}

// UpdateProfile overwrites the caller's editable profile fields. An email
// change re-keys the stored credential so the new address logs in and the
// old one is released.
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := service.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previousEmail := user.Email
	user.Name = input.Name
	user.Email = input.Email
	if input.StudentID != "" {
		user.StudentID = input.StudentID
	}
	if input.Semester != "" {
		user.Semester = input.Semester
	}

	if user.Email != previousEmail {
		if err := service.rekeyCredential(ctx, previousEmail, user.Email); err != nil {
			return nil, err
		}
	}

	if err := service.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// rekeyCredential moves the credential record from the old email key to the
// new one. The new key is claimed with SetIfAbsent before the old one is
// released, so email uniqueness stays atomic during the move.
func (service *Service) rekeyCredential(ctx context.Context, oldEmail, newEmail string) error {
	raw, err := service.store.Get(ctx, credentialKey(oldEmail))
	if err != nil {
		return fmt.Errorf("identity_rekey_credential_load_failed: %w", err)
	}

	created, err := service.store.SetIfAbsent(ctx, credentialKey(newEmail), raw)
	if err != nil {
		return fmt.Errorf("identity_rekey_credential_claim_failed: %w", err)
	}
	if !created {
		return apperr.Conflict("Email is already registered")
	}

	if err := service.store.Delete(ctx, credentialKey(oldEmail)); err != nil {
		return fmt.Errorf("identity_rekey_credential_release_failed: %w", err)
	}
	return nil
}

// BlockStudent sets or clears the blocked flag on a student account.
// Blocked students cannot log in or refresh their session.
func (service *Service) BlockStudent(ctx context.Context, studentID string, blocked bool) (*User, error) {
	student, err := service.UserByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	student.Blocked = blocked
	if err := service.saveUser(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// DeleteStudent removes a student account and cascades into every record
// keyed by the institute student ID: attendance, leaves, leave balance, and
// the manager assignment.
func (service *Service) DeleteStudent(ctx context.Context, studentID string) error {
	student, err := service.UserByStudentID(ctx, studentID)
	if err != nil {
		return err
	}

	// ── 1. Profile and Credential ─────────────────────────────────────────

	if err := service.store.Delete(ctx, userKey(student.ID)); err != nil {
		return fmt.Errorf("identity_delete_user_failed: %w", err)
	}
	if err := service.store.Delete(ctx, credentialKey(student.Email)); err != nil {
		return fmt.Errorf("identity_delete_credential_failed: %w", err)
	}

	// ── 2. Attendance Records ─────────────────────────────────────────────

	attendancePrefix := constants.KeyPrefixAttendance + studentID + ":"
	attendanceRecords, err := service.store.GetByPrefix(ctx, attendancePrefix)
	if err != nil {
		return fmt.Errorf("identity_delete_attendance_scan_failed: %w", err)
	}
	for _, raw := range attendanceRecords {
		var record struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal(raw, &record); err != nil {
			continue
		}
		if err := service.store.Delete(ctx, attendancePrefix+record.Date); err != nil {
			return fmt.Errorf("identity_delete_attendance_failed: %w", err)
		}
	}

	// ── 3. Leave Records ──────────────────────────────────────────────────

	leaves, err := service.store.GetByPrefix(ctx, constants.KeyPrefixLeave+studentID+":")
	if err != nil {
		return fmt.Errorf("identity_delete_leave_scan_failed: %w", err)
	}
	for _, raw := range leaves {
		var leave struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &leave); err != nil || leave.ID == "" {
			continue
		}
		if err := service.store.Delete(ctx, leave.ID); err != nil {
			return fmt.Errorf("identity_delete_leave_failed: %w", err)
		}
	}

	// ── 4. Seeded Records ─────────────────────────────────────────────────

	if err := service.store.Delete(ctx, constants.KeyPrefixLeaveBalance+studentID); err != nil {
		return fmt.Errorf("identity_delete_balance_failed: %w", err)
	}
	if err := service.store.Delete(ctx, constants.KeyPrefixManagerAssign+studentID); err != nil {
		return fmt.Errorf("identity_delete_manager_failed: %w", err)
	}

	return nil
}

// # Profile Images

// ProfileImageUpload is the presigned upload contract returned to clients.
type ProfileImageUpload struct {
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
}

// ProfileImageUploadURL issues a presigned PUT for a new profile image and
// records the resulting view URL on the profile. The client uploads the
// bytes directly to object storage; the API never proxies them.
func (service *Service) ProfileImageUploadURL(ctx context.Context, userID, fileName string) (*ProfileImageUpload, error) {
	if service.images == nil {
		return nil, apperr.ValidationError("object storage is not configured")
	}

	user, err := service.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("profile-images/%s-%s%s", userID, uuidv7.New(), path.Ext(fileName))

	uploadURL, err := service.images.PresignPut(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("identity_image_presign_put_failed: %w", err)
	}
	imageURL, err := service.images.PresignGet(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("identity_image_presign_get_failed: %w", err)
	}

	user.ProfileImage = imageURL
	if err := service.saveUser(ctx, user); err != nil {
		return nil, err
	}

	return &ProfileImageUpload{UploadURL: uploadURL, ImageURL: imageURL}, nil
}

// # Internal Helpers

func (service *Service) saveUser(ctx context.Context, user *User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("identity_user_encode_failed: %w", err)
	}
	if err := service.store.Set(ctx, userKey(user.ID), raw); err != nil {
		return fmt.Errorf("identity_user_save_failed: %w", err)
	}
	return nil
}

func (service *Service) findCredential(ctx context.Context, email string) (*Credential, error) {
	raw, err := service.store.Get(ctx, credentialKey(email))
	if err != nil {
		return nil, err
	}
	var credential Credential
	if err := json.Unmarshal(raw, &credential); err != nil {
		return nil, fmt.Errorf("identity_credential_decode_failed: %w", err)
	}
	return &credential, nil
}
