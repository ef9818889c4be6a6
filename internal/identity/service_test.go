// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package identity_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminaramim/mpi-attendence-management/internal/identity"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/kv"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/sec"
)

// memorySessions is an in-memory SessionStore for tests.
type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]string{}}
}

func (store *memorySessions) Create(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[tokenHash] = userID
	return nil
}

func (store *memorySessions) Find(_ context.Context, tokenHash string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	userID, ok := store.sessions[tokenHash]
	if !ok {
		return "", apperr.Unauthorized("Invalid or expired refresh token")
	}
	return userID, nil
}

func (store *memorySessions) Delete(_ context.Context, tokenHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, tokenHash)
	return nil
}

// stubTokens mints predictable access tokens without real signing.
type stubTokens struct{}

func (stubTokens) GenerateAccessToken(userID, _, role string, _ time.Duration) (string, error) {
	return fmt.Sprintf("token-%s-%s", userID, role), nil
}

// recordingSeeder captures which student IDs were seeded.
type recordingSeeder struct {
	seeded []string
}

func (seeder *recordingSeeder) SeedStudentDefaults(_ context.Context, studentID string) error {
	seeder.seeded = append(seeder.seeded, studentID)
	return nil
}

func newFixture() (*identity.Service, *recordingSeeder, *kv.MemoryStore) {
	store := kv.NewMemoryStore()
	seeder := &recordingSeeder{}
	service := identity.NewService(store, newMemorySessions(), stubTokens{}, nil, seeder)
	return service, seeder, store
}

func signupStudent(t *testing.T, service *identity.Service) *identity.User {
	t.Helper()
	user, err := service.Signup(context.Background(), identity.SignupInput{
		Email:     "student@mpi.edu",
		Password:  "secret123",
		Name:      "Student One",
		StudentID: "S-001",
		Semester:  "4th",
	})
	require.NoError(t, err)
	return user
}

/*
TestSignup_DefaultsAndSeeding verifies the student default role and that
every registered seeder runs with the institute student ID.
*/
func TestSignup_DefaultsAndSeeding(t *testing.T) {
	service, seeder, _ := newFixture()

	user := signupStudent(t, service)

	assert.Equal(t, sec.RoleStudent, user.Role)
	assert.Equal(t, []string{"S-001"}, seeder.seeded)
}

/*
TestSignup_AdminSkipsSeeding verifies admins get no student defaults.
*/
func TestSignup_AdminSkipsSeeding(t *testing.T) {
	service, seeder, _ := newFixture()

	_, err := service.Signup(context.Background(), identity.SignupInput{
		Email:    "admin@mpi.edu",
		Password: "secret123",
		Name:     "Registrar",
		Role:     sec.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Empty(t, seeder.seeded)
}

/*
TestSignup_DuplicateEmail verifies email uniqueness is enforced atomically on
the credential key.
*/
func TestSignup_DuplicateEmail(t *testing.T) {
	service, _, _ := newFixture()
	signupStudent(t, service)

	_, err := service.Signup(context.Background(), identity.SignupInput{
		Email:     "student@mpi.edu",
		Password:  "different",
		Name:      "Impostor",
		StudentID: "S-002",
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "Email is already registered", appError.Message)
	assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
}

/*
TestLogin covers the credential checks: success, wrong password with a
generic message, unknown email with the same message, and blocked accounts.
*/
func TestLogin(t *testing.T) {
	service, _, _ := newFixture()
	user := signupStudent(t, service)
	ctx := context.Background()

	session, err := service.Login(ctx, "student@mpi.edu", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "token-"+user.ID+"-student", session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, 3600, session.ExpiresIn)

	_, err = service.Login(ctx, "student@mpi.edu", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", apperr.As(err).Message)

	_, err = service.Login(ctx, "nobody@mpi.edu", "secret123")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", apperr.As(err).Message, "unknown email must not be distinguishable")

	_, err = service.BlockStudent(ctx, "S-001", true)
	require.NoError(t, err)
	_, err = service.Login(ctx, "student@mpi.edu", "secret123")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.As(err).HTTPStatus)
}

/*
TestRefreshSession_Rotation verifies a refresh token works exactly once: the
rotated-out token is revoked before the new pair is issued.
*/
func TestRefreshSession_Rotation(t *testing.T) {
	service, _, _ := newFixture()
	signupStudent(t, service)
	ctx := context.Background()

	session, err := service.Login(ctx, "student@mpi.edu", "secret123")
	require.NoError(t, err)

	renewed, err := service.RefreshSession(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, renewed.RefreshToken)

	_, err = service.RefreshSession(ctx, session.RefreshToken)
	require.Error(t, err, "a rotated-out refresh token must be dead")
	assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
}

/*
TestLogout_Idempotent verifies revoking twice is not an error.
*/
func TestLogout_Idempotent(t *testing.T) {
	service, _, _ := newFixture()
	signupStudent(t, service)
	ctx := context.Background()

	session, err := service.Login(ctx, "student@mpi.edu", "secret123")
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, session.RefreshToken))
	require.NoError(t, service.Logout(ctx, session.RefreshToken))

	_, err = service.RefreshSession(ctx, session.RefreshToken)
	require.Error(t, err)
}

/*
TestRoleOf verifies the stored-role lookup backing the admin middleware.
*/
func TestRoleOf(t *testing.T) {
	service, _, _ := newFixture()
	user := signupStudent(t, service)

	role, err := service.RoleOf(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleStudent, role)
}

/*
TestUpdateProfile_KeepsStudentFields verifies empty StudentID/Semester keep
the stored values while name and email are overwritten.
*/
func TestUpdateProfile_KeepsStudentFields(t *testing.T) {
	service, _, _ := newFixture()
	user := signupStudent(t, service)

	updated, err := service.UpdateProfile(context.Background(), user.ID, identity.UpdateProfileInput{
		Name:  "Student Renamed",
		Email: "renamed@mpi.edu",
	})
	require.NoError(t, err)

	assert.Equal(t, "Student Renamed", updated.Name)
	assert.Equal(t, "renamed@mpi.edu", updated.Email)
	assert.Equal(t, "S-001", updated.StudentID)
	assert.Equal(t, "4th", updated.Semester)
}

/*
TestUpdateProfile_RekeysCredential verifies an email change moves the login
credential with it: the new address logs in, the old one is dead, and the
new address stays unique.
*/
func TestUpdateProfile_RekeysCredential(t *testing.T) {
	service, _, _ := newFixture()
	user := signupStudent(t, service)
	ctx := context.Background()

	_, err := service.UpdateProfile(ctx, user.ID, identity.UpdateProfileInput{
		Name:  "Student One",
		Email: "renamed@mpi.edu",
	})
	require.NoError(t, err)

	_, err = service.Login(ctx, "renamed@mpi.edu", "secret123")
	require.NoError(t, err, "new email must log in")

	_, err = service.Login(ctx, "student@mpi.edu", "secret123")
	require.Error(t, err, "old email must be released")

	other, err := service.Signup(ctx, identity.SignupInput{
		Email:     "other@mpi.edu",
		Password:  "secret123",
		Name:      "Other Student",
		StudentID: "S-002",
	})
	require.NoError(t, err)

	_, err = service.UpdateProfile(ctx, other.ID, identity.UpdateProfileInput{
		Name:  "Other Student",
		Email: "renamed@mpi.edu",
	})
	require.Error(t, err, "taking another account's email must fail")
	assert.Equal(t, "Email is already registered", apperr.As(err).Message)
}

/*
TestDeleteStudent_Cascades verifies deletion removes the profile, credential,
and every record keyed by the institute student ID.
*/
func TestDeleteStudent_Cascades(t *testing.T) {
	service, _, store := newFixture()
	user := signupStudent(t, service)
	ctx := context.Background()

	// Records another domain would have written for this student.
	require.NoError(t, store.Set(ctx, "attendance:S-001:23 Aug, 2026", []byte(`{"date":"23 Aug, 2026"}`)))
	require.NoError(t, store.Set(ctx, "leave:S-001:01", []byte(`{"id":"leave:S-001:01"}`)))
	require.NoError(t, store.Set(ctx, "leaveBalance:S-001", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "manager:S-001", []byte(`{}`)))

	require.NoError(t, service.DeleteStudent(ctx, "S-001"))

	_, err := service.UserByID(ctx, user.ID)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len(), "every record for the student must be gone")

	_, err = service.Login(ctx, "student@mpi.edu", "secret123")
	require.Error(t, err, "credential must be gone too")
}
