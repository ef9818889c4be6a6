// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package roster_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminaramim/mpi-attendence-management/internal/roster"
)

// denyingGuard rejects every request, standing in for a failed role check.
func denyingGuard(status int) roster.Guard {
	return func(http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(status)
		})
	}
}

func passthroughGuard(next http.Handler) http.Handler { return next }

/*
TestRoutes_CrossStudentLookupsAreAdminOnly verifies arbitrary-student
assignment lookups sit behind the admin guard, so one student cannot read
another student's assignments, while caller-scoped reads only need a
verified identity.
*/
func TestRoutes_CrossStudentLookupsAreAdminOnly(t *testing.T) {
	service, _ := newFixture()
	handler := roster.NewHandler(service, stubDirectory{})
	router := handler.Routes(passthroughGuard, denyingGuard(http.StatusForbidden))

	adminOnly := []string{
		"/get-student-teacher?studentId=S-001",
		"/get-student-manager?studentId=S-001",
		"/all-teachers",
		"/all-managers",
	}
	for _, path := range adminOnly {
		request := httptest.NewRequest(http.MethodGet, path, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusForbidden, recorder.Code, path)
	}

	request := httptest.NewRequest(http.MethodGet, "/all-semesters", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
}
