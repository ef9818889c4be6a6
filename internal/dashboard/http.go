// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jasminaramim/mpi-attendence-management/internal/platform/request"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/respond"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/validate"
)

// Guard is a route-group middleware injected by the composition root.
type Guard func(http.Handler) http.Handler

// Handler implements admin dashboard HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with dashboard endpoints. All routes are
// admin only.
func (handler *Handler) Routes(requireAdmin Guard) chi.Router {
	router := chi.NewRouter()

	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Get("/dashboard", handler.overview)
		admin.Get("/get-student-data", handler.studentData)
	})

	return router
}

func (handler *Handler) overview(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Overview(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"stats": stats})
}

func (handler *Handler) studentData(writer http.ResponseWriter, request *http.Request) {
	studentID := requestutil.Query(request, "studentId")
	if studentID == "" {
		respond.Error(writer, request, validate.RequiredError("studentId", "is required"))
		return
	}

	snapshot, err := handler.service.StudentData(request.Context(), studentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{
		"student":           snapshot.Student,
		"attendanceHistory": snapshot.AttendanceHistory,
		"leaveBalance":      snapshot.LeaveBalance,
		"leaves":            snapshot.Leaves,
		"manager":           snapshot.Manager,
		"checkIn":           snapshot.CheckIn,
	})
}
