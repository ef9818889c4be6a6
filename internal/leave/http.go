// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package leave

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jasminaramim/mpi-attendence-management/internal/platform/request"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/respond"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/validate"
)

// Guard is a route-group middleware injected by the composition root.
type Guard func(http.Handler) http.Handler

// Handler implements leave HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with leave endpoints.
//
// # Endpoints
//   - POST /apply-leave, GET /my-leaves, /leave-balance : student self-service.
//   - GET /all-leaves, POST /update-leave-status : admin review.
func (handler *Handler) Routes(requireAuth, requireAdmin Guard) chi.Router {
	router := chi.NewRouter()

	router.Group(func(authed chi.Router) {
		authed.Use(requireAuth)
		authed.Post("/apply-leave", handler.applyLeave)
		authed.Get("/my-leaves", handler.myLeaves)
		authed.Get("/leave-balance", handler.leaveBalance)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Get("/all-leaves", handler.allLeaves)
		admin.Post("/update-leave-status", handler.updateLeaveStatus)
	})

	return router
}

type applyLeaveRequest struct {
	Type     string `json:"type"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
	Reason   string `json:"reason"`
}

func (handler *Handler) applyLeave(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input applyLeaveRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Type == "" || input.FromDate == "" || input.ToDate == "" {
		respond.Error(writer, request, validate.RequiredError("type/fromDate/toDate", "are required"))
		return
	}

	application, err := handler.service.Apply(request.Context(), userID, ApplyInput{
		Type:     input.Type,
		FromDate: input.FromDate,
		ToDate:   input.ToDate,
		Reason:   input.Reason,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"leave": application})
}

func (handler *Handler) myLeaves(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	leaves, err := handler.service.MyLeaves(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"leaves": leaves})
}

func (handler *Handler) leaveBalance(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	balance, err := handler.service.MyBalance(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"balance": balance})
}

func (handler *Handler) allLeaves(writer http.ResponseWriter, request *http.Request) {
	leaves, err := handler.service.All(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"leaves": leaves})
}

type updateLeaveStatusRequest struct {
	LeaveID string `json:"leaveId"`
	Status  string `json:"status"`
}

func (handler *Handler) updateLeaveStatus(writer http.ResponseWriter, request *http.Request) {
	var input updateLeaveStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.LeaveID == "" {
		respond.Error(writer, request, validate.RequiredError("leaveId", "is required"))
		return
	}
	if input.Status != StatusApproved && input.Status != StatusRejected && input.Status != StatusPending {
		respond.Error(writer, request, validate.RequiredError("status", "must be Pending, Approved, or Rejected"))
		return
	}

	application, err := handler.service.UpdateStatus(request.Context(), input.LeaveID, input.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"leave": application})
}
