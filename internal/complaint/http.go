// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package complaint

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jasminaramim/mpi-attendence-management/internal/platform/request"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/respond"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/validate"
)

// Guard is a route-group middleware injected by the composition root.
type Guard func(http.Handler) http.Handler

// Handler implements complaint HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with complaint endpoints.
//
// # Endpoints
//   - POST /submit-complaint, GET /my-complaints : student self-service.
//   - GET /all-complaints, POST /update-complaint-status : admin review.
func (handler *Handler) Routes(requireAuth, requireAdmin Guard) chi.Router {
	router := chi.NewRouter()

	router.Group(func(authed chi.Router) {
		authed.Use(requireAuth)
		authed.Post("/submit-complaint", handler.submitComplaint)
		authed.Get("/my-complaints", handler.myComplaints)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Get("/all-complaints", handler.allComplaints)
		admin.Post("/update-complaint-status", handler.updateComplaintStatus)
	})

	return router
}

type submitComplaintRequest struct {
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Attachments []string `json:"attachments"`
}

func (handler *Handler) submitComplaint(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input submitComplaintRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Subject == "" || input.Description == "" {
		respond.Error(writer, request, validate.RequiredError("subject/description", "are required"))
		return
	}

	submission, err := handler.service.Submit(request.Context(), userID, SubmitInput{
		Subject:     input.Subject,
		Description: input.Description,
		Attachments: input.Attachments,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"complaint": submission})
}

func (handler *Handler) myComplaints(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	complaints, err := handler.service.MyComplaints(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"complaints": complaints})
}

func (handler *Handler) allComplaints(writer http.ResponseWriter, request *http.Request) {
	complaints, err := handler.service.All(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"complaints": complaints})
}

type updateComplaintStatusRequest struct {
	ComplaintID string `json:"complaintId"`
	Status      string `json:"status"`
	Response    string `json:"response"`
}

func (handler *Handler) updateComplaintStatus(writer http.ResponseWriter, request *http.Request) {
	var input updateComplaintStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.ComplaintID == "" || input.Status == "" {
		respond.Error(writer, request, validate.RequiredError("complaintId/status", "are required"))
		return
	}

	submission, err := handler.service.UpdateStatus(request.Context(), input.ComplaintID, input.Status, input.Response)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"complaint": submission})
}
