// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package attendance

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jasminaramim/mpi-attendence-management/internal/platform/request"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/respond"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/validate"
)

// Guard is a route-group middleware injected by the composition root.
type Guard func(http.Handler) http.Handler

// Handler implements attendance HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with attendance endpoints.
//
// # Endpoints
//   - POST /check-in, /check-out, GET /my-attendance : student self-service.
//   - GET /all-attendance, POST /update-attendance, /add-attendance,
//     DELETE /delete-attendance : admin corrections.
func (handler *Handler) Routes(requireAuth, requireAdmin Guard) chi.Router {
	router := chi.NewRouter()

	router.Group(func(authed chi.Router) {
		authed.Use(requireAuth)
		authed.Post("/check-in", handler.checkIn)
		authed.Post("/check-out", handler.checkOut)
		authed.Get("/my-attendance", handler.myAttendance)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Get("/all-attendance", handler.allAttendance)
		admin.Post("/update-attendance", handler.updateAttendance)
		admin.Post("/add-attendance", handler.addAttendance)
		admin.Delete("/delete-attendance", handler.deleteAttendance)
	})

	return router
}

func (handler *Handler) checkIn(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.CheckIn(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"record": record})
}

func (handler *Handler) checkOut(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.CheckOut(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"record": record})
}

func (handler *Handler) myAttendance(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	records, err := handler.service.History(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"attendance": records})
}

func (handler *Handler) allAttendance(writer http.ResponseWriter, request *http.Request) {
	records, err := handler.service.AllRecords(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"records": records})
}

type updateAttendanceRequest struct {
	StudentID string `json:"studentId"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
}

func (handler *Handler) updateAttendance(writer http.ResponseWriter, request *http.Request) {
	var input updateAttendanceRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.StudentID == "" || input.Date == "" {
		respond.Error(writer, request, validate.RequiredError("studentId/date", "are required"))
		return
	}

	record, err := handler.service.Update(request.Context(), UpdateInput{
		StudentID: input.StudentID,
		Date:      input.Date,
		Status:    input.Status,
		CheckIn:   input.CheckIn,
		CheckOut:  input.CheckOut,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"record": record})
}

type addAttendanceRequest struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
	Status    string `json:"status"`
}

func (handler *Handler) addAttendance(writer http.ResponseWriter, request *http.Request) {
	var input addAttendanceRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.StudentID == "" || input.Date == "" {
		respond.Error(writer, request, validate.RequiredError("studentId/date", "are required"))
		return
	}

	record, err := handler.service.Add(request.Context(), AddInput{
		StudentID: input.StudentID,
		Name:      input.Name,
		Date:      input.Date,
		CheckIn:   input.CheckIn,
		CheckOut:  input.CheckOut,
		Status:    input.Status,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"record": record})
}

type deleteAttendanceRequest struct {
	StudentID string `json:"studentId"`
	Date      string `json:"date"`
}

func (handler *Handler) deleteAttendance(writer http.ResponseWriter, request *http.Request) {
	var input deleteAttendanceRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.StudentID == "" || input.Date == "" {
		respond.Error(writer, request, validate.RequiredError("studentId/date", "are required"))
		return
	}

	if err := handler.service.Delete(request.Context(), input.StudentID, input.Date); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{})
}
