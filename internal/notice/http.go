// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package notice

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jasminaramim/mpi-attendence-management/internal/platform/request"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/respond"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/validate"
)

// Guard is a route-group middleware injected by the composition root.
type Guard func(http.Handler) http.Handler

// Handler implements notice board HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with notice endpoints.
//
// # Endpoints
//   - GET /all-notices, /my-notices, POST /react-to-notice : any account.
//   - POST /create-notice, /update-notice, DELETE /delete-notice : admin.
func (handler *Handler) Routes(requireAuth, requireAdmin Guard) chi.Router {
	router := chi.NewRouter()

	router.Group(func(authed chi.Router) {
		authed.Use(requireAuth)
		authed.Get("/all-notices", handler.allNotices)
		authed.Get("/my-notices", handler.myNotices)
		authed.Post("/react-to-notice", handler.reactToNotice)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Post("/create-notice", handler.createNotice)
		admin.Post("/update-notice", handler.updateNotice)
		admin.Delete("/delete-notice", handler.deleteNotice)
	})

	return router
}

type createNoticeRequest struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	TargetAudience string   `json:"targetAudience"`
	Semester       string   `json:"semester"`
	Attachments    []string `json:"attachments"`
}

func (handler *Handler) createNotice(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createNoticeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Title == "" || input.Content == "" {
		respond.Error(writer, request, validate.RequiredError("title/content", "are required"))
		return
	}

	posting, err := handler.service.Create(request.Context(), userID, CreateInput{
		Title:          input.Title,
		Content:        input.Content,
		TargetAudience: input.TargetAudience,
		Semester:       input.Semester,
		Attachments:    input.Attachments,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"notice": posting})
}

func (handler *Handler) allNotices(writer http.ResponseWriter, request *http.Request) {
	notices, err := handler.service.All(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"notices": notices})
}

func (handler *Handler) myNotices(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	notices, err := handler.service.VisibleTo(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"notices": notices})
}

type reactRequest struct {
	NoticeID string `json:"noticeId"`
	Reaction string `json:"reaction"`
}

func (handler *Handler) reactToNotice(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reactRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.NoticeID == "" {
		respond.Error(writer, request, validate.RequiredError("noticeId", "is required"))
		return
	}

	posting, err := handler.service.React(request.Context(), input.NoticeID, userID, input.Reaction)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"notice": posting})
}

type updateNoticeRequest struct {
	NoticeID       string `json:"noticeId"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	TargetAudience string `json:"targetAudience"`
	Semester       string `json:"semester"`
}

func (handler *Handler) updateNotice(writer http.ResponseWriter, request *http.Request) {
	var input updateNoticeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.NoticeID == "" {
		respond.Error(writer, request, validate.RequiredError("noticeId", "is required"))
		return
	}

	posting, err := handler.service.Update(request.Context(), input.NoticeID, UpdateInput{
		Title:          input.Title,
		Content:        input.Content,
		TargetAudience: input.TargetAudience,
		Semester:       input.Semester,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"notice": posting})
}

type deleteNoticeRequest struct {
	NoticeID string `json:"noticeId"`
}

func (handler *Handler) deleteNotice(writer http.ResponseWriter, request *http.Request) {
	var input deleteNoticeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.NoticeID == "" {
		respond.Error(writer, request, validate.RequiredError("noticeId", "is required"))
		return
	}

	if err := handler.service.Delete(request.Context(), input.NoticeID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{})
}
