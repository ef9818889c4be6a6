// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jasminaramim/mpi-attendence-management/internal/platform/apperr"
	requestutil "github.com/jasminaramim/mpi-attendence-management/internal/platform/request"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/respond"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/sec"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/validate"
)

// Middleware guards injected by the server composition root.
type Guard func(http.Handler) http.Handler

// Handler implements account and session HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with identity endpoints.
//
// # Endpoints
//   - POST /signup, /login, /refresh, /logout : session lifecycle (public).
//   - GET  /user-data, POST /update-profile, /upload-profile-image : profile (authenticated).
//   - GET  /all-users, /all-students, POST /block-student, DELETE /delete-student : admin.
func (handler *Handler) Routes(requireAuth, requireAdmin Guard) chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	router.Group(func(authed chi.Router) {
		authed.Use(requireAuth)
		authed.Get("/user-data", handler.userData)
		authed.Post("/update-profile", handler.updateProfile)
		authed.Post("/upload-profile-image", handler.uploadProfileImage)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Get("/all-users", handler.allUsers)
		admin.Get("/all-students", handler.allStudents)
		admin.Post("/block-student", handler.blockStudent)
		admin.Delete("/delete-student", handler.deleteStudent)
	})

	return router
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	Role      string `json:"role"`
	Semester  string `json:"semester"`
}

func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Email == "" {
		respond.Error(writer, request, validate.RequiredError("email", "is required"))
		return
	}
	if len(input.Password) < 6 {
		respond.Error(writer, request, validate.RequiredError("password", "must be at least 6 characters"))
		return
	}
	if input.Name == "" {
		respond.Error(writer, request, validate.RequiredError("name", "is required"))
		return
	}

	user, err := handler.service.Signup(request.Context(), SignupInput{
		Email:     input.Email,
		Password:  input.Password,
		Name:      input.Name,
		StudentID: input.StudentID,
		Role:      sec.UserRole(input.Role),
		Semester:  input.Semester,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusCreated, respond.Payload{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		respond.Error(writer, request, validate.RequiredError("email/password", "are required"))
		return
	}

	session, err := handler.service.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionPayload(session))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Refresh token is required"))
		return
	}

	session, err := handler.service.RefreshSession(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionPayload(session))
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Logout(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{})
}

func (handler *Handler) userData(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UserByID(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"user": user})
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	StudentID string `json:"studentId"`
	Semester  string `json:"semester"`
}

func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Name == "" || input.Email == "" {
		respond.Error(writer, request, validate.RequiredError("name/email", "are required"))
		return
	}

	user, err := handler.service.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Name:      input.Name,
		Email:     input.Email,
		StudentID: input.StudentID,
		Semester:  input.Semester,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"user": user})
}

type uploadImageRequest struct {
	FileName string `json:"fileName"`
}

func (handler *Handler) uploadProfileImage(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input uploadImageRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.FileName == "" {
		respond.Error(writer, request, validate.RequiredError("fileName", "is required"))
		return
	}

	upload, err := handler.service.ProfileImageUploadURL(request.Context(), userID, input.FileName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{
		"uploadUrl": upload.UploadURL,
		"imageUrl":  upload.ImageURL,
	})
}

func (handler *Handler) allUsers(writer http.ResponseWriter, request *http.Request) {
	users, err := handler.service.AllUsers(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"users": users})
}

func (handler *Handler) allStudents(writer http.ResponseWriter, request *http.Request) {
	students, err := handler.service.Students(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"students": students})
}

type blockStudentRequest struct {
	StudentID string `json:"studentId"`
	Blocked   bool   `json:"blocked"`
}

func (handler *Handler) blockStudent(writer http.ResponseWriter, request *http.Request) {
	var input blockStudentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.StudentID == "" {
		respond.Error(writer, request, validate.RequiredError("studentId", "is required"))
		return
	}

	student, err := handler.service.BlockStudent(request.Context(), input.StudentID, input.Blocked)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"student": student})
}

type deleteStudentRequest struct {
	StudentID string `json:"studentId"`
}

func (handler *Handler) deleteStudent(writer http.ResponseWriter, request *http.Request) {
	var input deleteStudentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.StudentID == "" {
		respond.Error(writer, request, validate.RequiredError("studentId", "is required"))
		return
	}

	if err := handler.service.DeleteStudent(request.Context(), input.StudentID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{})
}

func sessionPayload(session *LoginSession) respond.Payload {
	return respond.Payload{
		"accessToken":  session.AccessToken,
		"refreshToken": session.RefreshToken,
		"expiresIn":    session.ExpiresIn,
		"user":         session.User,
	}
}
