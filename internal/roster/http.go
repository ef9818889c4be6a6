// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package roster

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jasminaramim/mpi-attendence-management/internal/platform/request"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/respond"
	"github.com/jasminaramim/mpi-attendence-management/internal/platform/validate"
)

// Guard is a route-group middleware injected by the composition root.
type Guard func(http.Handler) http.Handler

// Handler implements staff directory and assignment HTTP endpoints.
type Handler struct {
	service *Service
	users   UserDirectory
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, users UserDirectory) *Handler {
	return &Handler{service: service, users: users}
}

// Routes returns a [chi.Router] with roster endpoints.
//
// # Endpoints
//   - GET /all-semesters, /my-teachers, /my-manager : any account.
//   - Cross-student lookups, directory listings, CRUD and assignment
//     routes : admin.
func (handler *Handler) Routes(requireAuth, requireAdmin Guard) chi.Router {
	router := chi.NewRouter()

	router.Group(func(authed chi.Router) {
		authed.Use(requireAuth)
		authed.Get("/all-semesters", handler.allSemesters)
		authed.Get("/my-teachers", handler.myTeachers)
		authed.Get("/my-manager", handler.myManager)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Post("/add-semester", handler.addSemester)
		admin.Get("/all-teachers", handler.allTeachers)
		admin.Post("/add-teacher", handler.addTeacher)
		admin.Post("/update-teacher", handler.updateTeacher)
		admin.Delete("/delete-teacher", handler.deleteTeacher)
		admin.Post("/add-manager", handler.addManager)
		admin.Get("/all-managers", handler.allManagers)
		admin.Delete("/delete-manager", handler.deleteManager)
		admin.Post("/assign-teacher", handler.assignTeacher)
		admin.Post("/assign-manager", handler.assignManager)
		admin.Get("/get-student-teacher", handler.getStudentTeacher)
		admin.Get("/get-student-manager", handler.getStudentManager)
	})

	return router
}

// # Semester Endpoints

type addSemesterRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (handler *Handler) addSemester(writer http.ResponseWriter, request *http.Request) {
	var input addSemesterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Name == "" || input.Code == "" {
		respond.Error(writer, request, validate.RequiredError("name/code", "are required"))
		return
	}

	entry, err := handler.service.AddSemester(request.Context(), input.Name, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"semester": entry})
}

func (handler *Handler) allSemesters(writer http.ResponseWriter, request *http.Request) {
	semesters, err := handler.service.AllSemesters(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"semesters": semesters})
}

// # Teacher Endpoints

type addTeacherRequest struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Semester string `json:"semester"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

func (handler *Handler) addTeacher(writer http.ResponseWriter, request *http.Request) {
	var input addTeacherRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Name == "" {
		respond.Error(writer, request, validate.RequiredError("name", "is required"))
		return
	}

	card, err := handler.service.AddTeacher(request.Context(), AddTeacherInput{
		Name:     input.Name,
		Subject:  input.Subject,
		Semester: input.Semester,
		Phone:    input.Phone,
		Email:    input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"teacher": card})
}

func (handler *Handler) allTeachers(writer http.ResponseWriter, request *http.Request) {
	teachers, err := handler.service.AllTeachers(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"teachers": teachers})
}

func (handler *Handler) myTeachers(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	student, err := handler.users.UserByID(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	teachers, err := handler.service.ResolveTeachersFor(request.Context(), student)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"teachers": teachers})
}

type updateTeacherRequest struct {
	TeacherID string `json:"teacherId"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Semester  string `json:"semester"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

func (handler *Handler) updateTeacher(writer http.ResponseWriter, request *http.Request) {
	var input updateTeacherRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.TeacherID == "" {
		respond.Error(writer, request, validate.RequiredError("teacherId", "is required"))
		return
	}

	card, err := handler.service.UpdateTeacher(request.Context(), input.TeacherID, UpdateTeacherInput{
		Name:     input.Name,
		Subject:  input.Subject,
		Semester: input.Semester,
		Phone:    input.Phone,
		Email:    input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"teacher": card})
}

type deleteTeacherRequest struct {
	TeacherID string `json:"teacherId"`
}

func (handler *Handler) deleteTeacher(writer http.ResponseWriter, request *http.Request) {
	var input deleteTeacherRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.TeacherID == "" {
		respond.Error(writer, request, validate.RequiredError("teacherId", "is required"))
		return
	}

	if err := handler.service.DeleteTeacher(request.Context(), input.TeacherID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{})
}

// # Manager Endpoints

type addManagerRequest struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

func (handler *Handler) addManager(writer http.ResponseWriter, request *http.Request) {
	var input addManagerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Name == "" {
		respond.Error(writer, request, validate.RequiredError("name", "is required"))
		return
	}

	card, err := handler.service.AddManager(request.Context(), AddManagerInput{
		Name:        input.Name,
		Designation: input.Designation,
		Phone:       input.Phone,
		Email:       input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"manager": card})
}

func (handler *Handler) allManagers(writer http.ResponseWriter, request *http.Request) {
	managers, err := handler.service.AllManagers(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, respond.Payload{"managers": managers})
}

type deleteManagerRequest struct {
	ManagerID string `json:"managerId"`
}

func (handler *Handler) deleteManager(writer http.ResponseWriter, request *http.Request) {
	var input deleteManagerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.ManagerID == "" {
		respond.Error(writer, request, validate.RequiredError("managerId", "is required"))
		return
	}

	if err := handler.service.DeleteManager(request.Context(), input.ManagerID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{})
}

func (handler *Handler) myManager(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	student, err := handler.users.UserByID(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	card, err := handler.service.ResolveManagerFor(request.Context(), student.StudentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"manager": card})
}

// # Assignment Endpoints

type assignTeacherRequest struct {
	StudentID string `json:"studentId"`
	TeacherID string `json:"teacherId"`
}

func (handler *Handler) assignTeacher(writer http.ResponseWriter, request *http.Request) {
	var input assignTeacherRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.StudentID == "" || input.TeacherID == "" {
		respond.Error(writer, request, validate.RequiredError("studentId/teacherId", "are required"))
		return
	}

	if err := handler.service.AssignTeacher(request.Context(), input.StudentID, input.TeacherID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"message": "Teacher assigned successfully"})
}

type assignManagerRequest struct {
	StudentID string `json:"studentId"`
	ManagerID string `json:"managerId"`
}

func (handler *Handler) assignManager(writer http.ResponseWriter, request *http.Request) {
	var input assignManagerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.StudentID == "" || input.ManagerID == "" {
		respond.Error(writer, request, validate.RequiredError("studentId/managerId", "are required"))
		return
	}

	if err := handler.service.AssignManager(request.Context(), input.StudentID, input.ManagerID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{"message": "Manager assigned successfully"})
}

func (handler *Handler) getStudentTeacher(writer http.ResponseWriter, request *http.Request) {
	studentID := requestutil.Query(request, "studentId")
	if studentID == "" {
		respond.Error(writer, request, validate.RequiredError("studentId", "is required"))
		return
	}

	assignment, err := handler.service.TeacherAssignmentOf(request.Context(), studentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload := respond.Payload{"teacherId": nil, "teacher": assignment}
	if assignment != nil {
		payload["teacherId"] = assignment.TeacherID
	}
	respond.OK(writer, payload)
}

func (handler *Handler) getStudentManager(writer http.ResponseWriter, request *http.Request) {
	studentID := requestutil.Query(request, "studentId")
	if studentID == "" {
		respond.Error(writer, request, validate.RequiredError("studentId", "is required"))
		return
	}

	assignment, err := handler.service.ManagerAssignmentOf(request.Context(), studentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload := respond.Payload{"managerId": nil, "manager": assignment}
	if assignment != nil && assignment.ManagerID != "" {
		payload["managerId"] = assignment.ManagerID
	}
	respond.OK(writer, payload)
}
