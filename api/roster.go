package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/roster"
	"github.com/warp/teaching-payroll/store/sqlstore"
)

// =============================================================================
// DEGREES
// =============================================================================

func (h *Handler) ListDegrees(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, "degrees", h.Store.ListDegrees)
}

func (h *Handler) GetDegree(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, "degree", h.Store.GetDegree)
}

func (h *Handler) CreateDegree(w http.ResponseWriter, r *http.Request) {
	createRecord(w, r, "degree", h.Store.CreateDegree)
}

func (h *Handler) UpdateDegree(w http.ResponseWriter, r *http.Request) {
	updateRecord(w, r, "degree", func(d *roster.Degree, id string) { d.ID = id }, h.Store.UpdateDegree)
}

func (h *Handler) DeleteDegree(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "degree", h.Store.DeleteDegree)
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, "departments", h.Store.ListDepartments)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, "department", h.Store.GetDepartment)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	createRecord(w, r, "department", h.Store.CreateDepartment)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	updateRecord(w, r, "department", func(d *roster.Department, id string) { d.ID = id }, h.Store.UpdateDepartment)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "department", h.Store.DeleteDepartment)
}

// =============================================================================
// TEACHERS
// =============================================================================

// ListTeachers accepts ?department= to narrow the list.
func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	dept := r.URL.Query().Get("department")
	listRecords(w, r, "teachers", func(ctx context.Context) ([]roster.Teacher, error) {
		return h.Store.ListTeachers(ctx, dept)
	})
}

func (h *Handler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, "teacher", h.Store.GetTeacher)
}

func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req TeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	teacher, err := req.toTeacher("")
	if err != nil {
		writeDomainError(w, r, "Invalid teacher", err)
		return
	}
	created, err := h.Store.CreateTeacher(r.Context(), teacher)
	if err != nil {
		writeDomainError(w, r, "Failed to create teacher", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	var req TeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	teacher, err := req.toTeacher(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "Invalid teacher", err)
		return
	}
	updated, err := h.Store.UpdateTeacher(r.Context(), teacher)
	if err != nil {
		writeDomainError(w, r, "Failed to update teacher", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "teacher", h.Store.DeleteTeacher)
}

// =============================================================================
// COURSES
// =============================================================================

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, "courses", h.Store.ListCourses)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, "course", h.Store.GetCourse)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	createRecord(w, r, "course", h.Store.CreateCourse)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	updateRecord(w, r, "course", func(c *roster.Course, id string) { c.ID = id }, h.Store.UpdateCourse)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "course", h.Store.DeleteCourse)
}

// =============================================================================
// SEMESTERS
// =============================================================================

func (h *Handler) ListSemesters(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, "semesters", h.Store.ListSemesters)
}

func (h *Handler) GetSemester(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, "semester", h.Store.GetSemester)
}

func (h *Handler) CreateSemester(w http.ResponseWriter, r *http.Request) {
	var req SemesterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sem, err := req.toSemester("")
	if err != nil {
		writeDomainError(w, r, "Invalid semester", err)
		return
	}
	created, err := h.Store.CreateSemester(r.Context(), sem)
	if err != nil {
		writeDomainError(w, r, "Failed to create semester", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateSemester(w http.ResponseWriter, r *http.Request) {
	var req SemesterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sem, err := req.toSemester(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "Invalid semester", err)
		return
	}
	updated, err := h.Store.UpdateSemester(r.Context(), sem)
	if err != nil {
		writeDomainError(w, r, "Failed to update semester", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteSemester(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "semester", h.Store.DeleteSemester)
}

// =============================================================================
// COURSE CLASSES
// =============================================================================

// ListCourseClasses accepts ?semester= to narrow the list.
func (h *Handler) ListCourseClasses(w http.ResponseWriter, r *http.Request) {
	sem := r.URL.Query().Get("semester")
	listRecords(w, r, "course classes", func(ctx context.Context) ([]roster.CourseClass, error) {
		return h.Store.ListCourseClasses(ctx, sem)
	})
}

func (h *Handler) GetCourseClass(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, "course class", h.Store.GetCourseClass)
}

func (h *Handler) CreateCourseClass(w http.ResponseWriter, r *http.Request) {
	createRecord(w, r, "course class", h.Store.CreateCourseClass)
}

func (h *Handler) UpdateCourseClass(w http.ResponseWriter, r *http.Request) {
	updateRecord(w, r, "course class", func(cc *roster.CourseClass, id string) { cc.ID = id }, h.Store.UpdateCourseClass)
}

func (h *Handler) DeleteCourseClass(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "course class", h.Store.DeleteCourseClass)
}

// GetStatsBySemester counts classes and students per course in one semester.
func (h *Handler) GetStatsBySemester(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.ClassStats(r.Context(), sqlstore.StatsFilter{SemesterID: chi.URLParam(r, "semesterId")})
	if err != nil {
		writeDomainError(w, r, "Failed to get class statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetStatsByYear counts classes and students per course and semester in an
// academic year.
func (h *Handler) GetStatsByYear(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.ClassStats(r.Context(), sqlstore.StatsFilter{Year: chi.URLParam(r, "year")})
	if err != nil {
		writeDomainError(w, r, "Failed to get class statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// =============================================================================
// SHARED CRUD HANDLERS
// =============================================================================

func listRecords[T any](w http.ResponseWriter, r *http.Request, what string, list func(context.Context) ([]T, error)) {
	records, err := list(r.Context())
	if err != nil {
		writeDomainError(w, r, "Failed to list "+what, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func getRecord[T any](w http.ResponseWriter, r *http.Request, kind string, get func(context.Context, string) (*T, error)) {
	id := chi.URLParam(r, "id")
	record, err := get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "Failed to get "+kind, err)
		return
	}
	if record == nil {
		writeDomainError(w, r, "Failed to get "+kind, &payment.NotFoundError{Kind: kind, ID: id})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func createRecord[T any](w http.ResponseWriter, r *http.Request, kind string, create func(context.Context, T) (T, error)) {
	var record T
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	created, err := create(r.Context(), record)
	if err != nil {
		writeDomainError(w, r, "Failed to create "+kind, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func updateRecord[T any](w http.ResponseWriter, r *http.Request, kind string, setID func(*T, string), update func(context.Context, T) (*T, error)) {
	var record T
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	setID(&record, chi.URLParam(r, "id"))
	updated, err := update(r.Context(), record)
	if err != nil {
		writeDomainError(w, r, "Failed to update "+kind, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func deleteRecord(w http.ResponseWriter, r *http.Request, kind string, del func(context.Context, string) error) {
	if err := del(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, "Failed to delete "+kind, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
