package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// CalculateTeacherPayment returns one teacher's line items for a semester.
// A teacher without classes gets a zero summary, not a 404.
func (h *Handler) CalculateTeacherPayment(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Reports.TeacherPayment(r.Context(), chi.URLParam(r, "teacherId"), chi.URLParam(r, "semesterId"))
	if err != nil {
		writeDomainError(w, r, "Failed to calculate teacher payment", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CalculateSemesterPayments returns every paid teacher of a semester.
func (h *Handler) CalculateSemesterPayments(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reports.SemesterPayments(r.Context(), chi.URLParam(r, "semesterId"))
	if err != nil {
		writeDomainError(w, r, "Failed to calculate semester payments", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ReportYear returns the academic year broken down by department.
func (h *Handler) ReportYear(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reports.YearReport(r.Context(), chi.URLParam(r, "year"))
	if err != nil {
		writeDomainError(w, r, "Failed to build year report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ReportDepartment returns one department, optionally limited by ?year=.
func (h *Handler) ReportDepartment(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reports.DepartmentReport(r.Context(), chi.URLParam(r, "departmentId"), r.URL.Query().Get("year"))
	if err != nil {
		writeDomainError(w, r, "Failed to build department report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ReportSchool returns the whole school, optionally limited by ?year=.
func (h *Handler) ReportSchool(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reports.SchoolReport(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		writeDomainError(w, r, "Failed to build school report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
