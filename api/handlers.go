/*
handlers.go - HTTP API handlers for the teaching payroll

PURPOSE:
  Exposes roster management, rate settings and the payment reports via REST.
  Handles HTTP request/response and JSON serialization; all computation is
  delegated to payment.Reports and all persistence to sqlstore.Store.

ENDPOINTS:
  Roster (roster.go):
    GET/POST        /api/{degrees,departments,teachers,courses,semesters,course-classes}
    GET/PUT/DELETE  /api/{...}/{id}
    GET             /api/course-classes/stats/semester/{semesterId}
    GET             /api/course-classes/stats/year/{year}

  Settings:
    GET    /api/settings                      Current rate configuration
    PUT    /api/settings                      Merge and save a partial configuration
    POST   /api/settings/update-coefficients  Copy class-type rates onto classes (class mode only)
    GET    /api/settings/payment-rate         Base rate only
    PUT    /api/settings/payment-rate         Replace the base rate only

  Payments (payments.go):
    GET    /api/payments/calculate/{teacherId}/{semesterId}
    GET    /api/payments/calculate-semester/{semesterId}
    GET    /api/payments/report/year/{year}
    GET    /api/payments/report/department/{departmentId}?year=
    GET    /api/payments/report/school?year=

  Scenarios (scenarios.go):
    GET    /api/scenarios, /api/scenarios/current
    POST   /api/scenarios/load, /api/scenarios/reset

ERROR HANDLING:
  Errors are returned as ErrorResponse with a status derived from the error:
  - 400: validation errors, malformed bodies, unscoped filters
  - 404: unknown semester/teacher/department/year/record
  - 409: duplicate codes, deleting a referenced record
  - 422: bad references, invalid coefficients, missing class-type rates
  - 500: everything else (logged with the request id)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/roster"
	"github.com/warp/teaching-payroll/store/sqlstore"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlstore.Store
	Reports *payment.Reports

	// DefaultRates are saved whenever the store is left without settings
	// (after a reset, or a scenario without a settings block).
	DefaultRates payment.RateConfig

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlstore.Store) *Handler {
	return &Handler{
		Store:        store,
		Reports:      payment.NewReports(store.Payroll()),
		DefaultRates: payment.DefaultRateConfig(),
	}
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the current rate configuration.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Store.RateConfig(r.Context())
	if err != nil {
		writeDomainError(w, r, "Failed to get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsDTO{RateConfig: rates})
}

// UpdateSettings merges a partial configuration onto the current one and
// saves the result.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	current, err := h.currentRates(r)
	if err != nil {
		writeDomainError(w, r, "Failed to get settings", err)
		return
	}
	next := req.merge(current)
	resp := SettingsDTO{RateConfig: next}

	if req.ApplyToClasses {
		n, err := h.Store.SaveRateConfigAndApply(r.Context(), next)
		if err != nil {
			writeDomainError(w, r, "Failed to save settings", err)
			return
		}
		resp.UpdatedClasses = &n
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if err := h.Store.SaveRateConfig(r.Context(), next); err != nil {
		writeDomainError(w, r, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateAllCoefficients copies the configured class-type coefficients onto
// every course class of that type. Refused unless the mode is "class".
func (h *Handler) UpdateAllCoefficients(w http.ResponseWriter, r *http.Request) {
	n, err := h.Store.ApplyClassTypeCoefficients(r.Context())
	if err != nil {
		writeDomainError(w, r, "Failed to apply class coefficients", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updatedClasses": n})
}

// GetPaymentRate returns the base rate alone.
func (h *Handler) GetPaymentRate(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Store.RateConfig(r.Context())
	if err != nil {
		writeDomainError(w, r, "Failed to get payment rate", err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentRateDTO{BaseRate: rates.BaseRate})
}

// UpdatePaymentRate replaces the base rate and keeps everything else.
func (h *Handler) UpdatePaymentRate(w http.ResponseWriter, r *http.Request) {
	var req PaymentRateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	current, err := h.currentRates(r)
	if err != nil {
		writeDomainError(w, r, "Failed to get settings", err)
		return
	}
	next := SettingsRequest{BaseRate: &req.BaseRate}.merge(current)
	if err := h.Store.SaveRateConfig(r.Context(), next); err != nil {
		writeDomainError(w, r, "Failed to save payment rate", err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentRateDTO{BaseRate: next.BaseRate})
}

// currentRates falls back to the defaults when nothing has been saved yet.
func (h *Handler) currentRates(r *http.Request) (payment.RateConfig, error) {
	rates, err := h.Store.RateConfig(r.Context())
	if payment.IsNotFound(err) {
		return h.DefaultRates.Clone(), nil
	}
	return rates, err
}

// ensureRates restores the default rates if the store has none.
func (h *Handler) ensureRates(r *http.Request) error {
	saved, err := h.Store.EnsureRateConfig(r.Context(), h.DefaultRates)
	if saved {
		log.Printf("[%s] No rate settings found, saved defaults (base rate %s)",
			middleware.GetReqID(r.Context()), h.DefaultRates.BaseRate)
	}
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error chain.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	resp := ErrorResponse{Error: message, Details: err.Error()}
	status := http.StatusInternalServerError

	var verr *roster.ValidationError
	switch {
	case errors.As(err, &verr):
		status, resp.Code, resp.Details = http.StatusBadRequest, "validation_failed", verr.Fields
	case payment.IsNotFound(err):
		status, resp.Code = http.StatusNotFound, "not_found"
	case errors.Is(err, payment.ErrUnscopedFilter):
		status, resp.Code = http.StatusBadRequest, "unscoped_filter"
	case errors.Is(err, sqlstore.ErrDuplicate):
		status, resp.Code = http.StatusConflict, "duplicate"
	case errors.Is(err, sqlstore.ErrReferenced):
		status, resp.Code = http.StatusConflict, "referenced"
	case errors.Is(err, sqlstore.ErrInvalidReference):
		status, resp.Code = http.StatusUnprocessableEntity, "invalid_reference"
	case payment.IsIntegrityError(err):
		status, resp.Code = http.StatusUnprocessableEntity, "integrity_error"
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s: %v", middleware.GetReqID(r.Context()), message, err)
	}
	writeJSON(w, status, resp)
}
