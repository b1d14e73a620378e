/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Request bodies that differ from the stored records, plus the shared
  response wrappers. Roster records and payment reports are already shaped
  for the frontend and are encoded as they are.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

DATES:
  Teacher and semester dates are accepted as YYYY-MM-DD or RFC 3339.

SEE ALSO:
  - roster/types.go: record types returned by the CRUD endpoints
  - payment/types.go: report types returned by the payment endpoints
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/roster"
)

// =============================================================================
// ROSTER REQUESTS
// =============================================================================

// TeacherRequest creates or replaces a teacher.
type TeacherRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	DOB          string `json:"dob"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	DepartmentID string `json:"department"`
	DegreeID     string `json:"degree"`
}

func (req TeacherRequest) toTeacher(id string) (roster.Teacher, error) {
	dob, err := parseDate("dob", req.DOB)
	if err != nil {
		return roster.Teacher{}, err
	}
	return roster.Teacher{
		ID:           id,
		Code:         req.Code,
		Name:         req.Name,
		DateOfBirth:  dob,
		Phone:        req.Phone,
		Email:        req.Email,
		DepartmentID: req.DepartmentID,
		DegreeID:     req.DegreeID,
	}, nil
}

// SemesterRequest creates or replaces a semester.
type SemesterRequest struct {
	Name      string `json:"name"`
	Year      string `json:"year"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (req SemesterRequest) toSemester(id string) (roster.Semester, error) {
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return roster.Semester{}, err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return roster.Semester{}, err
	}
	return roster.Semester{ID: id, Name: req.Name, Year: req.Year, StartDate: start, EndDate: end}, nil
}

// parseDate leaves an empty value zero so validation reports it as required.
func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &roster.ValidationError{Fields: map[string]string{
			field: fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field),
		}}
	}
	return t, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsRequest is a partial rate configuration. Omitted fields keep their
// current value; the merged result is validated and saved as a whole.
type SettingsRequest struct {
	BaseRate          *decimal.Decimal                      `json:"baseRate"`
	ClassCoefficients map[payment.ClassType]decimal.Decimal `json:"classCoefficients"`
	Mode              *payment.CoefficientMode              `json:"mode"`
	Precision         *int32                                `json:"precision"`

	// ApplyToClasses also copies the class-type coefficients onto every
	// course class of that type.
	ApplyToClasses bool `json:"applyToClasses"`
}

func (req SettingsRequest) merge(current payment.RateConfig) payment.RateConfig {
	next := current.Clone()
	if req.BaseRate != nil {
		next.BaseRate = *req.BaseRate
	}
	for ct, v := range req.ClassCoefficients {
		next.ClassTypeCoefficients[ct] = v
	}
	if req.Mode != nil {
		next.Mode = *req.Mode
	}
	if req.Precision != nil {
		next.Precision = *req.Precision
	}
	return next
}

// SettingsDTO is the stored configuration, plus how many course classes were
// rewritten when the request asked for it.
type SettingsDTO struct {
	payment.RateConfig
	UpdatedClasses *int64 `json:"updatedClasses,omitempty"`
}

// PaymentRateDTO is the base-rate-only view kept for older clients.
type PaymentRateDTO struct {
	BaseRate decimal.Decimal `json:"baseRate"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes an available demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
