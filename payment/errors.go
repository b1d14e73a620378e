/*
errors.go - Error taxonomy of the payment engine

ERROR CATEGORIES:
  1. Not found      - a referenced semester/teacher/department/year is absent
  2. Integrity      - invalid coefficient, missing class-type rate,
                      inconsistent degree coefficient, invalid settings
  3. Usage          - unscoped filter outside the school-wide report

None of these is retryable. None is ever converted into an empty report: a
zero report cannot be told apart from "no teaching happened".
*/
package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCoefficient = errors.New("invalid coefficient")
	ErrMissingRate        = errors.New("missing class type rate")
	ErrInconsistentDegree = errors.New("inconsistent degree coefficient")
	ErrInvalidSettings    = errors.New("invalid rate configuration")
	ErrUnscopedFilter     = errors.New("assignment filter must narrow by semester, teacher, department or year")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// NotFoundError names the missing reference.
type NotFoundError struct {
	Kind string // "semester", "teacher", "department", "year", "settings"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidCoefficientError reports a factor that is zero or negative.
type InvalidCoefficientError struct {
	AssignmentID string // empty for rate-level factors
	Factor       string
	Value        decimal.Decimal
}

func (e *InvalidCoefficientError) Error() string {
	if e.AssignmentID == "" {
		return fmt.Sprintf("invalid coefficient: %s = %s must be positive", e.Factor, e.Value)
	}
	return fmt.Sprintf("invalid coefficient: %s = %s on course class %s must be positive",
		e.Factor, e.Value, e.AssignmentID)
}

func (e *InvalidCoefficientError) Unwrap() error { return ErrInvalidCoefficient }

// MissingRateError means the rate configuration has no coefficient for a class
// type that an assignment uses.
type MissingRateError struct {
	AssignmentID string
	ClassType    ClassType
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no rate coefficient for class type %q (course class %s)", e.ClassType, e.AssignmentID)
}

func (e *MissingRateError) Unwrap() error { return ErrMissingRate }

// InconsistentDegreeError should never happen: a teacher has exactly one
// degree. Seeing it means the roster data is broken upstream.
type InconsistentDegreeError struct {
	TeacherID string
	Want      decimal.Decimal
	Got       decimal.Decimal
}

func (e *InconsistentDegreeError) Error() string {
	return fmt.Sprintf("teacher %s has line items with degree coefficients %s and %s",
		e.TeacherID, e.Want, e.Got)
}

func (e *InconsistentDegreeError) Unwrap() error { return ErrInconsistentDegree }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIntegrityError returns true for configuration or roster data problems.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrInvalidCoefficient) ||
		errors.Is(err, ErrMissingRate) ||
		errors.Is(err, ErrInconsistentDegree) ||
		errors.Is(err, ErrInvalidSettings)
}
