package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COEFFICIENT MODE
// =============================================================================

// CoefficientMode decides how a course-class's own coefficient and the
// class-type coefficient from the rate configuration combine.
type CoefficientMode string

const (
	// ModeMultiply applies both coefficients.
	ModeMultiply CoefficientMode = "multiply"
	// ModeClassOverride uses the course-class coefficient alone.
	ModeClassOverride CoefficientMode = "class"
	// ModeTypeOverride uses the class-type coefficient alone.
	ModeTypeOverride CoefficientMode = "type"
)

func (m CoefficientMode) Valid() bool {
	switch m {
	case ModeMultiply, ModeClassOverride, ModeTypeOverride:
		return true
	}
	return false
}

// =============================================================================
// RATE CONFIGURATION
// =============================================================================

// RateConfig is the rate snapshot a computation runs against. It is a value:
// callers read it once and pass it explicitly through the pipeline.
type RateConfig struct {
	BaseRate              decimal.Decimal               `json:"baseRate"`
	ClassTypeCoefficients map[ClassType]decimal.Decimal `json:"classCoefficients"`
	Mode                  CoefficientMode               `json:"mode"`
	// Precision is the number of decimal places of the smallest currency
	// unit. Zero means whole units.
	Precision int32 `json:"precision"`
}

// DefaultRateConfig returns the factory settings used when nothing has been
// configured yet.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		BaseRate: decimal.NewFromInt(50000),
		ClassTypeCoefficients: map[ClassType]decimal.Decimal{
			ClassNormal:        decimal.NewFromInt(1),
			ClassSpecial:       decimal.RequireFromString("1.5"),
			ClassInternational: decimal.NewFromInt(2),
		},
		Mode: ModeMultiply,
	}
}

// Clone returns a deep copy so the coefficient map is never shared.
func (r RateConfig) Clone() RateConfig {
	c := r
	c.ClassTypeCoefficients = make(map[ClassType]decimal.Decimal, len(r.ClassTypeCoefficients))
	for k, v := range r.ClassTypeCoefficients {
		c.ClassTypeCoefficients[k] = v
	}
	return c
}

// WithClassTypeCoefficient returns a copy with one class-type coefficient replaced.
func (r RateConfig) WithClassTypeCoefficient(ct ClassType, v decimal.Decimal) RateConfig {
	c := r.Clone()
	c.ClassTypeCoefficients[ct] = v
	return c
}

// Validate checks the snapshot as a whole. Missing class types are allowed
// here and reported per assignment by Calculate.
func (r RateConfig) Validate() error {
	if !r.BaseRate.IsPositive() {
		return &InvalidCoefficientError{Factor: "baseRate", Value: r.BaseRate}
	}
	for ct, v := range r.ClassTypeCoefficients {
		if !ct.Valid() {
			return fmt.Errorf("%w: unknown class type %q", ErrInvalidSettings, ct)
		}
		if !v.IsPositive() {
			return &InvalidCoefficientError{Factor: "classTypeCoefficient." + string(ct), Value: v}
		}
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("%w: unknown coefficient mode %q", ErrInvalidSettings, r.Mode)
	}
	if r.Precision < 0 {
		return fmt.Errorf("%w: precision must not be negative, got %d", ErrInvalidSettings, r.Precision)
	}
	return nil
}

// factors returns the class and class-type multipliers the mode selects.
func (r RateConfig) factors(classCoef, typeCoef decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	one := decimal.NewFromInt(1)
	switch r.Mode {
	case ModeClassOverride:
		return classCoef, one
	case ModeTypeOverride:
		return one, typeCoef
	default:
		return classCoef, typeCoef
	}
}
