/*
Package payment computes what teachers are owed for teaching and rolls the
amounts up into department, year and school reports.

PURPOSE:
  A pure, deterministic pipeline from (rate configuration, roster,
  course-class assignments) to line items, teacher summaries and rollups.
  Nothing here performs I/O except the Resolver, which reads through a Source.

PIPELINE:
  Source -> Resolver -> Calculate -> AggregateTeachers -> Rollup* -> Reports

  Every stage returns new values; no stage mutates the output of another.

MONEY:
  All amounts and coefficients are decimal.Decimal. The only rounding step in
  the whole pipeline is in Calculate (see calculator.go). Every total above a
  line item is an exact decimal sum.

SEE ALSO:
  - rates.go: RateConfig and coefficient modes
  - calculator.go: line-item formula
  - teachers.go, rollup.go: aggregation
  - report.go: the exposed report operations
*/
package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLASS TYPE
// =============================================================================

// ClassType is the closed set of course-class kinds a rate coefficient is
// configured for.
type ClassType string

const (
	ClassNormal        ClassType = "normal"
	ClassSpecial       ClassType = "special"
	ClassInternational ClassType = "international"
)

// ClassTypes lists every known class type in display order.
var ClassTypes = []ClassType{ClassNormal, ClassSpecial, ClassInternational}

// Valid reports whether c is one of the known class types.
func (c ClassType) Valid() bool {
	for _, ct := range ClassTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// =============================================================================
// REFERENCES - denormalized views of roster entities
// =============================================================================

type DepartmentRef struct {
	ID   string `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

type TeacherRef struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	DegreeCoefficient decimal.Decimal `json:"-"`
	Department        DepartmentRef   `json:"department"`
}

type CourseRef struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Lessons     int             `json:"totalLessons"`
	Coefficient decimal.Decimal `json:"coefficient"`
}

type SemesterRef struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      string    `json:"year"`
	StartDate time.Time `json:"startDate"`
}

// Assignment is one course-class joined with everything the calculator needs.
// Resolvers hand these out fully populated; downstream code never re-queries.
type Assignment struct {
	ID               string
	Code             string
	Name             string
	ClassType        ClassType
	ClassCoefficient decimal.Decimal
	StudentCount     int // informational, never part of the amount

	Course   CourseRef
	Semester SemesterRef
	Teacher  TeacherRef
}

// =============================================================================
// LINE ITEM - computed amount for one assignment
// =============================================================================

type LineItem struct {
	AssignmentID   string `json:"courseClass"`
	AssignmentCode string `json:"courseClassCode"`
	TeacherID      string `json:"teacherId"`
	SemesterID     string `json:"semesterId"`
	Year           string `json:"year"`
	CourseCode     string `json:"courseCode"`
	CourseName     string `json:"courseName"`
	Lessons        int    `json:"lessons"`

	ClassType            ClassType       `json:"classType"`
	ClassCoefficient     decimal.Decimal `json:"classCoefficient"`
	ClassTypeCoefficient decimal.Decimal `json:"classTypeCoefficient"`
	CourseCoefficient    decimal.Decimal `json:"courseCoefficient"`
	DegreeCoefficient    decimal.Decimal `json:"degreeCoefficient"`
	Amount               decimal.Decimal `json:"amount"`

	Teacher TeacherRef `json:"-"`
}

// =============================================================================
// SUMMARIES AND ROLLUPS
// =============================================================================

// TeacherSummary is the per-teacher fold of line items.
type TeacherSummary struct {
	Teacher           TeacherRef      `json:"teacher"`
	TotalLessons      int             `json:"totalLessons"`
	DegreeCoefficient decimal.Decimal `json:"degreeCoefficient"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	LineItems         []LineItem      `json:"lineItems"`
}

// Totals are carried by every rollup node. They are always the sum of the
// node's children, never recomputed from assignments.
type Totals struct {
	TotalTeachers int             `json:"totalTeachers"`
	TotalLessons  int             `json:"totalLessons"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

func (t Totals) Add(o Totals) Totals {
	return Totals{
		TotalTeachers: t.TotalTeachers + o.TotalTeachers,
		TotalLessons:  t.TotalLessons + o.TotalLessons,
		TotalAmount:   t.TotalAmount.Add(o.TotalAmount),
	}
}

type DepartmentRollup struct {
	Department DepartmentRef `json:"department"`
	Totals
	Teachers []TeacherSummary `json:"teachers"`
}

type YearRollup struct {
	Year string `json:"year"`
	Totals
	Departments []DepartmentRollup `json:"departments"`
}

type SchoolRollup struct {
	Year string `json:"year,omitempty"` // empty when the report spans all years
	Totals
	Departments []DepartmentRollup `json:"departments"`
	Years       []YearRollup       `json:"years"`
}

// SemesterReport lists every paid teacher of a semester together with the
// rate snapshot the amounts were computed from.
type SemesterReport struct {
	Semester SemesterRef      `json:"semester"`
	Rates    RateConfig       `json:"rates"`
	Teachers []TeacherSummary `json:"teachers"`
	Total    Totals           `json:"grandTotal"`
}
