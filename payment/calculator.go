package payment

import "github.com/shopspring/decimal"

// Calculate turns one assignment into its line item:
//
//	amount = round(baseRate × lessons × courseCoefficient ×
//	               classCoefficient × classTypeCoefficient × degreeCoefficient)
//
// The product is taken left to right in exact decimal arithmetic and rounded
// once, half-up, to rates.Precision places. This is the only rounding in the
// pipeline; every total above it is an exact sum of rounded amounts.
//
// rates.Mode may neutralize the class or class-type factor (see
// CoefficientMode). Both coefficients are still validated and reported.
func Calculate(a Assignment, rates RateConfig) (LineItem, error) {
	checks := []struct {
		factor string
		value  decimal.Decimal
	}{
		{"baseRate", rates.BaseRate},
		{"lessons", decimal.NewFromInt(int64(a.Course.Lessons))},
		{"courseCoefficient", a.Course.Coefficient},
		{"classCoefficient", a.ClassCoefficient},
		{"degreeCoefficient", a.Teacher.DegreeCoefficient},
	}
	for _, c := range checks {
		if !c.value.IsPositive() {
			return LineItem{}, &InvalidCoefficientError{AssignmentID: a.ID, Factor: c.factor, Value: c.value}
		}
	}

	typeCoef, ok := rates.ClassTypeCoefficients[a.ClassType]
	if !ok {
		return LineItem{}, &MissingRateError{AssignmentID: a.ID, ClassType: a.ClassType}
	}
	if !typeCoef.IsPositive() {
		return LineItem{}, &InvalidCoefficientError{AssignmentID: a.ID, Factor: "classTypeCoefficient", Value: typeCoef}
	}

	classFactor, typeFactor := rates.factors(a.ClassCoefficient, typeCoef)
	amount := rates.BaseRate.
		Mul(decimal.NewFromInt(int64(a.Course.Lessons))).
		Mul(a.Course.Coefficient).
		Mul(classFactor).
		Mul(typeFactor).
		Mul(a.Teacher.DegreeCoefficient).
		Round(rates.Precision)

	return LineItem{
		AssignmentID:         a.ID,
		AssignmentCode:       a.Code,
		TeacherID:            a.Teacher.ID,
		SemesterID:           a.Semester.ID,
		Year:                 a.Semester.Year,
		CourseCode:           a.Course.Code,
		CourseName:           a.Course.Name,
		Lessons:              a.Course.Lessons,
		ClassType:            a.ClassType,
		ClassCoefficient:     a.ClassCoefficient,
		ClassTypeCoefficient: typeCoef,
		CourseCoefficient:    a.Course.Coefficient,
		DegreeCoefficient:    a.Teacher.DegreeCoefficient,
		Amount:               amount,
		Teacher:              a.Teacher,
	}, nil
}

// CalculateAll computes every assignment or none: the first error aborts the
// batch and no partial result is returned.
func CalculateAll(assignments []Assignment, rates RateConfig) ([]LineItem, error) {
	items := make([]LineItem, 0, len(assignments))
	for _, a := range assignments {
		item, err := Calculate(a, rates)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
