package payment_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/payment/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	deptCS   = payment.DepartmentRef{ID: "dep-cs", Code: "CS", Name: "Computer Science"}
	deptMath = payment.DepartmentRef{ID: "dep-math", Code: "MATH", Name: "Mathematics"}

	fall2023   = semester("sem-2023-1", "Fall 2023", "2023-2024", time.Date(2023, time.September, 4, 0, 0, 0, 0, time.UTC))
	spring2024 = semester("sem-2023-2", "Spring 2024", "2023-2024", time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC))
	fall2024   = semester("sem-2024-1", "Fall 2024", "2024-2025", time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC))

	courseA = course("course-a", "CS101", 45, "1.0")
	courseB = course("course-b", "CS201", 60, "1.0")
	courseC = course("course-c", "MA101", 30, "1.2")
)

func semester(id, name, year string, start time.Time) payment.SemesterRef {
	return payment.SemesterRef{ID: id, Name: name, Year: year, StartDate: start}
}

func course(id, code string, lessons int, coef string) payment.CourseRef {
	return payment.CourseRef{ID: id, Code: code, Name: "Course " + code, Lessons: lessons, Coefficient: dec(coef)}
}

func teacher(id, code, degree string, dept payment.DepartmentRef) payment.TeacherRef {
	return payment.TeacherRef{
		ID:                id,
		Code:              code,
		Name:              "Teacher " + code,
		DegreeCoefficient: dec(degree),
		Department:        dept,
	}
}

func assignment(id string, c payment.CourseRef, s payment.SemesterRef, t payment.TeacherRef, ct payment.ClassType, coef string) payment.Assignment {
	return payment.Assignment{
		ID:               id,
		Code:             "CC-" + id,
		Name:             c.Code + " " + s.Name,
		ClassType:        ct,
		ClassCoefficient: dec(coef),
		StudentCount:     40,
		Course:           c,
		Semester:         s,
		Teacher:          t,
	}
}

func testRates() payment.RateConfig {
	return payment.RateConfig{
		BaseRate: dec("50000"),
		ClassTypeCoefficients: map[payment.ClassType]decimal.Decimal{
			payment.ClassNormal:        dec("1.0"),
			payment.ClassSpecial:       dec("1.5"),
			payment.ClassInternational: dec("2.0"),
		},
		Mode: payment.ModeMultiply,
	}
}

// faculty is a small roster spanning two departments and two years:
//
//	alice (CS, degree 1.3):  CS101 special 1.2 in fall 2023 -> 5,265,000
//	bob   (CS, degree 1.0):  CS201 normal 1.0 in fall 2023  -> 3,000,000
//	carol (MATH, degree 1.5): MA101 international 1.0 in spring 2024,
//	                          CS101 normal 1.0 in fall 2024
var (
	alice = teacher("t-alice", "GV001", "1.3", deptCS)
	bob   = teacher("t-bob", "GV002", "1.0", deptCS)
	carol = teacher("t-carol", "GV003", "1.5", deptMath)
)

func facultyAssignments() []payment.Assignment {
	return []payment.Assignment{
		assignment("cc-1", courseA, fall2023, alice, payment.ClassSpecial, "1.2"),
		assignment("cc-2", courseB, fall2023, bob, payment.ClassNormal, "1.0"),
		assignment("cc-3", courseC, spring2024, carol, payment.ClassInternational, "1.0"),
		assignment("cc-4", courseA, fall2024, carol, payment.ClassNormal, "1.0"),
	}
}

func newFaculty() *store.Memory {
	m := store.NewMemory()
	m.SetRateConfig(testRates())
	for _, a := range facultyAssignments() {
		m.AddAssignment(a)
	}
	return m
}
