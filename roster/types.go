/*
Package roster defines the reference entities the payroll engine reads:
degrees, departments, teachers, courses, semesters and course classes.

These are plain records. Persistence lives in store/sqlstore; the payment
package only ever sees the joined payment.Assignment view of them.

JSON field names follow the existing frontend (camelCase).
*/
package roster

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/teaching-payroll/payment"
)

type Degree struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name" validate:"required,max=120"`
	ShortName   string          `json:"shortName" db:"short_name" validate:"required,max=20"`
	Coefficient decimal.Decimal `json:"coefficient" db:"coefficient" validate:"decgte=1"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

type Department struct {
	ID          string    `json:"id" db:"id"`
	Code        string    `json:"code" db:"code" validate:"required,max=20"`
	Name        string    `json:"name" db:"name" validate:"required,max=120"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type Teacher struct {
	ID           string    `json:"id" db:"id"`
	Code         string    `json:"code" db:"code" validate:"required,max=20"`
	Name         string    `json:"name" db:"name" validate:"required,max=120"`
	DateOfBirth  time.Time `json:"dob" db:"dob" validate:"required"`
	Phone        string    `json:"phone" db:"phone" validate:"omitempty,max=30"`
	Email        string    `json:"email" db:"email" validate:"omitempty,email"`
	DepartmentID string    `json:"department" db:"department_id" validate:"required"`
	DegreeID     string    `json:"degree" db:"degree_id" validate:"required"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type Course struct {
	ID           string          `json:"id" db:"id"`
	Code         string          `json:"code" db:"code" validate:"required,max=20"`
	Name         string          `json:"name" db:"name" validate:"required,max=200"`
	Credits      int             `json:"credits" db:"credits" validate:"gte=0"`
	Coefficient  decimal.Decimal `json:"coefficient" db:"coefficient" validate:"decgt=0"`
	TotalLessons int             `json:"totalLessons" db:"total_lessons" validate:"gt=0"`
	Description  string          `json:"description" db:"description"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// Semester carries an academic year label such as "2023-2024". StartDate
// must be before EndDate.
type Semester struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"required,max=120"`
	Year      string    `json:"year" db:"year" validate:"required,max=20"`
	StartDate time.Time `json:"startDate" db:"start_date" validate:"required"`
	EndDate   time.Time `json:"endDate" db:"end_date" validate:"required"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CourseClass is one teacher teaching one course in one semester. At most
// one exists per (course, semester, teacher).
type CourseClass struct {
	ID           string            `json:"id" db:"id"`
	Code         string            `json:"code" db:"code" validate:"required,max=30"`
	Name         string            `json:"name" db:"name" validate:"required,max=200"`
	CourseID     string            `json:"course" db:"course_id" validate:"required"`
	SemesterID   string            `json:"semester" db:"semester_id" validate:"required"`
	TeacherID    string            `json:"teacher" db:"teacher_id" validate:"required"`
	Type         payment.ClassType `json:"type" db:"class_type" validate:"required,classtype"`
	Coefficient  decimal.Decimal   `json:"coefficient" db:"coefficient" validate:"decgte=1"`
	StudentCount int               `json:"studentCount" db:"student_count" validate:"gte=0"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time         `json:"updatedAt" db:"updated_at"`
}

// CourseStat counts the classes opened for a course in a semester.
type CourseStat struct {
	SemesterID    string `json:"semesterId" db:"semester_id"`
	SemesterName  string `json:"semesterName" db:"semester_name"`
	CourseID      string `json:"courseId" db:"course_id"`
	CourseCode    string `json:"courseCode" db:"course_code"`
	CourseName    string `json:"courseName" db:"course_name"`
	TotalClasses  int    `json:"totalClasses" db:"total_classes"`
	TotalStudents int    `json:"totalStudents" db:"total_students"`
}
