package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/roster"
)

// PayrollSource serves the store to the payment engine. It is a separate type
// because the engine's Get* methods return reference views, not roster records.
type PayrollSource struct {
	store *Store
}

var _ payment.Source = (*PayrollSource)(nil)

// Payroll returns the payment.Source view of the store.
func (s *Store) Payroll() *PayrollSource {
	return &PayrollSource{store: s}
}

func (p *PayrollSource) RateConfig(ctx context.Context) (payment.RateConfig, error) {
	return p.store.RateConfig(ctx)
}

type assignmentRow struct {
	ID               string          `db:"id"`
	Code             string          `db:"code"`
	Name             string          `db:"name"`
	ClassType        string          `db:"class_type"`
	ClassCoefficient decimal.Decimal `db:"coefficient"`
	StudentCount     int             `db:"student_count"`

	CourseID          string          `db:"course_id"`
	CourseCode        string          `db:"course_code"`
	CourseName        string          `db:"course_name"`
	CourseLessons     int             `db:"course_lessons"`
	CourseCoefficient decimal.Decimal `db:"course_coefficient"`

	SemesterID    string    `db:"semester_id"`
	SemesterName  string    `db:"semester_name"`
	SemesterYear  string    `db:"semester_year"`
	SemesterStart time.Time `db:"semester_start"`

	teacherRow
}

type teacherRow struct {
	TeacherID         string          `db:"teacher_id"`
	TeacherCode       string          `db:"teacher_code"`
	TeacherName       string          `db:"teacher_name"`
	DegreeCoefficient decimal.Decimal `db:"degree_coefficient"`
	DepartmentID      string          `db:"department_id"`
	DepartmentCode    string          `db:"department_code"`
	DepartmentName    string          `db:"department_name"`
}

func (r teacherRow) ref() payment.TeacherRef {
	return payment.TeacherRef{
		ID:                r.TeacherID,
		Code:              r.TeacherCode,
		Name:              r.TeacherName,
		DegreeCoefficient: r.DegreeCoefficient,
		Department: payment.DepartmentRef{
			ID:   r.DepartmentID,
			Code: r.DepartmentCode,
			Name: r.DepartmentName,
		},
	}
}

func (r assignmentRow) assignment() payment.Assignment {
	return payment.Assignment{
		ID:               r.ID,
		Code:             r.Code,
		Name:             r.Name,
		ClassType:        payment.ClassType(r.ClassType),
		ClassCoefficient: r.ClassCoefficient,
		StudentCount:     r.StudentCount,
		Course: payment.CourseRef{
			ID:          r.CourseID,
			Code:        r.CourseCode,
			Name:        r.CourseName,
			Lessons:     r.CourseLessons,
			Coefficient: r.CourseCoefficient,
		},
		Semester: payment.SemesterRef{
			ID:        r.SemesterID,
			Name:      r.SemesterName,
			Year:      r.SemesterYear,
			StartDate: r.SemesterStart,
		},
		Teacher: r.teacherRow.ref(),
	}
}

const teacherJoin = `
	t.id AS teacher_id, t.code AS teacher_code, t.name AS teacher_name,
	g.coefficient AS degree_coefficient,
	d.id AS department_id, d.code AS department_code, d.name AS department_name`

// ListAssignments joins course classes with everything the calculator needs
// in a single query.
func (p *PayrollSource) ListAssignments(ctx context.Context, f payment.Filter) ([]payment.Assignment, error) {
	var (
		where []string
		args  []any
	)
	if f.SemesterID != "" {
		where = append(where, "cc.semester_id = ?")
		args = append(args, f.SemesterID)
	}
	if f.TeacherID != "" {
		where = append(where, "cc.teacher_id = ?")
		args = append(args, f.TeacherID)
	}
	if f.DepartmentID != "" {
		where = append(where, "t.department_id = ?")
		args = append(args, f.DepartmentID)
	}
	if f.Year != "" {
		where = append(where, "s.year = ?")
		args = append(args, f.Year)
	}

	query := `
		SELECT cc.id, cc.code, cc.name, cc.class_type, cc.coefficient, cc.student_count,
			c.id AS course_id, c.code AS course_code, c.name AS course_name,
			c.total_lessons AS course_lessons, c.coefficient AS course_coefficient,
			s.id AS semester_id, s.name AS semester_name, s.year AS semester_year,
			s.start_date AS semester_start,` + teacherJoin + `
		FROM course_classes cc
		JOIN courses c ON c.id = cc.course_id
		JOIN semesters s ON s.id = cc.semester_id
		JOIN teachers t ON t.id = cc.teacher_id
		JOIN degrees g ON g.id = t.degree_id
		JOIN departments d ON d.id = t.department_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}

	rows, err := listAll[assignmentRow](ctx, p.store, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	out := make([]payment.Assignment, len(rows))
	for i, r := range rows {
		out[i] = r.assignment()
	}
	return out, nil
}

func (p *PayrollSource) GetSemester(ctx context.Context, id string) (*payment.SemesterRef, error) {
	sem, err := p.store.GetSemester(ctx, id)
	if err != nil || sem == nil {
		return nil, err
	}
	ref := semesterRef(*sem)
	return &ref, nil
}

func (p *PayrollSource) ListSemesters(ctx context.Context) ([]payment.SemesterRef, error) {
	sems, err := p.store.ListSemesters(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]payment.SemesterRef, len(sems))
	for i, sem := range sems {
		out[i] = semesterRef(sem)
	}
	return out, nil
}

func semesterRef(sem roster.Semester) payment.SemesterRef {
	return payment.SemesterRef{ID: sem.ID, Name: sem.Name, Year: sem.Year, StartDate: sem.StartDate}
}

func (p *PayrollSource) GetTeacher(ctx context.Context, id string) (*payment.TeacherRef, error) {
	row, err := getOne[teacherRow](ctx, p.store, `
		SELECT`+teacherJoin+`
		FROM teachers t
		JOIN degrees g ON g.id = t.degree_id
		JOIN departments d ON d.id = t.department_id
		WHERE t.id = ?`, id)
	if err != nil || row == nil {
		return nil, err
	}
	ref := row.ref()
	return &ref, nil
}

func (p *PayrollSource) GetDepartment(ctx context.Context, id string) (*payment.DepartmentRef, error) {
	dept, err := p.store.GetDepartment(ctx, id)
	if err != nil || dept == nil {
		return nil, err
	}
	return &payment.DepartmentRef{ID: dept.ID, Code: dept.Code, Name: dept.Name}, nil
}

// =============================================================================
// CLASS STATISTICS
// =============================================================================

// StatsFilter selects one semester or every semester of an academic year.
type StatsFilter struct {
	SemesterID string
	Year       string
}

// ClassStats counts classes and enrolled students per course. An unknown
// semester or a year without semesters is a *payment.NotFoundError.
func (s *Store) ClassStats(ctx context.Context, f StatsFilter) ([]roster.CourseStat, error) {
	var (
		cond string
		arg  string
	)
	switch {
	case f.SemesterID != "":
		sem, err := s.GetSemester(ctx, f.SemesterID)
		if err != nil {
			return nil, err
		}
		if sem == nil {
			return nil, &payment.NotFoundError{Kind: "semester", ID: f.SemesterID}
		}
		cond, arg = "s.id = ?", f.SemesterID
	case f.Year != "":
		var id string
		err := s.get(ctx, &id, `SELECT id FROM semesters WHERE year = ? LIMIT 1`, f.Year)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &payment.NotFoundError{Kind: "year", ID: f.Year}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up year: %w", err)
		}
		cond, arg = "s.year = ?", f.Year
	default:
		return nil, payment.ErrUnscopedFilter
	}

	return listAll[roster.CourseStat](ctx, s, `
		SELECT s.id AS semester_id, s.name AS semester_name,
			c.id AS course_id, c.code AS course_code, c.name AS course_name,
			COUNT(cc.id) AS total_classes,
			COALESCE(SUM(cc.student_count), 0) AS total_students
		FROM course_classes cc
		JOIN courses c ON c.id = cc.course_id
		JOIN semesters s ON s.id = cc.semester_id
		WHERE `+cond+`
		GROUP BY s.id, s.name, s.start_date, c.id, c.code, c.name
		ORDER BY s.start_date, c.code`, arg)
}
