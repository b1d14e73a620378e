package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/roster"
)

const (
	degreeColumns      = `id, name, short_name, coefficient, created_at, updated_at`
	departmentColumns  = `id, code, name, description, created_at, updated_at`
	teacherColumns     = `id, code, name, dob, phone, email, department_id, degree_id, created_at, updated_at`
	courseColumns      = `id, code, name, credits, coefficient, total_lessons, description, created_at, updated_at`
	semesterColumns    = `id, name, year, start_date, end_date, created_at, updated_at`
	courseClassColumns = `id, code, name, course_id, semester_id, teacher_id, class_type, coefficient, student_count, created_at, updated_at`
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// =============================================================================
// DEGREES
// =============================================================================

func (s *Store) CreateDegree(ctx context.Context, d roster.Degree) (roster.Degree, error) {
	d.ID = newID(d.ID)
	d.CreatedAt, d.UpdatedAt = now(), now()
	if err := roster.Validate(d); err != nil {
		return roster.Degree{}, err
	}
	if err := s.insert(ctx, "create degree", `
		INSERT INTO degrees (`+degreeColumns+`)
		VALUES (:id, :name, :short_name, :coefficient, :created_at, :updated_at)`, d); err != nil {
		return roster.Degree{}, err
	}
	return d, nil
}

func (s *Store) GetDegree(ctx context.Context, id string) (*roster.Degree, error) {
	return getOne[roster.Degree](ctx, s, `SELECT `+degreeColumns+` FROM degrees WHERE id = ?`, id)
}

// ListDegrees orders by coefficient, then name. Coefficients are stored as
// text, so the numeric order is applied here.
func (s *Store) ListDegrees(ctx context.Context) ([]roster.Degree, error) {
	degrees, err := listAll[roster.Degree](ctx, s, `SELECT `+degreeColumns+` FROM degrees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(degrees, func(i, j int) bool {
		return degrees[i].Coefficient.LessThan(degrees[j].Coefficient)
	})
	return degrees, nil
}

func (s *Store) UpdateDegree(ctx context.Context, d roster.Degree) (*roster.Degree, error) {
	d.UpdatedAt = now()
	if err := roster.Validate(d); err != nil {
		return nil, err
	}
	if err := s.update(ctx, "degree", d.ID, `
		UPDATE degrees SET name = :name, short_name = :short_name,
			coefficient = :coefficient, updated_at = :updated_at
		WHERE id = :id`, d); err != nil {
		return nil, err
	}
	return s.GetDegree(ctx, d.ID)
}

func (s *Store) DeleteDegree(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "degrees", "degree", id)
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func (s *Store) CreateDepartment(ctx context.Context, d roster.Department) (roster.Department, error) {
	d.ID = newID(d.ID)
	d.CreatedAt, d.UpdatedAt = now(), now()
	if err := roster.Validate(d); err != nil {
		return roster.Department{}, err
	}
	if err := s.insert(ctx, "create department", `
		INSERT INTO departments (`+departmentColumns+`)
		VALUES (:id, :code, :name, :description, :created_at, :updated_at)`, d); err != nil {
		return roster.Department{}, err
	}
	return d, nil
}

func (s *Store) GetDepartment(ctx context.Context, id string) (*roster.Department, error) {
	return getOne[roster.Department](ctx, s, `SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id)
}

func (s *Store) ListDepartments(ctx context.Context) ([]roster.Department, error) {
	return listAll[roster.Department](ctx, s, `SELECT `+departmentColumns+` FROM departments ORDER BY name, id`)
}

func (s *Store) UpdateDepartment(ctx context.Context, d roster.Department) (*roster.Department, error) {
	d.UpdatedAt = now()
	if err := roster.Validate(d); err != nil {
		return nil, err
	}
	if err := s.update(ctx, "department", d.ID, `
		UPDATE departments SET code = :code, name = :name,
			description = :description, updated_at = :updated_at
		WHERE id = :id`, d); err != nil {
		return nil, err
	}
	return s.GetDepartment(ctx, d.ID)
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "departments", "department", id)
}

// =============================================================================
// TEACHERS
// =============================================================================

func (s *Store) CreateTeacher(ctx context.Context, t roster.Teacher) (roster.Teacher, error) {
	t.ID = newID(t.ID)
	t.CreatedAt, t.UpdatedAt = now(), now()
	t.DateOfBirth = t.DateOfBirth.UTC()
	if err := roster.Validate(t); err != nil {
		return roster.Teacher{}, err
	}
	if err := s.insert(ctx, "create teacher", `
		INSERT INTO teachers (`+teacherColumns+`)
		VALUES (:id, :code, :name, :dob, :phone, :email, :department_id, :degree_id, :created_at, :updated_at)`, t); err != nil {
		return roster.Teacher{}, err
	}
	return t, nil
}

func (s *Store) GetTeacher(ctx context.Context, id string) (*roster.Teacher, error) {
	return getOne[roster.Teacher](ctx, s, `SELECT `+teacherColumns+` FROM teachers WHERE id = ?`, id)
}

// ListTeachers returns all teachers, or those of one department when
// departmentID is set.
func (s *Store) ListTeachers(ctx context.Context, departmentID string) ([]roster.Teacher, error) {
	if departmentID != "" {
		return listAll[roster.Teacher](ctx, s,
			`SELECT `+teacherColumns+` FROM teachers WHERE department_id = ? ORDER BY code`, departmentID)
	}
	return listAll[roster.Teacher](ctx, s, `SELECT `+teacherColumns+` FROM teachers ORDER BY code`)
}

func (s *Store) UpdateTeacher(ctx context.Context, t roster.Teacher) (*roster.Teacher, error) {
	t.UpdatedAt = now()
	t.DateOfBirth = t.DateOfBirth.UTC()
	if err := roster.Validate(t); err != nil {
		return nil, err
	}
	if err := s.update(ctx, "teacher", t.ID, `
		UPDATE teachers SET code = :code, name = :name, dob = :dob, phone = :phone, email = :email,
			department_id = :department_id, degree_id = :degree_id, updated_at = :updated_at
		WHERE id = :id`, t); err != nil {
		return nil, err
	}
	return s.GetTeacher(ctx, t.ID)
}

func (s *Store) DeleteTeacher(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "teachers", "teacher", id)
}

// =============================================================================
// COURSES
// =============================================================================

func (s *Store) CreateCourse(ctx context.Context, c roster.Course) (roster.Course, error) {
	c.ID = newID(c.ID)
	c.CreatedAt, c.UpdatedAt = now(), now()
	if err := roster.Validate(c); err != nil {
		return roster.Course{}, err
	}
	if err := s.insert(ctx, "create course", `
		INSERT INTO courses (`+courseColumns+`)
		VALUES (:id, :code, :name, :credits, :coefficient, :total_lessons, :description, :created_at, :updated_at)`, c); err != nil {
		return roster.Course{}, err
	}
	return c, nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (*roster.Course, error) {
	return getOne[roster.Course](ctx, s, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
}

func (s *Store) ListCourses(ctx context.Context) ([]roster.Course, error) {
	return listAll[roster.Course](ctx, s, `SELECT `+courseColumns+` FROM courses ORDER BY code`)
}

func (s *Store) UpdateCourse(ctx context.Context, c roster.Course) (*roster.Course, error) {
	c.UpdatedAt = now()
	if err := roster.Validate(c); err != nil {
		return nil, err
	}
	if err := s.update(ctx, "course", c.ID, `
		UPDATE courses SET code = :code, name = :name, credits = :credits, coefficient = :coefficient,
			total_lessons = :total_lessons, description = :description, updated_at = :updated_at
		WHERE id = :id`, c); err != nil {
		return nil, err
	}
	return s.GetCourse(ctx, c.ID)
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "courses", "course", id)
}

// =============================================================================
// SEMESTERS
// =============================================================================

func (s *Store) CreateSemester(ctx context.Context, sem roster.Semester) (roster.Semester, error) {
	sem.ID = newID(sem.ID)
	sem.CreatedAt, sem.UpdatedAt = now(), now()
	sem.StartDate, sem.EndDate = sem.StartDate.UTC(), sem.EndDate.UTC()
	if err := roster.Validate(sem); err != nil {
		return roster.Semester{}, err
	}
	if err := s.insert(ctx, "create semester", `
		INSERT INTO semesters (`+semesterColumns+`)
		VALUES (:id, :name, :year, :start_date, :end_date, :created_at, :updated_at)`, sem); err != nil {
		return roster.Semester{}, err
	}
	return sem, nil
}

func (s *Store) GetSemester(ctx context.Context, id string) (*roster.Semester, error) {
	return getOne[roster.Semester](ctx, s, `SELECT `+semesterColumns+` FROM semesters WHERE id = ?`, id)
}

func (s *Store) ListSemesters(ctx context.Context) ([]roster.Semester, error) {
	return listAll[roster.Semester](ctx, s, `SELECT `+semesterColumns+` FROM semesters ORDER BY start_date, id`)
}

func (s *Store) UpdateSemester(ctx context.Context, sem roster.Semester) (*roster.Semester, error) {
	sem.UpdatedAt = now()
	sem.StartDate, sem.EndDate = sem.StartDate.UTC(), sem.EndDate.UTC()
	if err := roster.Validate(sem); err != nil {
		return nil, err
	}
	if err := s.update(ctx, "semester", sem.ID, `
		UPDATE semesters SET name = :name, year = :year, start_date = :start_date,
			end_date = :end_date, updated_at = :updated_at
		WHERE id = :id`, sem); err != nil {
		return nil, err
	}
	return s.GetSemester(ctx, sem.ID)
}

func (s *Store) DeleteSemester(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "semesters", "semester", id)
}

// =============================================================================
// COURSE CLASSES
// =============================================================================

func (s *Store) CreateCourseClass(ctx context.Context, cc roster.CourseClass) (roster.CourseClass, error) {
	cc.ID = newID(cc.ID)
	cc.CreatedAt, cc.UpdatedAt = now(), now()
	if cc.Type == "" {
		cc.Type = payment.ClassNormal
	}
	if err := roster.Validate(cc); err != nil {
		return roster.CourseClass{}, err
	}
	if err := s.insert(ctx, "create course class", `
		INSERT INTO course_classes (`+courseClassColumns+`)
		VALUES (:id, :code, :name, :course_id, :semester_id, :teacher_id, :class_type,
			:coefficient, :student_count, :created_at, :updated_at)`, cc); err != nil {
		return roster.CourseClass{}, err
	}
	return cc, nil
}

func (s *Store) GetCourseClass(ctx context.Context, id string) (*roster.CourseClass, error) {
	return getOne[roster.CourseClass](ctx, s, `SELECT `+courseClassColumns+` FROM course_classes WHERE id = ?`, id)
}

// ListCourseClasses returns all course classes, or those of one semester when
// semesterID is set.
func (s *Store) ListCourseClasses(ctx context.Context, semesterID string) ([]roster.CourseClass, error) {
	if semesterID != "" {
		return listAll[roster.CourseClass](ctx, s,
			`SELECT `+courseClassColumns+` FROM course_classes WHERE semester_id = ? ORDER BY code`, semesterID)
	}
	return listAll[roster.CourseClass](ctx, s, `SELECT `+courseClassColumns+` FROM course_classes ORDER BY code`)
}

func (s *Store) UpdateCourseClass(ctx context.Context, cc roster.CourseClass) (*roster.CourseClass, error) {
	cc.UpdatedAt = now()
	if err := roster.Validate(cc); err != nil {
		return nil, err
	}
	if err := s.update(ctx, "course class", cc.ID, `
		UPDATE course_classes SET code = :code, name = :name, course_id = :course_id,
			semester_id = :semester_id, teacher_id = :teacher_id, class_type = :class_type,
			coefficient = :coefficient, student_count = :student_count, updated_at = :updated_at
		WHERE id = :id`, cc); err != nil {
		return nil, err
	}
	return s.GetCourseClass(ctx, cc.ID)
}

func (s *Store) DeleteCourseClass(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "course_classes", "course class", id)
}

// =============================================================================
// SHARED CRUD PLUMBING
// =============================================================================

func getOne[T any](ctx context.Context, s *Store, query string, args ...any) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var record T
	if err := s.get(ctx, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	return &record, nil
}

func listAll[T any](ctx context.Context, s *Store, query string, args ...any) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]T, 0)
	if err := s.selectAll(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	return records, nil
}

func (s *Store) insert(ctx context.Context, op, query string, arg any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.NamedExecContext(ctx, query, arg); err != nil {
		return writeError(op, err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, kind, id, query string, arg any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return writeError("update "+kind, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &payment.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return deleteError("delete "+kind, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &payment.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
