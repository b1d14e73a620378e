package payment

import (
	"context"
	"fmt"
	"sort"
)

// Resolver validates a filter against the reference data and loads the
// matching assignments.
type Resolver struct {
	Source Source
}

func NewResolver(src Source) *Resolver {
	return &Resolver{Source: src}
}

// Resolve returns the assignments in scope, sorted by year, semester start,
// teacher code, course code and id.
//
// Every id in the filter must exist, otherwise a *NotFoundError is returned
// before anything is listed. An existing scope with no classes yields an
// empty slice.
func (r *Resolver) Resolve(ctx context.Context, f Filter) ([]Assignment, error) {
	if !f.scoped() && !f.School {
		return nil, ErrUnscopedFilter
	}
	if err := r.validate(ctx, f); err != nil {
		return nil, err
	}

	assignments, err := r.Source.ListAssignments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	sortAssignments(assignments)
	return assignments, nil
}

func (r *Resolver) validate(ctx context.Context, f Filter) error {
	if f.SemesterID != "" {
		s, err := r.Source.GetSemester(ctx, f.SemesterID)
		if err != nil {
			return fmt.Errorf("get semester: %w", err)
		}
		if s == nil {
			return &NotFoundError{Kind: "semester", ID: f.SemesterID}
		}
	}
	if f.TeacherID != "" {
		t, err := r.Source.GetTeacher(ctx, f.TeacherID)
		if err != nil {
			return fmt.Errorf("get teacher: %w", err)
		}
		if t == nil {
			return &NotFoundError{Kind: "teacher", ID: f.TeacherID}
		}
	}
	if f.DepartmentID != "" {
		d, err := r.Source.GetDepartment(ctx, f.DepartmentID)
		if err != nil {
			return fmt.Errorf("get department: %w", err)
		}
		if d == nil {
			return &NotFoundError{Kind: "department", ID: f.DepartmentID}
		}
	}
	if f.Year != "" {
		semesters, err := r.Source.ListSemesters(ctx)
		if err != nil {
			return fmt.Errorf("list semesters: %w", err)
		}
		found := false
		for _, s := range semesters {
			if s.Year == f.Year {
				found = true
				break
			}
		}
		if !found {
			return &NotFoundError{Kind: "year", ID: f.Year}
		}
	}
	return nil
}

func sortAssignments(as []Assignment) {
	sort.SliceStable(as, func(i, j int) bool {
		a, b := as[i], as[j]
		if a.Semester.Year != b.Semester.Year {
			return a.Semester.Year < b.Semester.Year
		}
		if !a.Semester.StartDate.Equal(b.Semester.StartDate) {
			return a.Semester.StartDate.Before(b.Semester.StartDate)
		}
		if a.Semester.ID != b.Semester.ID {
			return a.Semester.ID < b.Semester.ID
		}
		if a.Teacher.Code != b.Teacher.Code {
			return a.Teacher.Code < b.Teacher.Code
		}
		if a.Course.Code != b.Course.Code {
			return a.Course.Code < b.Course.Code
		}
		return a.ID < b.ID
	})
}
