/*
source.go - What the engine consumes from the reference-data store

The engine never talks to a database directly. A Source hands out rate
snapshots and pre-joined assignments; store/sqlstore implements it against
SQL and payment/store implements it in memory for tests.

Get* methods return (nil, nil) when the id does not exist. Turning that into
a NotFoundError is the Resolver's job.
*/
package payment

import "context"

// Filter narrows which assignments a computation covers. All set fields
// apply together.
type Filter struct {
	SemesterID   string
	TeacherID    string
	DepartmentID string
	Year         string

	// School allows a filter with no other dimension. Only the school-wide
	// report sets it.
	School bool
}

func (f Filter) scoped() bool {
	return f.SemesterID != "" || f.TeacherID != "" || f.DepartmentID != "" || f.Year != ""
}

// Source is the reference-data store as seen by the engine.
type Source interface {
	// RateConfig returns the current rate snapshot, read atomically.
	RateConfig(ctx context.Context) (RateConfig, error)

	// ListAssignments returns every course class matching the filter, joined
	// with course, semester, teacher, degree and department. Order is not
	// significant; the Resolver sorts.
	ListAssignments(ctx context.Context, f Filter) ([]Assignment, error)

	GetSemester(ctx context.Context, id string) (*SemesterRef, error)
	GetTeacher(ctx context.Context, id string) (*TeacherRef, error)
	GetDepartment(ctx context.Context, id string) (*DepartmentRef, error)
	ListSemesters(ctx context.Context) ([]SemesterRef, error)
}
