package payment

import (
	"context"
	"fmt"
)

// Reports assembles the read shapes exposed to callers. Every report is
// resolve -> calculate -> aggregate -> rollup; none computes anything on its
// own.
type Reports struct {
	Source   Source
	Resolver *Resolver
}

func NewReports(src Source) *Reports {
	return &Reports{Source: src, Resolver: NewResolver(src)}
}

// lineItems validates the scope, takes one rate snapshot and computes every
// line item in scope.
func (r *Reports) lineItems(ctx context.Context, f Filter) ([]LineItem, RateConfig, error) {
	assignments, err := r.Resolver.Resolve(ctx, f)
	if err != nil {
		return nil, RateConfig{}, err
	}
	rates, err := r.Source.RateConfig(ctx)
	if IsNotFound(err) {
		// NotFound is reserved for the ids in the request.
		return nil, RateConfig{}, fmt.Errorf("%w: no rate configuration has been saved", ErrInvalidSettings)
	}
	if err != nil {
		return nil, RateConfig{}, fmt.Errorf("read rate configuration: %w", err)
	}
	items, err := CalculateAll(assignments, rates)
	if err != nil {
		return nil, RateConfig{}, err
	}
	return items, rates, nil
}

// TeacherPayment returns one teacher's summary for one semester, with line
// items for drill-down. A teacher without classes that semester gets a zero
// summary.
func (r *Reports) TeacherPayment(ctx context.Context, teacherID, semesterID string) (TeacherSummary, error) {
	if teacherID == "" || semesterID == "" {
		return TeacherSummary{}, ErrUnscopedFilter
	}
	items, _, err := r.lineItems(ctx, Filter{TeacherID: teacherID, SemesterID: semesterID})
	if err != nil {
		return TeacherSummary{}, err
	}
	summaries, err := AggregateTeachers(items)
	if err != nil {
		return TeacherSummary{}, err
	}
	if len(summaries) > 0 {
		return summaries[0], nil
	}

	t, err := r.Source.GetTeacher(ctx, teacherID)
	if err != nil {
		return TeacherSummary{}, fmt.Errorf("get teacher: %w", err)
	}
	if t == nil {
		return TeacherSummary{}, &NotFoundError{Kind: "teacher", ID: teacherID}
	}
	return EmptySummary(*t), nil
}

// SemesterPayments returns every teacher paid in a semester, the grand total
// and the rate snapshot used.
func (r *Reports) SemesterPayments(ctx context.Context, semesterID string) (SemesterReport, error) {
	if semesterID == "" {
		return SemesterReport{}, ErrUnscopedFilter
	}
	items, rates, err := r.lineItems(ctx, Filter{SemesterID: semesterID})
	if err != nil {
		return SemesterReport{}, err
	}
	summaries, err := AggregateTeachers(items)
	if err != nil {
		return SemesterReport{}, err
	}

	sem, err := r.Source.GetSemester(ctx, semesterID)
	if err != nil {
		return SemesterReport{}, fmt.Errorf("get semester: %w", err)
	}
	if sem == nil {
		return SemesterReport{}, &NotFoundError{Kind: "semester", ID: semesterID}
	}

	report := SemesterReport{Semester: *sem, Rates: rates, Teachers: summaries}
	for _, s := range summaries {
		report.Total = report.Total.Add(s.totals())
	}
	return report, nil
}

// YearReport rolls up one academic year across all departments.
func (r *Reports) YearReport(ctx context.Context, year string) (YearRollup, error) {
	if year == "" {
		return YearRollup{}, ErrUnscopedFilter
	}
	items, _, err := r.lineItems(ctx, Filter{Year: year})
	if err != nil {
		return YearRollup{}, err
	}
	years, err := RollupYears(items)
	if err != nil {
		return YearRollup{}, err
	}
	if len(years) == 0 {
		return yearRollup(year, []DepartmentRollup{}), nil
	}
	return years[0], nil
}

// DepartmentReport rolls up one department, optionally limited to a year.
func (r *Reports) DepartmentReport(ctx context.Context, departmentID, year string) (DepartmentRollup, error) {
	if departmentID == "" {
		return DepartmentRollup{}, ErrUnscopedFilter
	}
	items, _, err := r.lineItems(ctx, Filter{DepartmentID: departmentID, Year: year})
	if err != nil {
		return DepartmentRollup{}, err
	}
	summaries, err := AggregateTeachers(items)
	if err != nil {
		return DepartmentRollup{}, err
	}
	if rollups := RollupDepartments(summaries); len(rollups) > 0 {
		return rollups[0], nil
	}

	d, err := r.Source.GetDepartment(ctx, departmentID)
	if err != nil {
		return DepartmentRollup{}, fmt.Errorf("get department: %w", err)
	}
	if d == nil {
		return DepartmentRollup{}, &NotFoundError{Kind: "department", ID: departmentID}
	}
	return DepartmentRollup{Department: *d, Teachers: []TeacherSummary{}}, nil
}

// SchoolReport rolls up every department, optionally limited to a year, and
// attaches the per-year breakdown of the same line items.
func (r *Reports) SchoolReport(ctx context.Context, year string) (SchoolRollup, error) {
	items, _, err := r.lineItems(ctx, Filter{Year: year, School: true})
	if err != nil {
		return SchoolRollup{}, err
	}
	summaries, err := AggregateTeachers(items)
	if err != nil {
		return SchoolRollup{}, err
	}
	years, err := RollupYears(items)
	if err != nil {
		return SchoolRollup{}, err
	}
	return RollupSchool(year, RollupDepartments(summaries), years), nil
}
