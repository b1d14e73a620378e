/*
rollup.go - Department, year and school rollups

FOLD ORDER:
  assignment -> line item -> teacher -> department -> year | school

  Each level is built only from the level directly below it. A node's Totals
  is the sum of its children's Totals, so two reports over the same line
  items always agree (a teacher's total in a department report equals the sum
  of that teacher's line items in the year report).

EMPTY GROUPS:
  A department with no teaching in scope never gets a node. Listing the full
  department roster is a reference-data concern.
*/
package payment

import "sort"

// RollupDepartments groups teacher summaries by the teacher's department.
// Teachers keep their input order; departments are sorted by name, then id.
func RollupDepartments(summaries []TeacherSummary) []DepartmentRollup {
	index := make(map[string]int)
	rollups := make([]DepartmentRollup, 0)

	for _, s := range summaries {
		key := s.Teacher.Department.ID
		i, ok := index[key]
		if !ok {
			i = len(rollups)
			index[key] = i
			rollups = append(rollups, DepartmentRollup{
				Department: s.Teacher.Department,
				Teachers:   make([]TeacherSummary, 0, 1),
			})
		}
		d := &rollups[i]
		d.Teachers = append(d.Teachers, s)
		d.Totals = d.Totals.Add(s.totals())
	}

	sort.SliceStable(rollups, func(i, j int) bool {
		a, b := rollups[i].Department, rollups[j].Department
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return rollups
}

// RollupYears partitions line items by academic year and folds each
// partition through the teacher aggregator and the department rollup.
// Years are sorted ascending.
func RollupYears(items []LineItem) ([]YearRollup, error) {
	partitions := make(map[string][]LineItem)
	var years []string
	for _, item := range items {
		if _, ok := partitions[item.Year]; !ok {
			years = append(years, item.Year)
		}
		partitions[item.Year] = append(partitions[item.Year], item)
	}
	sort.Strings(years)

	rollups := make([]YearRollup, 0, len(years))
	for _, year := range years {
		summaries, err := AggregateTeachers(partitions[year])
		if err != nil {
			return nil, err
		}
		rollups = append(rollups, yearRollup(year, RollupDepartments(summaries)))
	}
	return rollups, nil
}

func yearRollup(year string, departments []DepartmentRollup) YearRollup {
	y := YearRollup{Year: year, Departments: departments}
	for _, d := range departments {
		y.Totals = y.Totals.Add(d.Totals)
	}
	return y
}

// RollupSchool builds the root node over department rollups. years is the
// per-year breakdown of the same line items and is attached as-is.
func RollupSchool(year string, departments []DepartmentRollup, years []YearRollup) SchoolRollup {
	s := SchoolRollup{Year: year, Departments: departments, Years: years}
	for _, d := range departments {
		s.Totals = s.Totals.Add(d.Totals)
	}
	return s
}
