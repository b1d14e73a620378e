package payment

import "sort"

// AggregateTeachers groups line items by teacher.
//
// Line items keep their input order inside each summary. Summaries are
// sorted by teacher code, ties broken by id. The degree coefficient is taken
// from the first line item of each teacher; any later item that disagrees is
// an *InconsistentDegreeError.
func AggregateTeachers(items []LineItem) ([]TeacherSummary, error) {
	index := make(map[string]int)
	summaries := make([]TeacherSummary, 0)

	for _, item := range items {
		i, ok := index[item.TeacherID]
		if !ok {
			i = len(summaries)
			index[item.TeacherID] = i
			summaries = append(summaries, TeacherSummary{
				Teacher:           item.Teacher,
				DegreeCoefficient: item.DegreeCoefficient,
				LineItems:         make([]LineItem, 0, 1),
			})
		}

		s := &summaries[i]
		if !s.DegreeCoefficient.Equal(item.DegreeCoefficient) {
			return nil, &InconsistentDegreeError{
				TeacherID: item.TeacherID,
				Want:      s.DegreeCoefficient,
				Got:       item.DegreeCoefficient,
			}
		}
		s.LineItems = append(s.LineItems, item)
		s.TotalLessons += item.Lessons
		s.TotalAmount = s.TotalAmount.Add(item.Amount)
	}

	sortSummaries(summaries)
	return summaries, nil
}

// EmptySummary is the summary of a teacher with nothing to pay.
func EmptySummary(t TeacherRef) TeacherSummary {
	return TeacherSummary{
		Teacher:           t,
		DegreeCoefficient: t.DegreeCoefficient,
		LineItems:         []LineItem{},
	}
}

func (s TeacherSummary) totals() Totals {
	return Totals{TotalTeachers: 1, TotalLessons: s.TotalLessons, TotalAmount: s.TotalAmount}
}

func sortSummaries(ss []TeacherSummary) {
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Teacher.Code != ss[j].Teacher.Code {
			return ss[i].Teacher.Code < ss[j].Teacher.Code
		}
		return ss[i].Teacher.ID < ss[j].Teacher.ID
	})
}
