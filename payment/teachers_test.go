package payment_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/teaching-payroll/payment"
)

func mustCalculate(t *testing.T, as []payment.Assignment) []payment.LineItem {
	t.Helper()
	items, err := payment.CalculateAll(as, testRates())
	require.NoError(t, err)
	return items
}

func TestAggregateTeachers_GroupsAndSorts(t *testing.T) {
	// GIVEN: line items arriving out of teacher-code order
	as := facultyAssignments()
	as[0], as[3] = as[3], as[0]
	items := mustCalculate(t, as)

	summaries, err := payment.AggregateTeachers(items)

	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, []string{"GV001", "GV002", "GV003"},
		[]string{summaries[0].Teacher.Code, summaries[1].Teacher.Code, summaries[2].Teacher.Code})

	carolSummary := summaries[2]
	assert.Len(t, carolSummary.LineItems, 2)
	assert.Equal(t, 30+45, carolSummary.TotalLessons)
	assert.True(t, carolSummary.TotalAmount.Equal(dec("8775000")), "got %s", carolSummary.TotalAmount)
}

func TestAggregateTeachers_TieOnCodeBrokenByID(t *testing.T) {
	twinB := teacher("t-b", "GV100", "1", deptCS)
	twinA := teacher("t-a", "GV100", "1", deptCS)
	items := mustCalculate(t, []payment.Assignment{
		assignment("x1", courseA, fall2023, twinB, payment.ClassNormal, "1"),
		assignment("x2", courseA, fall2023, twinA, payment.ClassNormal, "1"),
	})

	summaries, err := payment.AggregateTeachers(items)

	require.NoError(t, err)
	assert.Equal(t, "t-a", summaries[0].Teacher.ID)
	assert.Equal(t, "t-b", summaries[1].Teacher.ID)
}

func TestAggregateTeachers_TotalIsExactSumOfLineItems(t *testing.T) {
	// GIVEN: fractional amounts at two decimal places
	rates := testRates()
	rates.BaseRate = dec("333.33")
	rates.Precision = 2
	var as []payment.Assignment
	for i, coef := range []string{"1.1", "1.3", "1.7", "2.9"} {
		c := course("c", "C"+coef, 7+i, coef)
		as = append(as, assignment("a"+coef, c, fall2023, carol, payment.ClassSpecial, coef))
	}
	items, err := payment.CalculateAll(as, rates)
	require.NoError(t, err)

	summaries, err := payment.AggregateTeachers(items)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	sum := decimal.Zero
	for _, item := range summaries[0].LineItems {
		sum = sum.Add(item.Amount)
	}
	assert.True(t, sum.Equal(summaries[0].TotalAmount), "sum %s, total %s", sum, summaries[0].TotalAmount)
}

func TestAggregateTeachers_DegreeCoefficientSameOnEveryLineItem(t *testing.T) {
	items := mustCalculate(t, facultyAssignments())

	summaries, err := payment.AggregateTeachers(items)

	require.NoError(t, err)
	for _, s := range summaries {
		assert.True(t, s.DegreeCoefficient.Equal(s.Teacher.DegreeCoefficient))
		for _, item := range s.LineItems {
			assert.True(t, item.DegreeCoefficient.Equal(s.DegreeCoefficient),
				"teacher %s line item %s shows degree %s, summary %s",
				s.Teacher.Code, item.AssignmentID, item.DegreeCoefficient, s.DegreeCoefficient)
		}
	}
}

func TestAggregateTeachers_InconsistentDegree(t *testing.T) {
	// GIVEN: the same teacher seen with two different degree coefficients
	promoted := carol
	promoted.DegreeCoefficient = dec("1.8")
	items := mustCalculate(t, []payment.Assignment{
		assignment("cc-3", courseC, spring2024, carol, payment.ClassNormal, "1"),
		assignment("cc-4", courseA, fall2024, promoted, payment.ClassNormal, "1"),
	})

	_, err := payment.AggregateTeachers(items)

	var degErr *payment.InconsistentDegreeError
	require.ErrorAs(t, err, &degErr)
	assert.Equal(t, carol.ID, degErr.TeacherID)
	assert.True(t, payment.IsIntegrityError(err))
}

func TestAggregateTeachers_Empty(t *testing.T) {
	summaries, err := payment.AggregateTeachers(nil)

	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.NotNil(t, summaries)
}
