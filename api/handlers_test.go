/*
handlers_test.go - HTTP tests for the API

Tests for:
- Payment endpoints over the embedded faculty scenario
- Settings changes flowing into recomputed amounts
- Roster CRUD status codes
- Error mapping (404, 400, 409, 422)
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/roster"
	"github.com/warp/teaching-payroll/store/sqlstore"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewRouter(NewHandler(store), []string{"*"})
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// facultyIDs are the generated ids of the faculty scenario records the tests use.
type facultyIDs struct {
	alice, bob   string
	cs           string
	fall2023     string
	fall2024     string
	specialClass string
}

func loadFaculty(t *testing.T, router http.Handler) facultyIDs {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "faculty"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ids facultyIDs
	for _, tc := range decode[[]roster.Teacher](t, do(t, router, http.MethodGet, "/api/teachers", nil)) {
		switch tc.Code {
		case "GV001":
			ids.alice = tc.ID
		case "GV002":
			ids.bob = tc.ID
		}
	}
	for _, d := range decode[[]roster.Department](t, do(t, router, http.MethodGet, "/api/departments", nil)) {
		if d.Code == "CS" {
			ids.cs = d.ID
		}
	}
	for _, s := range decode[[]roster.Semester](t, do(t, router, http.MethodGet, "/api/semesters", nil)) {
		switch s.Name {
		case "Fall 2023":
			ids.fall2023 = s.ID
		case "Fall 2024":
			ids.fall2024 = s.ID
		}
	}
	for _, cc := range decode[[]roster.CourseClass](t, do(t, router, http.MethodGet, "/api/course-classes", nil)) {
		if cc.Code == "CS101-F23-01" {
			ids.specialClass = cc.ID
		}
	}
	return ids
}

func teacherAmount(t *testing.T, router http.Handler, teacherID, semesterID string) decimal.Decimal {
	t.Helper()
	rec := do(t, router, http.MethodGet, "/api/payments/calculate/"+teacherID+"/"+semesterID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[payment.TeacherSummary](t, rec).TotalAmount
}

// =============================================================================
// PAYMENT ENDPOINTS
// =============================================================================

func TestCalculateTeacherPayment(t *testing.T) {
	// GIVEN: the faculty scenario
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	// WHEN: alice's fall 2023 payment is requested
	rec := do(t, router, http.MethodGet, "/api/payments/calculate/"+ids.alice+"/"+ids.fall2023, nil)

	// THEN: one special class, 50000 x 45 x 1.0 x 1.2 x 1.5 x 1.3
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[payment.TeacherSummary](t, rec)
	assert.Equal(t, "GV001", summary.Teacher.Code)
	assert.Equal(t, 45, summary.TotalLessons)
	assert.True(t, summary.DegreeCoefficient.Equal(dec("1.3")))
	require.Len(t, summary.LineItems, 1)
	assert.Equal(t, payment.ClassSpecial, summary.LineItems[0].ClassType)
	assert.True(t, summary.TotalAmount.Equal(dec("5265000")), "got %s", summary.TotalAmount)
}

func TestCalculateTeacherPayment_NoClasses(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	// bob teaches nothing in fall 2024
	rec := do(t, router, http.MethodGet, "/api/payments/calculate/"+ids.bob+"/"+ids.fall2024, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[payment.TeacherSummary](t, rec)
	assert.Empty(t, summary.LineItems)
	assert.True(t, summary.TotalAmount.IsZero())
}

func TestCalculateSemesterPayments(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	rec := do(t, router, http.MethodGet, "/api/payments/calculate-semester/"+ids.fall2023, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[payment.SemesterReport](t, rec)
	require.Len(t, report.Teachers, 2)
	assert.True(t, report.Total.TotalAmount.Equal(dec("8265000")), "got %s", report.Total.TotalAmount)
	assert.True(t, report.Rates.BaseRate.Equal(dec("50000")))
}

func TestReports(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	t.Run("year", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/payments/report/year/2023-2024", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		report := decode[payment.YearRollup](t, rec)
		assert.True(t, report.TotalAmount.Equal(dec("16882500")), "got %s", report.TotalAmount)
		assert.Len(t, report.Departments, 2)
	})

	t.Run("department for one year", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/payments/report/department/"+ids.cs+"?year=2023-2024", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		report := decode[payment.DepartmentRollup](t, rec)
		assert.Equal(t, 2, report.TotalTeachers)
		assert.True(t, report.TotalAmount.Equal(dec("8265000")), "got %s", report.TotalAmount)
	})

	t.Run("school", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/payments/report/school", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		report := decode[payment.SchoolRollup](t, rec)
		assert.True(t, report.TotalAmount.Equal(dec("22507500")), "got %s", report.TotalAmount)
		assert.Len(t, report.Years, 2)
	})

	t.Run("school for one year matches year report", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/payments/report/school?year=2024-2025", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		report := decode[payment.SchoolRollup](t, rec)
		assert.True(t, report.TotalAmount.Equal(dec("5625000")), "got %s", report.TotalAmount)
	})
}

func TestReports_Idempotent(t *testing.T) {
	router := setupTestRouter(t)
	loadFaculty(t, router)

	first := do(t, router, http.MethodGet, "/api/payments/report/school", nil)
	second := do(t, router, http.MethodGet, "/api/payments/report/school", nil)

	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestPaymentEndpoints_NotFound(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	paths := []string{
		"/api/payments/calculate-semester/missing",
		"/api/payments/calculate/missing/" + ids.fall2023,
		"/api/payments/calculate/" + ids.alice + "/missing",
		"/api/payments/report/year/1999-2000",
		"/api/payments/report/department/missing",
		"/api/payments/report/school?year=1999-2000",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, path, nil)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "not_found", decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestPaymentEndpoints_MissingRateIs422(t *testing.T) {
	// GIVEN: the international rate removed from settings
	store, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	router := NewRouter(NewHandler(store), []string{"*"})
	loadFaculty(t, router)

	ctx := context.Background()
	rates, err := store.RateConfig(ctx)
	require.NoError(t, err)
	delete(rates.ClassTypeCoefficients, payment.ClassInternational)
	require.NoError(t, store.SaveRateConfig(ctx, rates))

	// WHEN: the school report needs the international rate
	rec := do(t, router, http.MethodGet, "/api/payments/report/school", nil)

	// THEN: the whole report fails
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "integrity_error", decode[ErrorResponse](t, rec).Code)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestUpdateSettings_SpecialOnlyChangesSpecialClasses(t *testing.T) {
	// GIVEN: alice teaches a special class and bob a normal one in fall 2023
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	// WHEN: only the special coefficient changes
	rec := do(t, router, http.MethodPut, "/api/settings", map[string]any{
		"classCoefficients": map[string]string{"special": "2.0"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: alice's amount moves, bob's does not, and the rest of the
	// configuration is kept
	assert.True(t, teacherAmount(t, router, ids.alice, ids.fall2023).Equal(dec("7020000")))
	assert.True(t, teacherAmount(t, router, ids.bob, ids.fall2023).Equal(dec("3000000")))

	settings := decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil))
	assert.True(t, settings.BaseRate.Equal(dec("50000")))
	assert.True(t, settings.ClassTypeCoefficients[payment.ClassInternational].Equal(dec("2")))
}

func TestUpdateSettings_Mode(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	rec := do(t, router, http.MethodPut, "/api/settings", map[string]any{"mode": "type"})
	require.Equal(t, http.StatusOK, rec.Code)

	// class coefficient 1.2 is ignored: 50000 x 45 x 1.5 x 1.3
	assert.True(t, teacherAmount(t, router, ids.alice, ids.fall2023).Equal(dec("4387500")))
}

func TestUpdateSettings_Invalid(t *testing.T) {
	router := setupTestRouter(t)
	loadFaculty(t, router)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"zero base rate", map[string]any{"baseRate": "0"}, http.StatusUnprocessableEntity},
		{"unknown mode", map[string]any{"mode": "average"}, http.StatusUnprocessableEntity},
		{"negative coefficient", map[string]any{"classCoefficients": map[string]string{"normal": "-1"}}, http.StatusUnprocessableEntity},
		{"malformed body", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, "/api/settings", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	// nothing was saved
	settings := decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil))
	assert.True(t, settings.BaseRate.Equal(dec("50000")))
	assert.Equal(t, payment.ModeMultiply, settings.Mode)
}

func TestUpdateAllCoefficients_RefusedInMultiplyMode(t *testing.T) {
	// GIVEN: the default multiply mode, where class and class-type
	// coefficients are both applied
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	// WHEN: copying the class-type rates onto classes is requested
	rec := do(t, router, http.MethodPost, "/api/settings/update-coefficients", nil)

	// THEN: it is refused and no class changes, so the special rate is not
	// applied twice
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, "validation_failed", resp["code"])
	assert.Contains(t, resp["details"], "mode")

	cc := decode[roster.CourseClass](t, do(t, router, http.MethodGet, "/api/course-classes/"+ids.specialClass, nil))
	assert.True(t, cc.Coefficient.Equal(dec("1.2")))
	assert.True(t, teacherAmount(t, router, ids.alice, ids.fall2023).Equal(dec("5265000")))
}

func TestUpdateAllCoefficients_ClassMode(t *testing.T) {
	// GIVEN: class mode, where only the course-class coefficient counts
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)
	rec := do(t, router, http.MethodPut, "/api/settings", map[string]any{"mode": "class"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	// class coefficient 1.2 alone: 50000 x 45 x 1.2 x 1.3
	require.True(t, teacherAmount(t, router, ids.alice, ids.fall2023).Equal(dec("3510000")))

	// WHEN: the class-type rates are copied onto classes
	rec = do(t, router, http.MethodPost, "/api/settings/update-coefficients", nil)

	// THEN: every class takes its type's rate, applied once
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(6), decode[map[string]int64](t, rec)["updatedClasses"])

	cc := decode[roster.CourseClass](t, do(t, router, http.MethodGet, "/api/course-classes/"+ids.specialClass, nil))
	assert.True(t, cc.Coefficient.Equal(dec("1.5")))
	// 50000 x 45 x 1.5 x 1.3
	assert.True(t, teacherAmount(t, router, ids.alice, ids.fall2023).Equal(dec("4387500")))
	assert.True(t, teacherAmount(t, router, ids.bob, ids.fall2023).Equal(dec("3000000")))
}

func TestUpdateSettings_ApplyToClasses(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	rec := do(t, router, http.MethodPut, "/api/settings", map[string]any{
		"mode":              "class",
		"classCoefficients": map[string]string{"special": "1.8"},
		"applyToClasses":    true,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settings := decode[SettingsDTO](t, rec)
	require.NotNil(t, settings.UpdatedClasses)
	assert.Equal(t, int64(6), *settings.UpdatedClasses)
	// 50000 x 45 x 1.8 x 1.3
	assert.True(t, teacherAmount(t, router, ids.alice, ids.fall2023).Equal(dec("5265000")))
}

func TestUpdateSettings_FailedApplySavesNothing(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"coefficient below one", map[string]any{
			"mode": "class", "classCoefficients": map[string]string{"special": "0.8"}, "applyToClasses": true,
		}},
		{"multiply mode", map[string]any{
			"classCoefficients": map[string]string{"special": "0.8"}, "applyToClasses": true,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN: the faculty scenario with its saved settings
			router := setupTestRouter(t)
			ids := loadFaculty(t, router)

			// WHEN: a settings change asks for an apply that cannot happen
			rec := do(t, router, http.MethodPut, "/api/settings", tt.body)

			// THEN: neither the settings nor the classes change
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			settings := decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil))
			assert.True(t, settings.ClassTypeCoefficients[payment.ClassSpecial].Equal(dec("1.5")))
			assert.Equal(t, payment.ModeMultiply, settings.Mode)
			assert.True(t, teacherAmount(t, router, ids.alice, ids.fall2023).Equal(dec("5265000")))
		})
	}
}

func TestPaymentRate(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	rec := do(t, router, http.MethodPut, "/api/payments/settings/payment-rate", map[string]string{"baseRate": "60000"})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[PaymentRateDTO](t, do(t, router, http.MethodGet, "/api/settings/payment-rate", nil))
	assert.True(t, got.BaseRate.Equal(dec("60000")))
	assert.True(t, teacherAmount(t, router, ids.bob, ids.fall2023).Equal(dec("3600000")))
}

func TestSettings_BootstrapFromDefaults(t *testing.T) {
	// GIVEN: an empty store with no settings row
	router := setupTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// WHEN: a partial update arrives
	rec = do(t, router, http.MethodPut, "/api/settings", map[string]any{"baseRate": "40000"})

	// THEN: it is merged onto the defaults
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[SettingsDTO](t, rec)
	assert.True(t, settings.BaseRate.Equal(dec("40000")))
	assert.True(t, settings.ClassTypeCoefficients[payment.ClassSpecial].Equal(dec("1.5")))
}

// =============================================================================
// ROSTER CRUD
// =============================================================================

func TestDepartmentCRUD(t *testing.T) {
	router := setupTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/departments", map[string]string{"code": "PHY", "name": "Physics"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[roster.Department](t, rec)
	assert.NotEmpty(t, created.ID)

	rec = do(t, router, http.MethodPost, "/api/departments", map[string]string{"code": "PHY", "name": "Physics again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate", decode[ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodPut, "/api/departments/"+created.ID, map[string]string{"code": "PHY", "name": "Applied Physics"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Applied Physics", decode[roster.Department](t, rec).Name)

	rec = do(t, router, http.MethodDelete, "/api/departments/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/departments/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTeacher(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)
	degrees := decode[[]roster.Degree](t, do(t, router, http.MethodGet, "/api/degrees", nil))
	require.NotEmpty(t, degrees)

	t.Run("valid", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/teachers", TeacherRequest{
			Code: "GV100", Name: "Frank", DOB: "1992-05-17", DepartmentID: ids.cs, DegreeID: degrees[0].ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, 1992, decode[roster.Teacher](t, rec).DateOfBirth.Year())
	})

	t.Run("unknown department", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/teachers", TeacherRequest{
			Code: "GV101", Name: "Grace", DOB: "1992-05-17", DepartmentID: "missing", DegreeID: degrees[0].ID,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "invalid_reference", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/teachers", TeacherRequest{Code: "GV102", DOB: "17/05/1992"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "validation_failed", resp.Code)
		assert.Contains(t, resp.Details, "dob")
	})
}

func TestCreateCourseClass_ValidationFields(t *testing.T) {
	router := setupTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/course-classes", map[string]any{
		"code": "X", "name": "X", "course": "c", "semester": "s", "teacher": "t",
		"type": "evening", "coefficient": "0.5",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields, ok := decode[ErrorResponse](t, rec).Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "coefficient")
}

func TestDeleteReferencedTeacher(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	rec := do(t, router, http.MethodDelete, "/api/teachers/"+ids.alice, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "referenced", decode[ErrorResponse](t, rec).Code)
}

func TestCourseClassStats(t *testing.T) {
	router := setupTestRouter(t)
	ids := loadFaculty(t, router)

	rec := do(t, router, http.MethodGet, "/api/course-classes/stats/semester/"+ids.fall2023, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[[]roster.CourseStat](t, rec)
	require.Len(t, stats, 2)
	assert.Equal(t, "CS101", stats[0].CourseCode)
	assert.Equal(t, 35, stats[0].TotalStudents)

	rec = do(t, router, http.MethodGet, "/api/course-classes/stats/year/2023-2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]roster.CourseStat](t, rec), 4)

	rec = do(t, router, http.MethodGet, "/api/course-classes/stats/year/1999-2000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios(t *testing.T) {
	router := setupTestRouter(t)

	list := decode[[]ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios", nil))
	assert.Len(t, list, 3)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "single-class"})
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "single-class", current.ID)

	// loading again replaces rather than duplicates
	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "single-class"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]roster.Teacher](t, do(t, router, http.MethodGet, "/api/teachers", nil)), 1)

	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]roster.Teacher](t, do(t, router, http.MethodGet, "/api/teachers", nil)))
}

func TestReports_AfterResetUseDefaultRates(t *testing.T) {
	// GIVEN: the faculty scenario with a changed base rate
	router := setupTestRouter(t)
	loadFaculty(t, router)
	rec := do(t, router, http.MethodPut, "/api/settings/payment-rate", map[string]string{"baseRate": "60000"})
	require.Equal(t, http.StatusOK, rec.Code)

	// WHEN: the database is reset
	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: settings are back to the defaults and reports still answer
	settings := decode[SettingsDTO](t, do(t, router, http.MethodGet, "/api/settings", nil))
	assert.True(t, settings.BaseRate.Equal(dec("50000")))

	rec = do(t, router, http.MethodGet, "/api/payments/report/school", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[payment.SchoolRollup](t, rec).TotalAmount.IsZero())
}

func TestLoadScenario_WithoutSettingsUsesHandlerDefaults(t *testing.T) {
	// GIVEN: a handler configured with a 40000 base rate
	store, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	h := NewHandler(store)
	h.DefaultRates = payment.DefaultRateConfig()
	h.DefaultRates.BaseRate = dec("40000")
	router := NewRouter(h, []string{"*"})

	// WHEN: a scenario without a settings block is loaded
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "single-class"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: payments are computed with the handler's defaults
	rec = do(t, router, http.MethodGet, "/api/payments/report/school", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	// 40000 x 45 x 1.2 x 1.5 x 1.3
	assert.True(t, decode[payment.SchoolRollup](t, rec).TotalAmount.Equal(dec("4212000")))
}

func TestPaymentEndpoints_NoSettingsIs422(t *testing.T) {
	// GIVEN: a department but no settings row
	store, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	router := NewRouter(NewHandler(store), []string{"*"})
	dept, err := store.CreateDepartment(context.Background(), roster.Department{Code: "CS", Name: "Computer Science"})
	require.NoError(t, err)

	// WHEN: a report over that department is requested
	rec := do(t, router, http.MethodGet, "/api/payments/report/department/"+dept.ID, nil)

	// THEN: the missing configuration is an integrity problem, not a missing id
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "integrity_error", decode[ErrorResponse](t, rec).Code)
}
