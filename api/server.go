/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/degrees, /api/departments, /api/teachers,
  /api/courses, /api/semesters, /api/course-classes   Roster management
  /api/settings/*                                     Rate configuration
  /api/payments/*                                     Payment computation and reports
  /api/scenarios/*                                    Demo scenarios
  /*                                                  Static files (frontend)

STATIC FILE SERVING:
  Serves the built frontend from web/dist/ when present and falls back to
  index.html for client-side routing.

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. allowedOrigins
// feeds the CORS middleware.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/degrees", func(r chi.Router) {
			r.Get("/", h.ListDegrees)
			r.Post("/", h.CreateDegree)
			r.Get("/{id}", h.GetDegree)
			r.Put("/{id}", h.UpdateDegree)
			r.Delete("/{id}", h.DeleteDegree)
		})

		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.ListDepartments)
			r.Post("/", h.CreateDepartment)
			r.Get("/{id}", h.GetDepartment)
			r.Put("/{id}", h.UpdateDepartment)
			r.Delete("/{id}", h.DeleteDepartment)
		})

		r.Route("/teachers", func(r chi.Router) {
			r.Get("/", h.ListTeachers)
			r.Post("/", h.CreateTeacher)
			r.Get("/{id}", h.GetTeacher)
			r.Put("/{id}", h.UpdateTeacher)
			r.Delete("/{id}", h.DeleteTeacher)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.ListCourses)
			r.Post("/", h.CreateCourse)
			r.Get("/{id}", h.GetCourse)
			r.Put("/{id}", h.UpdateCourse)
			r.Delete("/{id}", h.DeleteCourse)
		})

		r.Route("/semesters", func(r chi.Router) {
			r.Get("/", h.ListSemesters)
			r.Post("/", h.CreateSemester)
			r.Get("/{id}", h.GetSemester)
			r.Put("/{id}", h.UpdateSemester)
			r.Delete("/{id}", h.DeleteSemester)
		})

		r.Route("/course-classes", func(r chi.Router) {
			r.Get("/", h.ListCourseClasses)
			r.Post("/", h.CreateCourseClass)
			r.Get("/stats/semester/{semesterId}", h.GetStatsBySemester)
			r.Get("/stats/year/{year}", h.GetStatsByYear)
			r.Get("/{id}", h.GetCourseClass)
			r.Put("/{id}", h.UpdateCourseClass)
			r.Delete("/{id}", h.DeleteCourseClass)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
			r.Post("/update-coefficients", h.UpdateAllCoefficients)
			r.Get("/payment-rate", h.GetPaymentRate)
			r.Put("/payment-rate", h.UpdatePaymentRate)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/settings/payment-rate", h.GetPaymentRate)
			r.Put("/settings/payment-rate", h.UpdatePaymentRate)
			r.Get("/calculate/{teacherId}/{semesterId}", h.CalculateTeacherPayment)
			r.Get("/calculate-semester/{semesterId}", h.CalculateSemesterPayments)
			r.Get("/report/year/{year}", h.ReportYear)
			r.Get("/report/department/{departmentId}", h.ReportDepartment)
			r.Get("/report/school", h.ReportSchool)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	// Serve static files (frontend)
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, r.URL.Path)
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Teaching Payroll</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Teaching Payroll API</h1>
<p>The frontend is not built.</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/teachers">/api/teachers</a> - List teachers</li>
<li><a href="/api/semesters">/api/semesters</a> - List semesters</li>
<li><a href="/api/settings">/api/settings</a> - Rate configuration</li>
<li><a href="/api/payments/report/school">/api/payments/report/school</a> - School report</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List scenarios</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
