/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the teaching payroll server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Resolve configuration (flags, environment, .env, defaults)
  2. Open the store (sqlite3 or postgres) and migrate the schema
  3. Save the configured rates if the store has none yet
  4. Load the seed scenario, if one is configured
  5. Configure HTTP router and start serving

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -driver    sqlite3 or postgres (default: sqlite3)
  -db        SQLite path or postgres connection string (default: payroll.db)
             Use ":memory:" for in-memory database
  -seed      Scenario to load on startup, replacing all data
  -env-file  dotenv file to read (default: .env, ignored when missing)

ENVIRONMENT:
  PAYROLL_* variables, see config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/payroll.db"
  ./server -db=":memory:" -seed=faculty
  ./server -driver=postgres -db="postgres://payroll@localhost/payroll?sslmode=disable"

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration keys
  - store/sqlstore/sqlstore.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/teaching-payroll/api"
	"github.com/warp/teaching-payroll/config"
	"github.com/warp/teaching-payroll/factory"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/store/sqlstore"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize store
	store, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := bootstrapRates(ctx, store, cfg.Rates); err != nil {
		log.Fatalf("Failed to initialize settings: %v", err)
	}

	handler := api.NewHandler(store)
	handler.DefaultRates = cfg.Rates

	if cfg.Seed != "" {
		if err := store.Reset(ctx); err != nil {
			log.Fatalf("Failed to reset database: %v", err)
		}
		summary, err := factory.LoadScenario(ctx, store, cfg.Seed)
		if err != nil {
			log.Fatalf("Failed to load scenario %s: %v", cfg.Seed, err)
		}
		if err := bootstrapRates(ctx, store, cfg.Rates); err != nil {
			log.Fatalf("Failed to initialize settings: %v", err)
		}
		log.Printf("Loaded scenario %s: %d teachers, %d course classes", cfg.Seed, summary.Teachers, summary.CourseClasses)
	}

	// Create router
	router := api.NewRouter(handler, cfg.CORSOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (%s)", cfg.Port, store.DriverName())
		log.Printf("API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// bootstrapRates saves the configured rates when the store has no settings.
// Existing settings are left alone; they are managed through the API.
func bootstrapRates(ctx context.Context, store *sqlstore.Store, rates payment.RateConfig) error {
	saved, err := store.EnsureRateConfig(ctx, rates)
	if saved {
		log.Printf("No rate settings found, saved configured defaults (base rate %s)", rates.BaseRate)
	}
	return err
}
