/*
Package sqlstore provides the SQL-backed reference-data store.

PURPOSE:
  Persists degrees, departments, teachers, courses, semesters, course classes
  and the rate settings, and serves them to the payment engine through
  PayrollSource.

DRIVERS:
  sqlite3   default; file path or ":memory:"
  postgres  any lib/pq connection string

  Queries are written with "?" placeholders and rebound per driver by sqlx.
  The schema uses only types both engines accept (TEXT, INTEGER, DATE,
  TIMESTAMP). Decimals are stored as TEXT to keep them exact.

CONSTRAINTS:
  Uniqueness and foreign keys live in the schema. Driver errors are mapped to
  ErrDuplicate, ErrInvalidReference and ErrReferenced so callers never see
  driver types.

NOT FOUND:
  Get* returns (nil, nil) for a missing id. Update* and Delete* return a
  *payment.NotFoundError.

USAGE:
  store, err := sqlstore.Open("sqlite3", "./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  reports := payment.NewReports(store.Payroll())

SEE ALSO:
  - payment/source.go: the interface PayrollSource implements
  - roster/types.go: record types
*/
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	// ErrDuplicate is returned when a unique code, name or
	// (course, semester, teacher) triple already exists.
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidReference is returned when a record points at a missing parent.
	ErrInvalidReference = errors.New("referenced record does not exist")

	// ErrReferenced is returned when deleting a record other records use.
	ErrReferenced = errors.New("record is still referenced")
)

// Store implements roster persistence and rate settings.
type Store struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// Open connects to the database and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DriverName reports which driver the store was opened with.
func (s *Store) DriverName() string {
	return s.db.DriverName()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS degrees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		short_name TEXT NOT NULL,
		coefficient TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS teachers (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		dob DATE NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		department_id TEXT NOT NULL REFERENCES departments(id),
		degree_id TEXT NOT NULL REFERENCES degrees(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_teachers_department
		ON teachers(department_id);

	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		credits INTEGER NOT NULL DEFAULT 0,
		coefficient TEXT NOT NULL,
		total_lessons INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS semesters (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		year TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_semesters_year
		ON semesters(year);

	CREATE TABLE IF NOT EXISTS course_classes (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		course_id TEXT NOT NULL REFERENCES courses(id),
		semester_id TEXT NOT NULL REFERENCES semesters(id),
		teacher_id TEXT NOT NULL REFERENCES teachers(id),
		class_type TEXT NOT NULL DEFAULT 'normal',
		coefficient TEXT NOT NULL,
		student_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE(course_id, semester_id, teacher_id)
	);

	-- Hot path: payroll for a semester
	CREATE INDEX IF NOT EXISTS idx_course_classes_semester
		ON course_classes(semester_id, teacher_id);
	CREATE INDEX IF NOT EXISTS idx_course_classes_teacher
		ON course_classes(teacher_id);

	-- Rate settings (single row, replaced as a whole)
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY,
		base_rate TEXT NOT NULL,
		class_coefficients_json TEXT NOT NULL,
		coefficient_mode TEXT NOT NULL,
		precision_places INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset deletes every record. Used by demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"course_classes", "semesters", "courses", "teachers", "departments", "degrees", "settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) get(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *Store) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

func isForeignKeyError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23503"
	}
	return false
}

// writeError maps constraint violations on insert/update.
func writeError(op string, err error) error {
	switch {
	case isUniqueConstraintError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	case isForeignKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrInvalidReference)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// deleteError maps constraint violations on delete.
func deleteError(op string, err error) error {
	if isForeignKeyError(err) {
		return fmt.Errorf("%s: %w", op, ErrReferenced)
	}
	return fmt.Errorf("%s: %w", op, err)
}
