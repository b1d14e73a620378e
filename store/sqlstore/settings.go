package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/warp/teaching-payroll/payment"
	"github.com/warp/teaching-payroll/roster"
)

const settingsID = 1

type settingsRow struct {
	BaseRate          decimal.Decimal `db:"base_rate"`
	ClassCoefficients string          `db:"class_coefficients_json"`
	Mode              string          `db:"coefficient_mode"`
	Precision         int32           `db:"precision_places"`
}

// RateConfig returns the stored rate snapshot. A store that has never been
// configured returns a *payment.NotFoundError of kind "settings".
func (s *Store) RateConfig(ctx context.Context) (payment.RateConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rateConfig(ctx)
}

func (s *Store) rateConfig(ctx context.Context) (payment.RateConfig, error) {
	var row settingsRow
	err := s.get(ctx, &row, `
		SELECT base_rate, class_coefficients_json, coefficient_mode, precision_places
		FROM settings WHERE id = ?`, settingsID)
	if errors.Is(err, sql.ErrNoRows) {
		return payment.RateConfig{}, &payment.NotFoundError{Kind: "settings", ID: "current"}
	}
	if err != nil {
		return payment.RateConfig{}, fmt.Errorf("failed to read settings: %w", err)
	}

	coefs := make(map[payment.ClassType]decimal.Decimal)
	if err := json.Unmarshal([]byte(row.ClassCoefficients), &coefs); err != nil {
		return payment.RateConfig{}, fmt.Errorf("failed to decode class coefficients: %w", err)
	}
	return payment.RateConfig{
		BaseRate:              row.BaseRate,
		ClassTypeCoefficients: coefs,
		Mode:                  payment.CoefficientMode(row.Mode),
		Precision:             row.Precision,
	}, nil
}

// SaveRateConfig validates and replaces the whole snapshot in one statement,
// so readers see either the old or the new configuration.
func (s *Store) SaveRateConfig(ctx context.Context, rates payment.RateConfig) error {
	if err := rates.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return saveRateConfig(ctx, s.db, rates)
}

// EnsureRateConfig saves rates only when no configuration exists yet and
// reports whether it did.
func (s *Store) EnsureRateConfig(ctx context.Context, rates payment.RateConfig) (bool, error) {
	if err := rates.Validate(); err != nil {
		return false, err
	}
	coefs, err := json.Marshal(rates.ClassTypeCoefficients)
	if err != nil {
		return false, fmt.Errorf("failed to encode class coefficients: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO settings (id, base_rate, class_coefficients_json, coefficient_mode, precision_places, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		settingsID, rates.BaseRate.String(), string(coefs), string(rates.Mode), rates.Precision, now())
	if err != nil {
		return false, fmt.Errorf("failed to save settings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SaveRateConfigAndApply saves rates and copies the class-type coefficients
// onto course classes in one transaction. Nothing is written unless both
// steps succeed.
func (s *Store) SaveRateConfigAndApply(ctx context.Context, rates payment.RateConfig) (int64, error) {
	if err := rates.Validate(); err != nil {
		return 0, err
	}
	if err := checkApplicable(rates); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveRateConfig(ctx, tx, rates); err != nil {
		return 0, err
	}
	n, err := applyClassTypeCoefficients(ctx, tx, rates)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

// ApplyClassTypeCoefficients copies each configured class-type coefficient
// onto every course class of that type and returns how many rows changed.
// Only allowed in class mode, where the course-class coefficient is the sole
// class factor; in the other modes the copied value would be ignored or
// applied twice.
func (s *Store) ApplyClassTypeCoefficients(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rates, err := s.rateConfig(ctx)
	if err != nil {
		return 0, err
	}
	if err := checkApplicable(rates); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := applyClassTypeCoefficients(ctx, tx, rates)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

// checkApplicable refuses rates that cannot be copied onto course classes:
// any mode other than class, or a coefficient below the course-class minimum
// of 1.
func checkApplicable(rates payment.RateConfig) error {
	if rates.Mode != payment.ModeClassOverride {
		return &roster.ValidationError{Fields: map[string]string{
			"mode": fmt.Sprintf("class coefficients can only be applied to course classes in %q mode, current mode is %q",
				payment.ModeClassOverride, rates.Mode),
		}}
	}
	for _, ct := range sortedClassTypes(rates) {
		if v := rates.ClassTypeCoefficients[ct]; v.LessThan(decimal.NewFromInt(1)) {
			return &roster.ValidationError{Fields: map[string]string{
				"classCoefficients": fmt.Sprintf("%s coefficient %s is below 1 and cannot be applied to course classes", ct, v),
			}}
		}
	}
	return nil
}

func saveRateConfig(ctx context.Context, db sqlx.ExtContext, rates payment.RateConfig) error {
	coefs, err := json.Marshal(rates.ClassTypeCoefficients)
	if err != nil {
		return fmt.Errorf("failed to encode class coefficients: %w", err)
	}
	_, err = db.ExecContext(ctx, db.Rebind(`
		INSERT INTO settings (id, base_rate, class_coefficients_json, coefficient_mode, precision_places, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			base_rate = excluded.base_rate,
			class_coefficients_json = excluded.class_coefficients_json,
			coefficient_mode = excluded.coefficient_mode,
			precision_places = excluded.precision_places,
			updated_at = excluded.updated_at`),
		settingsID, rates.BaseRate.String(), string(coefs), string(rates.Mode), rates.Precision, now())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func applyClassTypeCoefficients(ctx context.Context, tx *sqlx.Tx, rates payment.RateConfig) (int64, error) {
	var updated int64
	stamp := now()
	for _, ct := range sortedClassTypes(rates) {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE course_classes SET coefficient = ?, updated_at = ? WHERE class_type = ?`),
			rates.ClassTypeCoefficients[ct].String(), stamp, string(ct))
		if err != nil {
			return 0, fmt.Errorf("failed to apply %s coefficient: %w", ct, err)
		}
		n, _ := res.RowsAffected()
		updated += n
	}
	return updated, nil
}

func sortedClassTypes(rates payment.RateConfig) []payment.ClassType {
	types := make([]payment.ClassType, 0, len(rates.ClassTypeCoefficients))
	for ct := range rates.ClassTypeCoefficients {
		types = append(types, ct)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
