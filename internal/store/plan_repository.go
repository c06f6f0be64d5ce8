package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PlanRepository is a database-backed repository for diet plan records.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

const planColumns = `id, user_id, name, description, start_date, end_date, plan_data, is_active, is_ai_generated, created_at`

func scanPlan(row interface{ Scan(...any) error }) (*PlanRecord, error) {
	var rec PlanRecord
	var planData string
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &rec.Description,
		&rec.StartDate, &rec.EndDate, &planData, &rec.IsActive,
		&rec.IsAIGenerated, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.PlanData = []byte(planData)
	return &rec, nil
}

// FindActiveByUser returns the user's active plan, or nil when none exists.
func (r *PlanRepository) FindActiveByUser(ctx context.Context, userID string) (*PlanRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM diet_plans WHERE user_id = ? AND is_active = 1 ORDER BY created_at DESC LIMIT 1`,
		userID)
	rec, err := scanPlan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active plan for user %s: %w", userID, err)
	}
	return rec, nil
}

// GetByID returns a plan by its ID, or nil when it does not exist.
func (r *PlanRepository) GetByID(ctx context.Context, planID string) (*PlanRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM diet_plans WHERE id = ?`, planID)
	rec, err := scanPlan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan %s: %w", planID, err)
	}
	return rec, nil
}

// SaveGenerated deactivates all of the user's active plans and inserts the
// new record as the active one, in a single transaction. Partial application
// (new plan inserted but old plan still active) must never be observable.
func (r *PlanRepository) SaveGenerated(ctx context.Context, rec *PlanRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE diet_plans SET is_active = 0 WHERE user_id = ? AND is_active = 1`,
		rec.UserID); err != nil {
		return fmt.Errorf("failed to deactivate existing plans: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO diet_plans (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Name, rec.Description, rec.StartDate, rec.EndDate,
		string(rec.PlanData), rec.IsActive, rec.IsAIGenerated, createdAt); err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan save: %w", err)
	}
	return nil
}

// ReplacePlanData overwrites a plan's payload in a single transaction.
func (r *PlanRepository) ReplacePlanData(ctx context.Context, planID string, planData []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE diet_plans SET plan_data = ? WHERE id = ?`, string(planData), planID)
	if err != nil {
		return fmt.Errorf("failed to update plan data: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("plan %s not found", planID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan update: %w", err)
	}
	return nil
}

// DeactivateAllForUser clears the active flag on every plan the user owns.
func (r *PlanRepository) DeactivateAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE diet_plans SET is_active = 0 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to deactivate plans for user %s: %w", userID, err)
	}
	return nil
}
