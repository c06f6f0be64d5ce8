package store

import (
	"context"
	"database/sql"
	"fmt"
)

// MealLogRepository reads externally produced meal log records.
type MealLogRepository struct {
	db *sql.DB
}

// NewMealLogRepository creates a new MealLogRepository.
func NewMealLogRepository(d *sql.DB) *MealLogRepository {
	return &MealLogRepository{db: d}
}

// ListByUserBetween returns all meals the user logged in the inclusive
// [startMs, endMs] epoch-millisecond range, ordered by consumption time.
func (r *MealLogRepository) ListByUserBetween(ctx context.Context, userID string, startMs, endMs int64) ([]LoggedMeal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, meal_type, consumed_at, total_calories, total_protein, total_carbs, total_fats
		 FROM meal_logs
		 WHERE user_id = ? AND consumed_at >= ? AND consumed_at <= ?
		 ORDER BY consumed_at ASC`,
		userID, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal logs for user %s: %w", userID, err)
	}
	defer rows.Close()

	var meals []LoggedMeal
	for rows.Next() {
		var m LoggedMeal
		if err := rows.Scan(&m.ID, &m.UserID, &m.MealType, &m.ConsumedAt,
			&m.TotalCalories, &m.TotalProtein, &m.TotalCarbs, &m.TotalFats); err != nil {
			return nil, fmt.Errorf("failed to scan meal log row: %w", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal log rows: %w", err)
	}
	return meals, nil
}

// Insert stores a logged meal. Used by the seed command and tests; the
// engine itself only reads this collection.
func (r *MealLogRepository) Insert(ctx context.Context, m *LoggedMeal) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO meal_logs (user_id, meal_type, consumed_at, total_calories, total_protein, total_carbs, total_fats)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.MealType, m.ConsumedAt, m.TotalCalories, m.TotalProtein, m.TotalCarbs, m.TotalFats)
	if err != nil {
		return fmt.Errorf("failed to insert meal log: %w", err)
	}
	id, err := res.LastInsertId()
	if err == nil {
		m.ID = id
	}
	return nil
}
