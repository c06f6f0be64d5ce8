package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// ProfileRepository provides access to user nutrition profiles.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(d *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: d}
}

// GetByUserID returns the user's profile, or nil when none exists.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*UserProfile, error) {
	var p UserProfile
	var restrictions string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, calorie_target, protein_target, carbs_target, fats_target, goal, activity_level, dietary_restrictions
		 FROM user_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.CalorieTarget, &p.ProteinTarget, &p.CarbsTarget,
			&p.FatsTarget, &p.Goal, &p.ActivityLevel, &restrictions)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(restrictions), &p.DietaryRestrictions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dietary restrictions: %w", err)
	}
	return &p, nil
}

// Upsert inserts or replaces the user's profile.
func (r *ProfileRepository) Upsert(ctx context.Context, p *UserProfile) error {
	restrictions := p.DietaryRestrictions
	if restrictions == nil {
		restrictions = []string{}
	}
	data, err := json.Marshal(restrictions)
	if err != nil {
		return fmt.Errorf("failed to marshal dietary restrictions: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, calorie_target, protein_target, carbs_target, fats_target, goal, activity_level, dietary_restrictions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   calorie_target = excluded.calorie_target,
		   protein_target = excluded.protein_target,
		   carbs_target = excluded.carbs_target,
		   fats_target = excluded.fats_target,
		   goal = excluded.goal,
		   activity_level = excluded.activity_level,
		   dietary_restrictions = excluded.dietary_restrictions`,
		p.UserID, p.CalorieTarget, p.ProteinTarget, p.CarbsTarget, p.FatsTarget,
		p.Goal, p.ActivityLevel, string(data))
	if err != nil {
		return fmt.Errorf("failed to upsert profile for user %s: %w", p.UserID, err)
	}
	return nil
}
