package dietplan

import (
	"context"
	"fmt"
	"time"
)

// DailyAdherence returns the percentage of the user's calorie target
// covered by meals logged on the given calendar day, capped at 100.
// Zero logged meals yield 0; the target is floored at 1 so a missing or
// zero target never divides by zero.
func (e *Engine) DailyAdherence(ctx context.Context, userID string, date time.Time) (float64, error) {
	startMs, endMs := dayBoundsMs(date)
	logged, err := e.logs.ListByUserBetween(ctx, userID, startMs, endMs)
	if err != nil {
		return 0, fmt.Errorf("failed to list logged meals: %w", err)
	}

	var consumed float64
	for _, meal := range logged {
		consumed += meal.TotalCalories
	}

	var target float64
	profile, err := e.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user profile: %w", err)
	}
	if profile != nil {
		target = profile.CalorieTarget
	}
	if target < 1 {
		target = 1
	}

	adherence := consumed / target * 100
	if adherence > 100 {
		adherence = 100
	}
	return adherence, nil
}
