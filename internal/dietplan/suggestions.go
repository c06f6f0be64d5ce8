package dietplan

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// SuggestedMealsForToday returns the plan meals not yet logged on the given
// day, ordered by time window and re-ranked from 1. Without an active plan
// it falls back to two generic suggestions scaled from the user's calorie
// target. This answers "what is left to eat today", not "what to eat now":
// no time-of-day filtering is applied beyond excluding logged types.
func (e *Engine) SuggestedMealsForToday(ctx context.Context, userID string, date time.Time) ([]SuggestedMeal, error) {
	plan, _, err := e.activePlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active plan: %w", err)
	}
	if plan == nil {
		return e.genericSuggestions(ctx, userID)
	}

	startMs, endMs := dayBoundsMs(date)
	logged, err := e.logs.ListByUserBetween(ctx, userID, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's logged meals: %w", err)
	}

	loggedTypes := make(map[MealType]bool)
	for _, meal := range logged {
		loggedTypes[normalizeLoggedMealType(meal.MealType)] = true
	}

	var remaining []PlannedMeal
	for _, meal := range plan.Meals {
		if !loggedTypes[meal.Type] {
			remaining = append(remaining, meal)
		}
	}

	sort.SliceStable(remaining, func(i, j int) bool {
		return windowSortKey(remaining[i].Window) < windowSortKey(remaining[j].Window)
	})

	suggestions := make([]SuggestedMeal, 0, len(remaining))
	for i, meal := range remaining {
		meal.Rank = i + 1
		suggestions = append(suggestions, SuggestedMeal{MealType: meal.Type, Meal: meal})
	}
	return suggestions, nil
}

// genericSuggestions fabricates a lunch and a dinner from the user's raw
// calorie target when no plan exists.
func (e *Engine) genericSuggestions(ctx context.Context, userID string) ([]SuggestedMeal, error) {
	var target float64
	profile, err := e.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	if profile != nil {
		target = profile.CalorieTarget
	}
	base := math.Max(1200, target)

	lunch := PlannedMeal{
		Type:           MealLunch,
		Name:           "Balanced lunch",
		TargetCalories: math.Round(base * 0.35),
		Foods: []Food{
			{Name: "Grilled chicken breast", Amount: "150g"},
			{Name: "Brown rice", Amount: "100g"},
			{Name: "Mixed salad", Amount: "1 bowl"},
		},
		Window: fallbackWindows[MealLunch],
		Rank:   1,
	}
	dinner := PlannedMeal{
		Type:           MealDinner,
		Name:           "Light dinner",
		TargetCalories: math.Round(base * 0.30),
		Foods: []Food{
			{Name: "Baked salmon", Amount: "120g"},
			{Name: "Steamed vegetables", Amount: "200g"},
			{Name: "Quinoa", Amount: "80g"},
		},
		Window: fallbackWindows[MealDinner],
		Rank:   2,
	}

	return []SuggestedMeal{
		{MealType: MealLunch, Meal: lunch},
		{MealType: MealDinner, Meal: dinner},
	}, nil
}
