package dietplan

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// optionalSuffix marks a meal as optional in its display name. Cosmetic
// only: the meal keeps participating in suggestion generation.
const optionalSuffix = " (optional)"

// ApplySuggestion mutates the user's active plan according to an accepted
// suggestion and appends an accepted-feedback record. When the user has no
// active plan the call is a silent no-op: a suggestion may outlive its plan
// if the plan was deactivated between analysis and apply.
func (e *Engine) ApplySuggestion(ctx context.Context, suggestion AdaptationSuggestion, userID string) error {
	plan, rec, err := e.activePlan(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load active plan: %w", err)
	}
	if rec == nil {
		return nil
	}

	meals := make([]PlannedMeal, len(plan.Meals))
	copy(meals, plan.Meals)
	var updated *PlannedMeal
	for i := range meals {
		if meals[i].Type == suggestion.Payload.MealType {
			meals[i] = transformMeal(meals[i], suggestion)
			updated = &meals[i]
		}
	}

	if updated != nil {
		payload, err := rebuildPayload(rec.PlanData, meals, *updated)
		if err != nil {
			return fmt.Errorf("failed to rebuild plan payload: %w", err)
		}
		if err := e.plans.ReplacePlanData(ctx, rec.ID, payload); err != nil {
			return fmt.Errorf("failed to write updated plan: %w", err)
		}
	}

	feedback := FeedbackRecord{
		SuggestionID: suggestion.ID,
		Accepted:     true,
		RespondedAt:  e.now(),
	}
	if err := e.appendFeedback(userID, feedback); err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}
	return nil
}

// transformMeal applies one suggestion to one meal.
func transformMeal(meal PlannedMeal, suggestion AdaptationSuggestion) PlannedMeal {
	switch suggestion.Type {
	case SuggestionTimingShift:
		start, ok := meal.Window.StartMinute()
		if !ok {
			start, _ = fallbackWindows[meal.Type].StartMinute()
		}
		newStart := start + suggestion.Payload.ShiftMinutes
		if newStart < 0 {
			newStart = 0
		}
		// The shifted window is always 150 minutes long, regardless of the
		// original duration.
		meal.Window = TimeWindow{
			Start: minutesToClock(newStart),
			End:   minutesToClock(newStart + 150),
		}
	case SuggestionPortionAdjustment:
		adjusted := meal.TargetCalories * suggestion.Payload.Ratio
		meal.TargetCalories = math.Max(50, adjusted)
	case SuggestionRemoveMealType:
		meal.Name += optionalSuffix
	case SuggestionFoodSwap:
		// Intentionally structural no-op: the swap payload is informational.
	}
	return meal
}

// rebuildPayload writes the mutated meal list back into the stored payload
// shape. Object payloads keep their other top-level fields and get every
// weekDays copy of the updated meal type replaced as well, keeping both
// representations consistent. Bare-array payloads are replaced outright.
func rebuildPayload(original []byte, meals []PlannedMeal, updated PlannedMeal) ([]byte, error) {
	canonicalMeals := make([]any, 0, len(meals))
	for _, meal := range meals {
		m, err := toJSONMap(meal)
		if err != nil {
			return nil, err
		}
		canonicalMeals = append(canonicalMeals, m)
	}
	updatedMap, err := toJSONMap(updated)
	if err != nil {
		return nil, err
	}

	var root any
	if err := json.Unmarshal(original, &root); err != nil {
		root = map[string]any{}
	}

	switch v := root.(type) {
	case map[string]any:
		v["meals"] = canonicalMeals
		if weekDays, ok := v["weekDays"].([]any); ok {
			for _, dayAny := range weekDays {
				day, ok := dayAny.(map[string]any)
				if !ok {
					continue
				}
				dayMeals, ok := day["meals"].([]any)
				if !ok {
					continue
				}
				for i, candidate := range dayMeals {
					var raw rawMeal
					if err := decodeLoose(candidate, &raw); err != nil {
						continue
					}
					if t, ok := inferCandidateType(raw); ok && t == updated.Type {
						dayMeals[i] = updatedMap
					}
				}
			}
		}
		return json.Marshal(v)
	default:
		return json.Marshal(canonicalMeals)
	}
}

func toJSONMap(meal PlannedMeal) (map[string]any, error) {
	data, err := json.Marshal(meal)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to round-trip meal: %w", err)
	}
	return m, nil
}
