package dietplan

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"adaptive-diet-engine/internal/store"
)

const analysisWindowDays = 7

// typeStats accumulates one meal type's evidence across the analysis window.
type typeStats struct {
	occurrences int
	skips       int
	// calories holds the day's matching logged calorie total for each day
	// the type occurred.
	calories []float64
	// deltas holds logged-minute minus planned-start-minute for each day
	// the type occurred.
	deltas []float64
}

// RunWeeklyAnalysis scans the 7-day window ending today against the user's
// active plan and returns confidence-scored adaptation suggestions, sorted
// descending by confidence. The four rules per meal type are independent
// and non-exclusive; one type may produce several suggestions in a run.
// A last-run timestamp is persisted regardless of outcome. Without an
// active plan the result is empty.
func (e *Engine) RunWeeklyAnalysis(ctx context.Context, userID string) ([]AdaptationSuggestion, error) {
	now := e.now()

	if err := e.kv.SetItem(lastRunKey(userID), now.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to record analysis run: %w", err)
	}

	plan, _, err := e.activePlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active plan: %w", err)
	}
	if plan == nil {
		return []AdaptationSuggestion{}, nil
	}

	// The 7 day lookups are read-only and day-disjoint, so issue them
	// concurrently.
	days := make([][]store.LoggedMeal, analysisWindowDays)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < analysisWindowDays; i++ {
		i := i
		g.Go(func() error {
			day := now.AddDate(0, 0, -i)
			startMs, endMs := dayBoundsMs(day)
			logged, err := e.logs.ListByUserBetween(gctx, userID, startMs, endMs)
			if err != nil {
				return fmt.Errorf("failed to list logged meals for day -%d: %w", i, err)
			}
			days[i] = logged
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loc := now.Location()
	var suggestions []AdaptationSuggestion
	for _, meal := range plan.Meals {
		stats := accumulateTypeStats(meal, days, loc)
		suggestions = append(suggestions, analyzeMealType(meal, stats)...)
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	return suggestions, nil
}

func accumulateTypeStats(meal PlannedMeal, days [][]store.LoggedMeal, loc *time.Location) typeStats {
	plannedStart, plannedOk := meal.Window.StartMinute()

	var stats typeStats
	for _, dayMeals := range days {
		var dayCalories float64
		firstMatchMs := int64(-1)
		matched := false
		for _, logged := range dayMeals {
			if !matchesLoggedType(logged.MealType, meal.Type) {
				continue
			}
			if !matched {
				firstMatchMs = logged.ConsumedAt
			}
			matched = true
			dayCalories += logged.TotalCalories
		}

		if !matched {
			stats.skips++
			continue
		}
		stats.occurrences++
		stats.calories = append(stats.calories, dayCalories)
		if plannedOk {
			loggedMinute := minuteOfDay(firstMatchMs, loc)
			stats.deltas = append(stats.deltas, float64(loggedMinute-plannedStart))
		}
	}
	return stats
}

// matchesLoggedType matches a logged meal's free-text label against a plan
// meal type. Snack matches loosely on the "snack" substring; other types
// require the label to resolve to the same type.
func matchesLoggedType(label string, t MealType) bool {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if t == MealSnack {
		return strings.Contains(normalized, "snack")
	}
	inferred, ok := inferMealType(normalized)
	return ok && inferred == t
}

func analyzeMealType(meal PlannedMeal, stats typeStats) []AdaptationSuggestion {
	var out []AdaptationSuggestion

	if s, ok := timingShiftRule(meal, stats); ok {
		out = append(out, s)
	}
	if s, ok := portionAdjustmentRule(meal, stats); ok {
		out = append(out, s)
	}
	if s, ok := removeMealTypeRule(meal, stats); ok {
		out = append(out, s)
	}
	if s, ok := foodSwapRule(meal, stats); ok {
		out = append(out, s)
	}
	return out
}

// timingShiftRule fires when the meal was eaten on at least 3 days and the
// average shift from the planned start is 30 minutes or more.
func timingShiftRule(meal PlannedMeal, stats typeStats) (AdaptationSuggestion, bool) {
	if len(stats.deltas) < 3 {
		return AdaptationSuggestion{}, false
	}
	avg := mean(stats.deltas)
	if math.Abs(avg) < 30 {
		return AdaptationSuggestion{}, false
	}

	shift := int(math.Round(avg))
	direction := "later"
	if shift < 0 {
		direction = "earlier"
	}
	return AdaptationSuggestion{
		ID:    uuid.NewString(),
		Type:  SuggestionTimingShift,
		Title: fmt.Sprintf("Shift %s %s", meal.Type, direction),
		Description: fmt.Sprintf("You usually eat %s about %d minutes %s than planned. Move its window to match.",
			meal.Type, absInt(shift), direction),
		Confidence:    float64(len(stats.deltas)) / analysisWindowDays,
		EvidenceCount: len(stats.deltas),
		Payload:       SuggestionPayload{MealType: meal.Type, ShiftMinutes: shift},
	}, true
}

// portionAdjustmentRule fires when the meal was eaten on at least 3 days
// and the average logged calories deviate more than 15% from the target.
func portionAdjustmentRule(meal PlannedMeal, stats typeStats) (AdaptationSuggestion, bool) {
	if len(stats.calories) < 3 || meal.TargetCalories <= 0 {
		return AdaptationSuggestion{}, false
	}
	ratio := mean(stats.calories) / meal.TargetCalories
	if ratio <= 1.15 && ratio >= 0.85 {
		return AdaptationSuggestion{}, false
	}

	verb := "increase"
	if ratio < 1 {
		verb = "reduce"
	}
	return AdaptationSuggestion{
		ID:    uuid.NewString(),
		Type:  SuggestionPortionAdjustment,
		Title: fmt.Sprintf("Adjust %s portion", meal.Type),
		Description: fmt.Sprintf("Your logged %s averages %.0f%% of its target. Consider a portion %s.",
			meal.Type, ratio*100, verb),
		Confidence:    float64(len(stats.calories)) / analysisWindowDays,
		EvidenceCount: len(stats.calories),
		Payload:       SuggestionPayload{MealType: meal.Type, Ratio: ratio},
	}, true
}

// removeMealTypeRule fires when the type was skipped on more than 5 of the
// 7 days. Confidence is a two-level step, not a continuous score.
func removeMealTypeRule(meal PlannedMeal, stats typeStats) (AdaptationSuggestion, bool) {
	if stats.skips <= 5 {
		return AdaptationSuggestion{}, false
	}
	confidence := 0.7
	if stats.skips >= 6 {
		confidence = 0.8
	}
	return AdaptationSuggestion{
		ID:    uuid.NewString(),
		Type:  SuggestionRemoveMealType,
		Title: fmt.Sprintf("Make %s optional", meal.Type),
		Description: fmt.Sprintf("You skipped %s on %d of the last 7 days. Mark it optional?",
			meal.Type, stats.skips),
		Confidence:    confidence,
		EvidenceCount: stats.skips,
		Payload:       SuggestionPayload{MealType: meal.Type},
	}, true
}

// foodSwapRule fires on near-total neglect: the plan defines foods for the
// type but it was logged on at most 1 of the 7 days.
func foodSwapRule(meal PlannedMeal, stats typeStats) (AdaptationSuggestion, bool) {
	if len(meal.Foods) == 0 || stats.occurrences > 1 {
		return AdaptationSuggestion{}, false
	}
	evidence := analysisWindowDays - stats.occurrences
	if evidence < 1 {
		evidence = 1
	}
	return AdaptationSuggestion{
		ID:    uuid.NewString(),
		Type:  SuggestionFoodSwap,
		Title: fmt.Sprintf("Swap %s foods", meal.Type),
		Description: fmt.Sprintf("The planned %s foods rarely get logged. Try swapping them for foods you actually eat.",
			meal.Type),
		Confidence:    0.72,
		EvidenceCount: evidence,
		Payload:       SuggestionPayload{MealType: meal.Type, PlannedFoods: meal.Foods},
	}, true
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func lastRunKey(userID string) string {
	return "adaptive:lastrun:" + userID
}
