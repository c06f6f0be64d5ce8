package dietplan

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// prepDayLabels are the fixed labels the aggregator iterates. They are not
// aligned to the actual calendar week: the plan's canonical meal list is
// counted once per label, so a plan with per-weekday variation is still
// multiplied from its canonical day. Known discrepancy, kept for
// compatibility with existing checklists.
var prepDayLabels = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var nonNumericRe = regexp.MustCompile(`[^0-9.]`)

const (
	defaultGramsPerFood = 100
	basePrepMinutes     = 15
	perFoodPrepMinutes  = 10
)

// BuildMealPrepPlan rolls the active plan's per-day foods into a week-level
// shopping and prep checklist. Without an active plan it returns an empty
// checklist spanning today through today+6 with the base time estimate.
func (e *Engine) BuildMealPrepPlan(ctx context.Context, userID string) (*MealPrepPlan, error) {
	now := e.now()
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekEnd := weekStart.AddDate(0, 0, 6)

	prep := &MealPrepPlan{
		WeekStart:            weekStart,
		WeekEnd:              weekEnd,
		Items:                []MealPrepItem{},
		EstimatedPrepMinutes: basePrepMinutes,
	}

	plan, _, err := e.activePlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active plan: %w", err)
	}
	if plan == nil {
		return prep, nil
	}

	type aggregate struct {
		displayName string
		totalGrams  float64
		mealTypes   map[MealType]bool
		days        map[string]bool
	}
	totals := make(map[string]*aggregate)

	for _, day := range prepDayLabels {
		for _, meal := range plan.Meals {
			for _, food := range meal.Foods {
				key := strings.ToLower(strings.TrimSpace(food.Name))
				agg, ok := totals[key]
				if !ok {
					agg = &aggregate{
						displayName: food.Name,
						mealTypes:   make(map[MealType]bool),
						days:        make(map[string]bool),
					}
					totals[key] = agg
				}
				agg.totalGrams += parseGrams(food.Amount)
				agg.mealTypes[meal.Type] = true
				agg.days[day] = true
			}
		}
	}

	for _, agg := range totals {
		item := MealPrepItem{
			FoodName:   agg.displayName,
			TotalGrams: math.Round(agg.totalGrams),
			PrepNotes:  prepNotes(agg.totalGrams),
		}
		for _, t := range AllMealTypes {
			if agg.mealTypes[t] {
				item.MealTypes = append(item.MealTypes, t)
			}
		}
		for _, day := range prepDayLabels {
			if agg.days[day] {
				item.Days = append(item.Days, day)
			}
		}
		prep.Items = append(prep.Items, item)
	}

	sort.SliceStable(prep.Items, func(i, j int) bool {
		return prep.Items[i].TotalGrams > prep.Items[j].TotalGrams
	})
	prep.EstimatedPrepMinutes = basePrepMinutes + perFoodPrepMinutes*len(prep.Items)

	return prep, nil
}

// parseGrams extracts the leading numeric portion of a display amount
// string, defaulting to 100 grams when nothing parses.
func parseGrams(amount string) float64 {
	cleaned := nonNumericRe.ReplaceAllString(amount, "")
	if cleaned == "" {
		return defaultGramsPerFood
	}
	grams, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return defaultGramsPerFood
	}
	return grams
}

func prepNotes(totalGrams float64) string {
	switch {
	case totalGrams > 500:
		return "batch cook, refrigerate 4-5 days"
	case totalGrams >= 200:
		return "prepare in one session, portion into containers"
	default:
		return "prepare fresh or 1-2 days in advance"
	}
}
