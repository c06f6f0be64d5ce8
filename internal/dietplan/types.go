// Package dietplan implements the adaptive diet plan engine: plan
// normalization, daily meal suggestions, adherence scoring, weekly adaptive
// analysis, adaptation application, meal-prep aggregation and rule-based
// plan generation.
package dietplan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MealType identifies one of the four plan slots. A DietPlan holds at most
// one meal per type.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// AllMealTypes lists the meal types in their conventional day order.
var AllMealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Food is one entry of a planned meal's food list.
type Food struct {
	Name     string  `json:"name"`
	Amount   string  `json:"amount"`
	Calories float64 `json:"calories"`
}

// TimeWindow is a meal's local-time eating window. Start and End are
// "HH:MM" strings; Start <= End is not guaranteed by source data.
type TimeWindow struct {
	Start string
	End   string
}

// MarshalJSON encodes the window in its wire form, "HH:MM-HH:MM".
func (w TimeWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Start + "-" + w.End)
}

// UnmarshalJSON accepts the "HH:MM-HH:MM" wire form.
func (w *TimeWindow) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if parsed, ok := parseWindow(s); ok {
		*w = parsed
	}
	return nil
}

// StartMinute returns the window start as minutes after local midnight.
// The second return value is false when the start does not parse.
func (w TimeWindow) StartMinute() (int, bool) {
	return parseClock(w.Start)
}

// parseClock parses an "HH:MM" string into minutes after midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// parseWindow parses a "HH:MM-HH:MM" string, tolerating surrounding
// whitespace. Both halves must be valid clock times.
func parseWindow(s string) (TimeWindow, bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return TimeWindow{}, false
	}
	start := strings.TrimSpace(parts[0])
	end := strings.TrimSpace(parts[1])
	if _, ok := parseClock(start); !ok {
		return TimeWindow{}, false
	}
	if _, ok := parseClock(end); !ok {
		return TimeWindow{}, false
	}
	return TimeWindow{Start: start, End: end}, true
}

// minutesToClock renders minutes after midnight as "HH:MM".
func minutesToClock(m int) string {
	if m < 0 {
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", (m/60)%24, m%60)
}

// PlannedMeal is one canonical meal slot of a DietPlan.
type PlannedMeal struct {
	Type           MealType   `json:"mealType"`
	Name           string     `json:"name"`
	TargetCalories float64    `json:"targetCalories"`
	TargetProtein  float64    `json:"targetProtein"`
	TargetCarbs    float64    `json:"targetCarbs"`
	TargetFats     float64    `json:"targetFats"`
	Foods          []Food     `json:"foods"`
	Window         TimeWindow `json:"timeWindow"`
	// Rank is a display ordinal, recomputed whenever the day's remaining
	// suggestions are produced.
	Rank int `json:"rank"`
}

// DietPlan is the canonical in-memory form of a stored plan payload.
// Meals holds at most one entry per meal type, sorted ascending by window
// start. It is derived on every read and never mutated in place.
type DietPlan struct {
	ID                 string
	Name               string
	DailyCalorieTarget float64
	Meals              []PlannedMeal
}

// Meal returns the plan's meal of the given type, or nil when absent.
func (p *DietPlan) Meal(t MealType) *PlannedMeal {
	for i := range p.Meals {
		if p.Meals[i].Type == t {
			return &p.Meals[i]
		}
	}
	return nil
}

// SuggestedMeal is the public suggestion shape: a planned meal plus its type.
type SuggestedMeal struct {
	MealType MealType    `json:"mealType"`
	Meal     PlannedMeal `json:"meal"`
}

// SuggestionType classifies an adaptation suggestion.
type SuggestionType string

const (
	SuggestionTimingShift       SuggestionType = "timing_shift"
	SuggestionPortionAdjustment SuggestionType = "portion_adjustment"
	SuggestionFoodSwap          SuggestionType = "food_swap"
	SuggestionRemoveMealType    SuggestionType = "remove_meal_type"
)

// SuggestionPayload carries the meal type plus rule-specific data.
type SuggestionPayload struct {
	MealType     MealType `json:"mealType"`
	ShiftMinutes int      `json:"shiftMinutes,omitempty"`
	Ratio        float64  `json:"ratio,omitempty"`
	PlannedFoods []Food   `json:"plannedFoods,omitempty"`
}

// AdaptationSuggestion is a confidence-scored plan adaptation derived from
// observed adherence. Created fresh on every analysis run; only feedback
// records are persisted.
type AdaptationSuggestion struct {
	ID            string            `json:"id"`
	Type          SuggestionType    `json:"type"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Confidence    float64           `json:"confidence"`
	EvidenceCount int               `json:"evidenceCount"`
	Payload       SuggestionPayload `json:"payload"`
}

// MealPrepItem aggregates one food across a week of planned meals.
type MealPrepItem struct {
	FoodName   string     `json:"foodName"`
	TotalGrams float64    `json:"totalGrams"`
	MealTypes  []MealType `json:"mealTypes"`
	Days       []string   `json:"days"`
	PrepNotes  string     `json:"prepNotes"`
}

// MealPrepPlan is the week-level shopping/prep checklist.
type MealPrepPlan struct {
	WeekStart            time.Time      `json:"weekStart"`
	WeekEnd              time.Time      `json:"weekEnd"`
	Items                []MealPrepItem `json:"items"`
	EstimatedPrepMinutes int            `json:"estimatedPrepMinutes"`
}

// FeedbackRecord is one append-only entry of a user's adaptation feedback log.
type FeedbackRecord struct {
	SuggestionID string    `json:"suggestionId"`
	Accepted     bool      `json:"accepted"`
	RespondedAt  time.Time `json:"respondedAt"`
}
