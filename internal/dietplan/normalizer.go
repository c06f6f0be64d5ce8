package dietplan

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// fallbackWindows are the hard-coded per-type eating windows used whenever
// a payload's time window is absent or fails to parse.
var fallbackWindows = map[MealType]TimeWindow{
	MealBreakfast: {Start: "07:00", End: "09:30"},
	MealLunch:     {Start: "12:00", End: "14:30"},
	MealDinner:    {Start: "18:00", End: "21:00"},
	MealSnack:     {Start: "15:00", End: "17:30"},
}

// rawMeal is the tolerant decode target for one meal candidate of a plan
// payload. Field pairs (mealType/type, name/foodName etc.) cover the shapes
// the generation and import pipelines have been observed to produce.
type rawMeal struct {
	MealType       string    `mapstructure:"mealType"`
	Type           string    `mapstructure:"type"`
	Name           string    `mapstructure:"name"`
	TargetCalories float64   `mapstructure:"targetCalories"`
	TargetProtein  float64   `mapstructure:"targetProtein"`
	TargetCarbs    float64   `mapstructure:"targetCarbs"`
	TargetFats     float64   `mapstructure:"targetFats"`
	Foods          []rawFood `mapstructure:"foods"`
	TimeWindow     string    `mapstructure:"timeWindow"`
}

type rawFood struct {
	Name          string  `mapstructure:"name"`
	FoodName      string  `mapstructure:"foodName"`
	Amount        string  `mapstructure:"amount"`
	DisplayAmount string  `mapstructure:"displayAmount"`
	Calories      float64 `mapstructure:"calories"`
}

// payloadRoot is the tolerant decode target for an object-shaped payload.
type payloadRoot struct {
	Name               string           `mapstructure:"name"`
	DailyCalorieTarget float64          `mapstructure:"dailyCalorieTarget"`
	DailyCalories      float64          `mapstructure:"dailyCalories"`
	Meals              []any            `mapstructure:"meals"`
	WeekDays           []payloadWeekDay `mapstructure:"weekDays"`
}

type payloadWeekDay struct {
	Day   string `mapstructure:"day"`
	Meals []any  `mapstructure:"meals"`
}

// decodeLoose decodes a free-form value with weak typing so string-encoded
// numbers and mixed shapes survive.
func decodeLoose(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// NormalizePlanData converts a stored plan's free-form payload into the
// canonical DietPlan. It never fails: malformed payloads degrade to a plan
// with no meals. The payload may place meal candidates under a top-level
// "meals" list, under "weekDays[].meals", or be itself a bare array; all
// sources are flattened in that order. Meal types are inferred from the
// mealType, type or name field; the first candidate to claim a type wins
// and later duplicates are discarded. Output meals are sorted ascending by
// window start.
func NormalizePlanData(planID, planName string, payload []byte) *DietPlan {
	plan := &DietPlan{ID: planID, Name: planName}

	var root any
	if err := json.Unmarshal(payload, &root); err != nil {
		return plan
	}

	var candidates []any
	switch v := root.(type) {
	case map[string]any:
		var decoded payloadRoot
		if err := decodeLoose(v, &decoded); err == nil {
			candidates = append(candidates, decoded.Meals...)
			for _, day := range decoded.WeekDays {
				candidates = append(candidates, day.Meals...)
			}
			if plan.Name == "" {
				plan.Name = decoded.Name
			}
			plan.DailyCalorieTarget = decoded.DailyCalorieTarget
			if plan.DailyCalorieTarget == 0 {
				plan.DailyCalorieTarget = decoded.DailyCalories
			}
		}
	case []any:
		candidates = v
	}

	seen := make(map[MealType]bool)
	for _, candidate := range candidates {
		var raw rawMeal
		if err := decodeLoose(candidate, &raw); err != nil {
			continue
		}

		mealType, ok := inferCandidateType(raw)
		if !ok || seen[mealType] {
			continue
		}
		seen[mealType] = true

		plan.Meals = append(plan.Meals, buildPlannedMeal(mealType, raw))
	}

	sort.SliceStable(plan.Meals, func(i, j int) bool {
		return windowSortKey(plan.Meals[i].Window) < windowSortKey(plan.Meals[j].Window)
	})
	for i := range plan.Meals {
		plan.Meals[i].Rank = i + 1
	}

	return plan
}

// inferCandidateType tries the mealType, type and name fields in order.
func inferCandidateType(raw rawMeal) (MealType, bool) {
	for _, label := range []string{raw.MealType, raw.Type, raw.Name} {
		if t, ok := inferMealType(label); ok {
			return t, true
		}
	}
	return "", false
}

func buildPlannedMeal(mealType MealType, raw rawMeal) PlannedMeal {
	window, ok := parseWindow(raw.TimeWindow)
	if !ok {
		window = fallbackWindows[mealType]
	}

	name := raw.Name
	if name == "" {
		name = string(mealType)
	}

	foods := make([]Food, 0, len(raw.Foods))
	for _, rf := range raw.Foods {
		foodName := rf.Name
		if foodName == "" {
			foodName = rf.FoodName
		}
		if foodName == "" {
			foodName = "Food"
		}
		amount := rf.Amount
		if amount == "" {
			amount = rf.DisplayAmount
		}
		if amount == "" {
			amount = "1 serving"
		}
		foods = append(foods, Food{Name: foodName, Amount: amount, Calories: rf.Calories})
	}

	return PlannedMeal{
		Type:           mealType,
		Name:           name,
		TargetCalories: raw.TargetCalories,
		TargetProtein:  raw.TargetProtein,
		TargetCarbs:    raw.TargetCarbs,
		TargetFats:     raw.TargetFats,
		Foods:          foods,
		Window:         window,
	}
}

// windowSortKey orders meals by start minute; unparsable windows sort last.
func windowSortKey(w TimeWindow) int {
	if m, ok := w.StartMinute(); ok {
		return m
	}
	return math.MaxInt
}
