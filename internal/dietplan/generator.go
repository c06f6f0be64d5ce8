package dietplan

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lucsky/cuid"

	"adaptive-diet-engine/internal/scheduler"
	"adaptive-diet-engine/internal/store"
)

// libraryFood is one entry of the fixed generation food library, tagged
// with diet compatibility.
type libraryFood struct {
	name         string
	servingGrams int
	vegan        bool
	vegetarian   bool
	glutenFree   bool
}

// foodLibrary is the fixed 10-item library meals are assembled from.
// A vegan food is always vegetarian-compatible.
var foodLibrary = []libraryFood{
	{name: "Oats", servingGrams: 60, vegan: true, vegetarian: true, glutenFree: true},
	{name: "Greek yogurt", servingGrams: 170, vegetarian: true, glutenFree: true},
	{name: "Eggs", servingGrams: 100, vegetarian: true, glutenFree: true},
	{name: "Chicken breast", servingGrams: 150, glutenFree: true},
	{name: "Brown rice", servingGrams: 125, vegan: true, vegetarian: true, glutenFree: true},
	{name: "Lentils", servingGrams: 120, vegan: true, vegetarian: true, glutenFree: true},
	{name: "Salmon fillet", servingGrams: 120, glutenFree: true},
	{name: "Quinoa", servingGrams: 90, vegan: true, vegetarian: true, glutenFree: true},
	{name: "Whole wheat bread", servingGrams: 80, vegan: true, vegetarian: true},
	{name: "Mixed vegetables", servingGrams: 200, vegan: true, vegetarian: true, glutenFree: true},
}

// workoutDayPatterns are fixed per activity tier and applied identically
// every week.
var workoutDayPatterns = map[int][]string{
	5: {"Monday", "Tuesday", "Wednesday", "Friday", "Saturday"},
	4: {"Monday", "Tuesday", "Thursday", "Saturday"},
	3: {"Monday", "Wednesday", "Friday"},
}

var weekdayLabels = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// mealRatios split a day's calorie budget (and macro targets) across the
// four meal slots.
var mealRatios = []struct {
	mealType MealType
	ratio    float64
}{
	{MealBreakfast, 0.25},
	{MealLunch, 0.35},
	{MealDinner, 0.30},
	{MealSnack, 0.10},
}

const (
	minDayCalories    = 1200
	workoutDayBonus   = 150
	restDayCut        = 100
	minMealMacroGrams = 5
	minAdjustedFatsG  = 20
	foodsPerMeal      = 3
)

// GeneratedDay is one weekday of a generated plan.
type GeneratedDay struct {
	Day           string        `json:"day"`
	CalorieBudget float64       `json:"calorieBudget"`
	WorkoutDay    bool          `json:"workoutDay"`
	Meals         []PlannedMeal `json:"meals"`
}

// GeneratedPlan is a freshly synthesized 7-day plan, not yet persisted.
type GeneratedPlan struct {
	UserID             string         `json:"userId"`
	Name               string         `json:"name"`
	DailyCalorieTarget float64        `json:"dailyCalorieTarget"`
	ProteinTarget      float64        `json:"proteinTarget"`
	CarbsTarget        float64        `json:"carbsTarget"`
	FatsTarget         float64        `json:"fatsTarget"`
	WeekDays           []GeneratedDay `json:"weekDays"`
}

// GeneratePlanForUser synthesizes a 7-day plan from the user's profile:
// goal-adjusted macro targets, a restriction-filtered food library, fixed
// workout-day patterns per activity level and fixed per-meal calorie ratios.
// A missing profile degrades to zero targets, which the calorie floor turns
// into a 1200-calorie baseline.
func (e *Engine) GeneratePlanForUser(ctx context.Context, userID string) (*GeneratedPlan, error) {
	profile, err := e.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	if profile == nil {
		profile = &store.UserProfile{UserID: userID}
	}

	protein, carbs, fats := adjustMacros(profile.Goal, profile.ProteinTarget, profile.CarbsTarget, profile.FatsTarget)
	foods := filterFoods(profile.DietaryRestrictions)
	workoutDays := workoutDaysFor(profile.ActivityLevel)

	plan := &GeneratedPlan{
		UserID:             userID,
		Name:               "Personalized weekly plan",
		DailyCalorieTarget: profile.CalorieTarget,
		ProteinTarget:      protein,
		CarbsTarget:        carbs,
		FatsTarget:         fats,
	}

	for _, day := range weekdayLabels {
		workout := workoutDays[day]
		budget := profile.CalorieTarget
		if workout {
			budget += workoutDayBonus
		} else {
			budget -= restDayCut
		}
		budget = math.Max(minDayCalories, budget)

		plan.WeekDays = append(plan.WeekDays, GeneratedDay{
			Day:           day,
			CalorieBudget: budget,
			WorkoutDay:    workout,
			Meals:         buildDayMeals(budget, protein, carbs, fats, foods),
		})
	}

	return plan, nil
}

// adjustMacros applies the goal adjustment: "lose" raises protein and cuts
// carbs, "gain" raises carbs, anything else passes through. Results are
// rounded to the nearest gram.
func adjustMacros(goal string, protein, carbs, fats float64) (float64, float64, float64) {
	switch strings.ToLower(strings.TrimSpace(goal)) {
	case "lose":
		protein = math.Round(protein * 1.15)
		carbs = math.Round(carbs * 0.85)
		fats = math.Round(math.Max(minAdjustedFatsG, fats))
	case "gain":
		carbs = math.Round(carbs * 1.2)
	}
	return protein, carbs, fats
}

// filterFoods keeps only library foods compatible with every requested
// restriction.
func filterFoods(restrictions []string) []libraryFood {
	var filtered []libraryFood
	for _, food := range foodLibrary {
		if foodSatisfies(food, restrictions) {
			filtered = append(filtered, food)
		}
	}
	return filtered
}

func foodSatisfies(food libraryFood, restrictions []string) bool {
	for _, restriction := range restrictions {
		switch strings.ToLower(strings.TrimSpace(restriction)) {
		case "vegan":
			if !food.vegan {
				return false
			}
		case "vegetarian":
			if !food.vegetarian && !food.vegan {
				return false
			}
		case "gluten_free", "gluten-free":
			if !food.glutenFree {
				return false
			}
		}
	}
	return true
}

func workoutDaysFor(activityLevel string) map[string]bool {
	count := 3
	switch strings.ToLower(strings.TrimSpace(activityLevel)) {
	case "very_active", "active":
		count = 5
	case "moderate":
		count = 4
	}

	days := make(map[string]bool)
	for _, day := range workoutDayPatterns[count] {
		days[day] = true
	}
	return days
}

// buildDayMeals assembles the four meal slots for one day. Each meal's
// foods are a 3-item contiguous slice of the filtered library offset by the
// meal's ordinal index (a sliding window, wrapping when the filtered
// library is short).
func buildDayMeals(budget, protein, carbs, fats float64, foods []libraryFood) []PlannedMeal {
	meals := make([]PlannedMeal, 0, len(mealRatios))
	for ordinal, slot := range mealRatios {
		mealCalories := math.Round(budget * slot.ratio)

		meal := PlannedMeal{
			Type:           slot.mealType,
			Name:           mealDisplayName(slot.mealType),
			TargetCalories: mealCalories,
			TargetProtein:  math.Max(minMealMacroGrams, math.Round(protein*slot.ratio)),
			TargetCarbs:    math.Max(minMealMacroGrams, math.Round(carbs*slot.ratio)),
			TargetFats:     math.Max(minMealMacroGrams, math.Round(fats*slot.ratio)),
			Window:         fallbackWindows[slot.mealType],
			Rank:           ordinal + 1,
		}

		if len(foods) > 0 {
			perFoodCalories := math.Round(mealCalories / foodsPerMeal)
			for j := 0; j < foodsPerMeal; j++ {
				food := foods[(ordinal+j)%len(foods)]
				meal.Foods = append(meal.Foods, Food{
					Name:     food.name,
					Amount:   fmt.Sprintf("%dg", food.servingGrams),
					Calories: perFoodCalories,
				})
			}
		}

		meals = append(meals, meal)
	}
	return meals
}

// mealDisplayName renders a meal type as a display name.
func mealDisplayName(t MealType) string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// planPayload is the persisted payload shape for generated plans. The
// top-level meals field mirrors only the first weekday; weekDays carries
// the full week.
type planPayload struct {
	Name               string         `json:"name"`
	DailyCalorieTarget float64        `json:"dailyCalorieTarget"`
	Meals              []PlannedMeal  `json:"meals"`
	WeekDays           []GeneratedDay `json:"weekDays"`
}

// SaveGeneratedPlan persists a generated plan as the user's single active
// plan: in one transaction all other active plans are deactivated and the
// new 7-day record inserted. Reminder scheduling is then requested through
// the external scheduler boundary.
func (e *Engine) SaveGeneratedPlan(ctx context.Context, userID string, plan *GeneratedPlan) (*store.PlanRecord, error) {
	if len(plan.WeekDays) == 0 {
		return nil, fmt.Errorf("generated plan has no weekdays")
	}

	payload := planPayload{
		Name:               plan.Name,
		DailyCalorieTarget: plan.DailyCalorieTarget,
		Meals:              plan.WeekDays[0].Meals,
		WeekDays:           plan.WeekDays,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan payload: %w", err)
	}

	now := e.now()
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	rec := &store.PlanRecord{
		ID:            cuid.New(),
		UserID:        userID,
		Name:          plan.Name,
		Description:   "Generated from profile goals and activity level",
		StartDate:     startDate,
		EndDate:       startDate.AddDate(0, 0, 6),
		PlanData:      data,
		IsActive:      true,
		IsAIGenerated: true,
		CreatedAt:     now,
	}

	if err := e.plans.SaveGenerated(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save generated plan: %w", err)
	}

	windows := make(map[string]string, len(plan.WeekDays[0].Meals))
	for _, meal := range plan.WeekDays[0].Meals {
		windows[string(meal.Type)] = meal.Window.Start
	}
	if err := e.reminders.ScheduleReminders(ctx, scheduler.ReminderOptions{
		UserID:      userID,
		PlanID:      rec.ID,
		MealWindows: windows,
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule reminders: %w", err)
	}

	return rec, nil
}
