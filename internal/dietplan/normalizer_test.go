package dietplan

import (
	"testing"
)

func TestNormalizePlanDataTopLevelMeals(t *testing.T) {
	payload := `{
		"name": "Cutting week",
		"dailyCalorieTarget": 1900,
		"meals": [
			{"mealType": "dinner", "name": "Fish dinner", "targetCalories": 600, "timeWindow": "18:30-20:00"},
			{"mealType": "breakfast", "name": "Oat bowl", "targetCalories": 450, "timeWindow": "07:30-09:00",
			 "foods": [{"name": "Oats", "amount": "60g", "calories": 230}]}
		]
	}`

	plan := NormalizePlanData("p1", "", []byte(payload))

	if plan.Name != "Cutting week" {
		t.Errorf("Expected plan name 'Cutting week', got '%s'", plan.Name)
	}
	if plan.DailyCalorieTarget != 1900 {
		t.Errorf("Expected daily target 1900, got %v", plan.DailyCalorieTarget)
	}
	if len(plan.Meals) != 2 {
		t.Fatalf("Expected 2 meals, got %d", len(plan.Meals))
	}
	// Sorted by window start: breakfast before dinner.
	if plan.Meals[0].Type != MealBreakfast || plan.Meals[1].Type != MealDinner {
		t.Errorf("Expected breakfast then dinner, got %s then %s", plan.Meals[0].Type, plan.Meals[1].Type)
	}
	if plan.Meals[0].Rank != 1 || plan.Meals[1].Rank != 2 {
		t.Errorf("Expected ranks 1 and 2, got %d and %d", plan.Meals[0].Rank, plan.Meals[1].Rank)
	}
	if plan.Meals[0].Foods[0].Name != "Oats" {
		t.Errorf("Expected food 'Oats', got '%s'", plan.Meals[0].Foods[0].Name)
	}
}

func TestNormalizePlanDataShapes(t *testing.T) {
	t.Run("WeekDaysShape", func(t *testing.T) {
		payload := `{"weekDays": [
			{"day": "Monday", "meals": [{"type": "lunch", "targetCalories": 700}]},
			{"day": "Tuesday", "meals": [{"type": "dinner", "targetCalories": 650}]}
		]}`
		plan := NormalizePlanData("p1", "", []byte(payload))
		if len(plan.Meals) != 2 {
			t.Fatalf("Expected 2 meals from weekDays, got %d", len(plan.Meals))
		}
	})

	t.Run("BareArrayShape", func(t *testing.T) {
		payload := `[{"mealType": "snack", "targetCalories": 200}]`
		plan := NormalizePlanData("p1", "", []byte(payload))
		if len(plan.Meals) != 1 || plan.Meals[0].Type != MealSnack {
			t.Fatalf("Expected one snack from bare array, got %+v", plan.Meals)
		}
	})

	t.Run("TopLevelMealsBeforeWeekDays", func(t *testing.T) {
		payload := `{
			"meals": [{"mealType": "lunch", "name": "Top lunch", "targetCalories": 700}],
			"weekDays": [{"day": "Monday", "meals": [{"mealType": "lunch", "name": "Day lunch", "targetCalories": 500}]}]
		}`
		plan := NormalizePlanData("p1", "", []byte(payload))
		if len(plan.Meals) != 1 {
			t.Fatalf("Expected 1 meal after de-duplication, got %d", len(plan.Meals))
		}
		if plan.Meals[0].Name != "Top lunch" {
			t.Errorf("Expected first occurrence 'Top lunch' to win, got '%s'", plan.Meals[0].Name)
		}
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		plan := NormalizePlanData("p1", "", []byte("not json at all"))
		if len(plan.Meals) != 0 {
			t.Errorf("Expected no meals for malformed payload, got %d", len(plan.Meals))
		}
	})
}

func TestNormalizePlanDataTypeInference(t *testing.T) {
	cases := []struct {
		name     string
		payload  string
		expected MealType
	}{
		{"ArabicLunch", `{"meals": [{"name": "غداء", "targetCalories": 600}]}`, MealLunch},
		{"SpanishBreakfast", `{"meals": [{"name": "Desayuno ligero", "targetCalories": 300}]}`, MealBreakfast},
		{"SubstringBreak", `{"meals": [{"name": "Power Break Bowl"}]}`, MealBreakfast},
		{"Supper", `{"meals": [{"type": "supper"}]}`, MealDinner},
		{"MealTypeFieldWins", `{"meals": [{"mealType": "snack", "name": "dinner leftovers"}]}`, MealSnack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := NormalizePlanData("p1", "", []byte(tc.payload))
			if len(plan.Meals) != 1 {
				t.Fatalf("Expected 1 meal, got %d", len(plan.Meals))
			}
			if plan.Meals[0].Type != tc.expected {
				t.Errorf("Expected type %s, got %s", tc.expected, plan.Meals[0].Type)
			}
		})
	}

	t.Run("UnrecognizedDiscarded", func(t *testing.T) {
		plan := NormalizePlanData("p1", "", []byte(`{"meals": [{"name": "mystery bowl"}]}`))
		if len(plan.Meals) != 0 {
			t.Errorf("Expected unmatched candidate to be discarded, got %d meals", len(plan.Meals))
		}
	})
}

func TestNormalizePlanDataWindowFallbacks(t *testing.T) {
	payload := `{"meals": [
		{"mealType": "breakfast", "timeWindow": "garbage"},
		{"mealType": "lunch"},
		{"mealType": "dinner", "timeWindow": " 19:00 - 21:30 "},
		{"mealType": "snack", "timeWindow": "25:99-26:00"}
	]}`
	plan := NormalizePlanData("p1", "", []byte(payload))

	if got := plan.Meal(MealBreakfast).Window; got != (TimeWindow{Start: "07:00", End: "09:30"}) {
		t.Errorf("Expected breakfast fallback window, got %+v", got)
	}
	if got := plan.Meal(MealLunch).Window; got != (TimeWindow{Start: "12:00", End: "14:30"}) {
		t.Errorf("Expected lunch fallback window, got %+v", got)
	}
	if got := plan.Meal(MealDinner).Window; got != (TimeWindow{Start: "19:00", End: "21:30"}) {
		t.Errorf("Expected whitespace-stripped dinner window, got %+v", got)
	}
	if got := plan.Meal(MealSnack).Window; got != (TimeWindow{Start: "15:00", End: "17:30"}) {
		t.Errorf("Expected snack fallback for out-of-range clock, got %+v", got)
	}
}

func TestNormalizePlanDataDefaults(t *testing.T) {
	payload := `{"meals": [{"mealType": "lunch", "foods": [{}]}]}`
	plan := NormalizePlanData("p1", "", []byte(payload))

	meal := plan.Meal(MealLunch)
	if meal == nil {
		t.Fatal("Expected a lunch meal")
	}
	if meal.TargetCalories != 0 || meal.TargetProtein != 0 {
		t.Errorf("Expected zero targets, got %v / %v", meal.TargetCalories, meal.TargetProtein)
	}
	if len(meal.Foods) != 1 {
		t.Fatalf("Expected 1 food, got %d", len(meal.Foods))
	}
	if meal.Foods[0].Name != "Food" {
		t.Errorf("Expected default food name 'Food', got '%s'", meal.Foods[0].Name)
	}
	if meal.Foods[0].Amount != "1 serving" {
		t.Errorf("Expected default amount '1 serving', got '%s'", meal.Foods[0].Amount)
	}
}

func TestNormalizePlanDataAtMostOnePerType(t *testing.T) {
	// Duplicates across all three sources; only the first per type survives.
	payload := `{
		"meals": [
			{"mealType": "breakfast", "name": "A"},
			{"mealType": "breakfast", "name": "B"},
			{"mealType": "lunch", "name": "C"}
		],
		"weekDays": [
			{"day": "Monday", "meals": [
				{"mealType": "lunch", "name": "D"},
				{"mealType": "snack", "name": "E"}
			]}
		]
	}`
	plan := NormalizePlanData("p1", "", []byte(payload))

	counts := make(map[MealType]int)
	for _, meal := range plan.Meals {
		counts[meal.Type]++
	}
	for mealType, count := range counts {
		if count > 1 {
			t.Errorf("Expected at most one %s, got %d", mealType, count)
		}
	}
	if plan.Meal(MealBreakfast).Name != "A" {
		t.Errorf("Expected first breakfast 'A' to win, got '%s'", plan.Meal(MealBreakfast).Name)
	}
	if plan.Meal(MealLunch).Name != "C" {
		t.Errorf("Expected first lunch 'C' to win, got '%s'", plan.Meal(MealLunch).Name)
	}
	if plan.Meal(MealSnack).Name != "E" {
		t.Errorf("Expected snack 'E' from weekDays, got '%s'", plan.Meal(MealSnack).Name)
	}
}
