package dietplan

import "strings"

// Meal-type inference is an ordered list of resolution strategies: an exact
// keyword table (English, Arabic, Spanish) followed by a substring fallback.
// First match wins; callers that need a terminal default (logged meal
// labels) fall through to snack.

var mealTypeKeywords = map[string]MealType{
	// English
	"breakfast": MealBreakfast,
	"lunch":     MealLunch,
	"dinner":    MealDinner,
	"supper":    MealDinner,
	"snack":     MealSnack,
	// Arabic
	"فطور":       MealBreakfast,
	"إفطار":      MealBreakfast,
	"غداء":       MealLunch,
	"عشاء":       MealDinner,
	"سناك":       MealSnack,
	"وجبة خفيفة": MealSnack,
	// Spanish
	"desayuno": MealBreakfast,
	"almuerzo": MealLunch,
	"cena":     MealDinner,
	"merienda": MealSnack,
}

var mealTypeSubstrings = []struct {
	sub string
	t   MealType
}{
	{"break", MealBreakfast},
	{"lunch", MealLunch},
	{"dinner", MealDinner},
	{"supper", MealDinner},
	{"snack", MealSnack},
}

// inferMealType resolves a free-text label to a meal type. The second
// return value is false when no strategy matches.
func inferMealType(label string) (MealType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return "", false
	}
	if t, ok := mealTypeKeywords[normalized]; ok {
		return t, true
	}
	for _, rule := range mealTypeSubstrings {
		if strings.Contains(normalized, rule.sub) {
			return rule.t, true
		}
	}
	return "", false
}

// normalizeLoggedMealType resolves a logged meal's free-text label,
// defaulting to snack when nothing matches.
func normalizeLoggedMealType(label string) MealType {
	if t, ok := inferMealType(label); ok {
		return t
	}
	return MealSnack
}
