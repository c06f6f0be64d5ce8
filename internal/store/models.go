package store

import "time"

// PlanRecord is a persisted diet plan. PlanData holds the free-form JSON
// payload produced by the generator or an import pipeline; its shape is
// interpreted by the engine's normalizer, never here.
type PlanRecord struct {
	ID            string
	UserID        string
	Name          string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	PlanData      []byte
	IsActive      bool
	IsAIGenerated bool
	CreatedAt     time.Time
}

// LoggedMeal is an externally produced meal log entry. ConsumedAt is
// epoch milliseconds.
type LoggedMeal struct {
	ID            int64
	UserID        string
	MealType      string
	ConsumedAt    int64
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFats     float64
}

// UserProfile holds a user's nutrition targets and preferences.
type UserProfile struct {
	UserID              string
	CalorieTarget       float64
	ProteinTarget       float64
	CarbsTarget         float64
	FatsTarget          float64
	Goal                string
	ActivityLevel       string
	DietaryRestrictions []string
}
