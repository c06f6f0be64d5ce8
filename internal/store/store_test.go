package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"adaptive-diet-engine/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPlanRepository(db.SQL)

	start := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	t.Run("FindActiveByUser-Empty", func(t *testing.T) {
		rec, err := repo.FindActiveByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("FindActiveByUser failed: %v", err)
		}
		if rec != nil {
			t.Errorf("Expected nil for missing plan, got %+v", rec)
		}
	})

	first := &PlanRecord{
		ID:        "plan-a",
		UserID:    "u1",
		Name:      "First plan",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 6),
		PlanData:  []byte(`{"meals": []}`),
		IsActive:  true,
		CreatedAt: start,
	}

	t.Run("SaveGenerated", func(t *testing.T) {
		if err := repo.SaveGenerated(ctx, first); err != nil {
			t.Fatalf("SaveGenerated failed: %v", err)
		}
		rec, err := repo.FindActiveByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("FindActiveByUser failed: %v", err)
		}
		if rec == nil || rec.ID != "plan-a" {
			t.Fatalf("Expected plan-a active, got %+v", rec)
		}
	})

	t.Run("SaveGenerated-DeactivatesPrevious", func(t *testing.T) {
		second := &PlanRecord{
			ID:        "plan-b",
			UserID:    "u1",
			Name:      "Second plan",
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 6),
			PlanData:  []byte(`{"meals": []}`),
			IsActive:  true,
			CreatedAt: start.Add(time.Hour),
		}
		if err := repo.SaveGenerated(ctx, second); err != nil {
			t.Fatalf("SaveGenerated failed: %v", err)
		}

		active, err := repo.FindActiveByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("FindActiveByUser failed: %v", err)
		}
		if active == nil || active.ID != "plan-b" {
			t.Fatalf("Expected plan-b active, got %+v", active)
		}

		old, err := repo.GetByID(ctx, "plan-a")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if old.IsActive {
			t.Error("Expected plan-a to be deactivated")
		}
	})

	t.Run("ReplacePlanData", func(t *testing.T) {
		updated := []byte(`{"meals": [{"mealType": "lunch"}]}`)
		if err := repo.ReplacePlanData(ctx, "plan-b", updated); err != nil {
			t.Fatalf("ReplacePlanData failed: %v", err)
		}
		rec, err := repo.GetByID(ctx, "plan-b")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if string(rec.PlanData) != string(updated) {
			t.Errorf("Expected updated payload, got %s", rec.PlanData)
		}
	})

	t.Run("ReplacePlanData-Missing", func(t *testing.T) {
		if err := repo.ReplacePlanData(ctx, "no-such-plan", []byte(`{}`)); err == nil {
			t.Error("Expected an error updating a missing plan")
		}
	})

	t.Run("DeactivateAllForUser", func(t *testing.T) {
		if err := repo.DeactivateAllForUser(ctx, "u1"); err != nil {
			t.Fatalf("DeactivateAllForUser failed: %v", err)
		}
		rec, err := repo.FindActiveByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("FindActiveByUser failed: %v", err)
		}
		if rec != nil {
			t.Errorf("Expected no active plan, got %+v", rec)
		}
	})
}

func TestMealLogRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMealLogRepository(db.SQL)

	day := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	entries := []struct {
		mealType string
		at       time.Time
		calories float64
	}{
		{"breakfast", day.Add(8 * time.Hour), 420},
		{"lunch", day.Add(13 * time.Hour), 650},
		{"dinner", day.Add(-5 * time.Hour), 580}, // previous day
	}
	for _, e := range entries {
		meal := &LoggedMeal{
			UserID:        "u1",
			MealType:      e.mealType,
			ConsumedAt:    e.at.UnixMilli(),
			TotalCalories: e.calories,
		}
		if err := repo.Insert(ctx, meal); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	startMs := day.UnixMilli()
	endMs := day.Add(24*time.Hour).UnixMilli() - 1
	meals, err := repo.ListByUserBetween(ctx, "u1", startMs, endMs)
	if err != nil {
		t.Fatalf("ListByUserBetween failed: %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("Expected 2 meals in range, got %d", len(meals))
	}
	if meals[0].MealType != "breakfast" || meals[1].MealType != "lunch" {
		t.Errorf("Expected breakfast then lunch, got %s then %s",
			meals[0].MealType, meals[1].MealType)
	}

	other, err := repo.ListByUserBetween(ctx, "someone-else", startMs, endMs)
	if err != nil {
		t.Fatalf("ListByUserBetween failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no meals for another user, got %d", len(other))
	}
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewProfileRepository(db.SQL)

	t.Run("GetByUserID-Missing", func(t *testing.T) {
		p, err := repo.GetByUserID(ctx, "u1")
		if err != nil {
			t.Fatalf("GetByUserID failed: %v", err)
		}
		if p != nil {
			t.Errorf("Expected nil for missing profile, got %+v", p)
		}
	})

	profile := &UserProfile{
		UserID:              "u1",
		CalorieTarget:       2000,
		ProteinTarget:       120,
		CarbsTarget:         220,
		FatsTarget:          60,
		Goal:                "lose",
		ActivityLevel:       "moderate",
		DietaryRestrictions: []string{"vegetarian", "gluten_free"},
	}

	t.Run("UpsertAndGet", func(t *testing.T) {
		if err := repo.Upsert(ctx, profile); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		got, err := repo.GetByUserID(ctx, "u1")
		if err != nil {
			t.Fatalf("GetByUserID failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected a profile")
		}
		if got.CalorieTarget != 2000 || got.Goal != "lose" {
			t.Errorf("Unexpected profile: %+v", got)
		}
		if len(got.DietaryRestrictions) != 2 || got.DietaryRestrictions[0] != "vegetarian" {
			t.Errorf("Unexpected restrictions: %v", got.DietaryRestrictions)
		}
	})

	t.Run("UpsertOverwrites", func(t *testing.T) {
		profile.Goal = "gain"
		profile.DietaryRestrictions = nil
		if err := repo.Upsert(ctx, profile); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		got, err := repo.GetByUserID(ctx, "u1")
		if err != nil {
			t.Fatalf("GetByUserID failed: %v", err)
		}
		if got.Goal != "gain" {
			t.Errorf("Expected updated goal 'gain', got '%s'", got.Goal)
		}
		if len(got.DietaryRestrictions) != 0 {
			t.Errorf("Expected cleared restrictions, got %v", got.DietaryRestrictions)
		}
	})
}
