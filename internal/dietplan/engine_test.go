package dietplan

import (
	"context"
	"time"

	"adaptive-diet-engine/internal/scheduler"
	"adaptive-diet-engine/internal/store"
)

// --- Fakes ---

type fakePlanStore struct {
	active   *store.PlanRecord
	saved    []*store.PlanRecord
	replaced map[string][]byte
}

func (f *fakePlanStore) FindActiveByUser(ctx context.Context, userID string) (*store.PlanRecord, error) {
	if f.active == nil || f.active.UserID != userID {
		return nil, nil
	}
	return f.active, nil
}

func (f *fakePlanStore) SaveGenerated(ctx context.Context, rec *store.PlanRecord) error {
	if f.active != nil && f.active.UserID == rec.UserID {
		f.active.IsActive = false
	}
	f.active = rec
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakePlanStore) ReplacePlanData(ctx context.Context, planID string, planData []byte) error {
	if f.replaced == nil {
		f.replaced = make(map[string][]byte)
	}
	f.replaced[planID] = planData
	if f.active != nil && f.active.ID == planID {
		f.active.PlanData = planData
	}
	return nil
}

type fakeMealLogStore struct {
	meals []store.LoggedMeal
}

func (f *fakeMealLogStore) ListByUserBetween(ctx context.Context, userID string, startMs, endMs int64) ([]store.LoggedMeal, error) {
	var out []store.LoggedMeal
	for _, m := range f.meals {
		if m.UserID == userID && m.ConsumedAt >= startMs && m.ConsumedAt <= endMs {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeProfileStore struct {
	profile *store.UserProfile
}

func (f *fakeProfileStore) GetByUserID(ctx context.Context, userID string) (*store.UserProfile, error) {
	if f.profile == nil || f.profile.UserID != userID {
		return nil, nil
	}
	return f.profile, nil
}

type fakeKV struct {
	items map[string]string
}

func (f *fakeKV) GetItem(key string) (string, bool, error) {
	v, ok := f.items[key]
	return v, ok, nil
}

func (f *fakeKV) SetItem(key, value string) error {
	if f.items == nil {
		f.items = make(map[string]string)
	}
	f.items[key] = value
	return nil
}

type recordingScheduler struct {
	calls []scheduler.ReminderOptions
}

func (r *recordingScheduler) ScheduleReminders(ctx context.Context, opts scheduler.ReminderOptions) error {
	r.calls = append(r.calls, opts)
	return nil
}

// --- Helpers ---

// testNow is the fixed "today" used by engine tests.
var testNow = time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)

func newTestEngine(plans *fakePlanStore, logs *fakeMealLogStore, profiles *fakeProfileStore, kv *fakeKV) *Engine {
	return NewEngine(plans, logs, profiles, kv, WithClock(func() time.Time { return testNow }))
}

// loggedAt builds a logged meal consumed at the given hour of the day
// daysAgo days before testNow.
func loggedAt(userID, mealType string, daysAgo, hour int, calories float64) store.LoggedMeal {
	day := testNow.AddDate(0, 0, -daysAgo)
	consumed := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
	return store.LoggedMeal{
		UserID:        userID,
		MealType:      mealType,
		ConsumedAt:    consumed.UnixMilli(),
		TotalCalories: calories,
	}
}

func activePlanRecord(userID string, payload string) *store.PlanRecord {
	return &store.PlanRecord{
		ID:       "plan-1",
		UserID:   userID,
		Name:     "Test plan",
		PlanData: []byte(payload),
		IsActive: true,
	}
}
