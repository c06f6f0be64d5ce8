package dietplan

import (
	"context"
	"time"

	"adaptive-diet-engine/internal/scheduler"
	"adaptive-diet-engine/internal/store"
)

// PlanStore is the subset of the plan repository the engine consumes.
type PlanStore interface {
	FindActiveByUser(ctx context.Context, userID string) (*store.PlanRecord, error)
	SaveGenerated(ctx context.Context, rec *store.PlanRecord) error
	ReplacePlanData(ctx context.Context, planID string, planData []byte) error
}

// MealLogStore reads externally produced meal logs.
type MealLogStore interface {
	ListByUserBetween(ctx context.Context, userID string, startMs, endMs int64) ([]store.LoggedMeal, error)
}

// ProfileStore reads user nutrition profiles.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*store.UserProfile, error)
}

// KeyValueStore is the string key-value contract used for dismissal flags
// and the feedback log.
type KeyValueStore interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
}

// Engine ties the plan, meal-log, profile and key-value stores together
// behind the public diet plan operations.
type Engine struct {
	plans     PlanStore
	logs      MealLogStore
	profiles  ProfileStore
	kv        KeyValueStore
	reminders scheduler.ReminderScheduler
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithReminderScheduler sets the reminder scheduler called after a
// generated plan is saved.
func WithReminderScheduler(s scheduler.ReminderScheduler) Option {
	return func(e *Engine) { e.reminders = s }
}

// NewEngine creates an Engine over the given stores.
func NewEngine(plans PlanStore, logs MealLogStore, profiles ProfileStore, kv KeyValueStore, opts ...Option) *Engine {
	e := &Engine{
		plans:     plans,
		logs:      logs,
		profiles:  profiles,
		kv:        kv,
		reminders: scheduler.Noop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// activePlan loads and normalizes the user's active plan. Returns nil when
// the user has no active plan.
func (e *Engine) activePlan(ctx context.Context, userID string) (*DietPlan, *store.PlanRecord, error) {
	rec, err := e.plans.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, nil
	}
	return NormalizePlanData(rec.ID, rec.Name, rec.PlanData), rec, nil
}

// dayBoundsMs returns the local midnight-to-midnight epoch-millisecond
// bounds of the calendar day containing t.
func dayBoundsMs(t time.Time) (int64, int64) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.Add(24 * time.Hour)
	return start.UnixMilli(), end.UnixMilli() - 1
}

// minuteOfDay returns minutes after local midnight for an epoch-ms instant.
func minuteOfDay(epochMs int64, loc *time.Location) int {
	t := time.UnixMilli(epochMs).In(loc)
	return t.Hour()*60 + t.Minute()
}
