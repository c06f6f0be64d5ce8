// Package scheduler defines the boundary to the external reminder system.
// The engine only emits scheduling requests; delivery lives elsewhere.
package scheduler

import "context"

// ReminderOptions describes the reminders to (re)schedule after a plan
// changes. Windows are "HH:MM" local strings keyed by meal type.
type ReminderOptions struct {
	UserID      string
	PlanID      string
	MealWindows map[string]string
}

// ReminderScheduler schedules meal reminders for a user's plan.
type ReminderScheduler interface {
	ScheduleReminders(ctx context.Context, opts ReminderOptions) error
}

// Noop is a ReminderScheduler that does nothing. Used when no delivery
// backend is wired in.
type Noop struct{}

// ScheduleReminders implements ReminderScheduler.
func (Noop) ScheduleReminders(ctx context.Context, opts ReminderOptions) error {
	return nil
}
