package dietplan

import (
	"encoding/json"
	"fmt"
	"time"
)

func feedbackKey(userID string) string {
	return "adaptive:feedback:" + userID
}

func dismissKey(suggestionID string, date time.Time) string {
	return "adaptive:dismiss:" + suggestionID + ":" + date.Format("2006-01-02")
}

// appendFeedback appends a record to the user's append-only feedback log.
// An unreadable existing log is replaced rather than surfaced.
func (e *Engine) appendFeedback(userID string, rec FeedbackRecord) error {
	var records []FeedbackRecord
	raw, ok, err := e.kv.GetItem(feedbackKey(userID))
	if err != nil {
		return err
	}
	if ok {
		_ = json.Unmarshal([]byte(raw), &records)
	}

	records = append(records, rec)
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback log: %w", err)
	}
	return e.kv.SetItem(feedbackKey(userID), string(data))
}

// FeedbackLog returns the user's adaptation feedback records, oldest first.
func (e *Engine) FeedbackLog(userID string) ([]FeedbackRecord, error) {
	raw, ok, err := e.kv.GetItem(feedbackKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback log: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var records []FeedbackRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feedback log: %w", err)
	}
	return records, nil
}

// DismissSuggestion sets the idempotent per-(suggestion, day) dismissal flag.
func (e *Engine) DismissSuggestion(suggestionID string, date time.Time) error {
	payload, err := json.Marshal(map[string]string{
		"dismissedAt": e.now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal dismissal flag: %w", err)
	}
	return e.kv.SetItem(dismissKey(suggestionID, date), string(payload))
}

// IsSuggestionDismissed reports whether the suggestion was dismissed on the
// given day.
func (e *Engine) IsSuggestionDismissed(suggestionID string, date time.Time) (bool, error) {
	_, ok, err := e.kv.GetItem(dismissKey(suggestionID, date))
	if err != nil {
		return false, fmt.Errorf("failed to read dismissal flag: %w", err)
	}
	return ok, nil
}

// LastAnalysisRun returns the timestamp of the most recent analysis run.
// The second return value is false when no run has been recorded.
func (e *Engine) LastAnalysisRun(userID string) (time.Time, bool, error) {
	raw, ok, err := e.kv.GetItem(lastRunKey(userID))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last analysis run: %w", err)
	}
	if !ok {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}
