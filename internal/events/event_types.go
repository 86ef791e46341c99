package events

import (
	"encoding/json"
	"time"

	"github.com/vardast/ops-dashboard/internal/domain"
)

// EventType enumerates change-feed operations.
type EventType string

const (
	EventRecordInserted EventType = "INSERT"
	EventRecordUpdated  EventType = "UPDATE"
)

// Event is one row change delivered by the change feed. Row carries the full
// field map of the new row as JSON.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"op"`
	Table     domain.Kind     `json:"table"`
	RecordID  int64           `json:"record_id"`
	Row       json.RawMessage `json:"row"`
	Timestamp time.Time       `json:"timestamp"`
}

// RowSummary is the subset of columns every record kind shares.
type RowSummary struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Flag     domain.Flag `json:"flag"`
}

// Summary decodes the shared columns of the event row.
func (e Event) Summary() (RowSummary, error) {
	var s RowSummary
	if len(e.Row) == 0 {
		return s, nil
	}
	err := json.Unmarshal(e.Row, &s)
	return s, err
}
