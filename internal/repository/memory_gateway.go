package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/events"
)

// memoryTable keeps rows in process and echoes writes on the dispatcher the
// way the Postgres trigger does, so the change feed behaves the same.
type memoryTable[T domain.Record] struct {
	mu         sync.RWMutex
	rows       map[int64]T
	order      []int64 // insertion order
	lastID     int64
	kind       domain.Kind
	dispatcher events.Dispatcher
}

func newMemoryTable[T domain.Record](kind domain.Kind, dispatcher events.Dispatcher) *memoryTable[T] {
	return &memoryTable[T]{
		rows:       make(map[int64]T),
		kind:       kind,
		dispatcher: dispatcher,
	}
}

func (t *memoryTable[T]) List(_ context.Context) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]T, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		result = append(result, t.rows[t.order[i]])
	}
	return result, nil
}

func (t *memoryTable[T]) Insert(ctx context.Context, record *T) error {
	t.mu.Lock()
	t.lastID++
	row := domain.WithID(*record, t.lastID)
	t.rows[row.RecordID()] = row
	t.order = append(t.order, row.RecordID())
	t.mu.Unlock()

	*record = row
	t.publish(ctx, events.EventRecordInserted, row)
	return nil
}

func (t *memoryTable[T]) Update(ctx context.Context, record *T) error {
	id := (*record).RecordID()
	t.mu.Lock()
	stored, ok := t.rows[id]
	if !ok {
		t.mu.Unlock()
		return pgx.ErrNoRows
	}
	row := domain.KeepDate(stored, *record)
	t.rows[id] = row
	t.mu.Unlock()

	t.publish(ctx, events.EventRecordUpdated, row)
	return nil
}

func (t *memoryTable[T]) publish(ctx context.Context, op events.EventType, row T) {
	if t.dispatcher == nil {
		return
	}
	body, err := json.Marshal(row)
	if err != nil {
		return
	}
	_ = t.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      op,
		Table:     t.kind,
		RecordID:  row.RecordID(),
		Row:       body,
		Timestamp: time.Now(),
	})
}

// NewMemoryGateway returns an in-process gateway. Inserts and updates are
// published on dispatcher as change-feed events.
func NewMemoryGateway(dispatcher events.Dispatcher) *Gateway {
	return &Gateway{
		Issues:   newMemoryTable[domain.Issue](domain.KindIssue, dispatcher),
		Frozen:   newMemoryTable[domain.FrozenAccount](domain.KindFrozen, dispatcher),
		Features: newMemoryTable[domain.FeatureRequest](domain.KindFeature, dispatcher),
		Refunds:  newMemoryTable[domain.RefundRequest](domain.KindRefund, dispatcher),
	}
}
