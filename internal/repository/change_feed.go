package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/events"
)

// ChangeChannel is the NOTIFY channel the row triggers in
// migrations/002_change_feed.sql publish on.
const ChangeChannel = "ops_changes"

// RowFetcher loads one row as JSON. The feed uses it for notifications whose
// row was too large to inline.
type RowFetcher interface {
	FetchRow(ctx context.Context, kind domain.Kind, id int64) (json.RawMessage, error)
}

type poolRowFetcher struct {
	pool *pgxpool.Pool
}

func (f poolRowFetcher) FetchRow(ctx context.Context, kind domain.Kind, id int64) (json.RawMessage, error) {
	var row []byte
	query := "SELECT row_to_json(t) FROM " + pgx.Identifier{string(kind)}.Sanitize() + " t WHERE t.id = $1"
	if err := f.pool.QueryRow(ctx, query, id).Scan(&row); err != nil {
		return nil, err
	}
	return row, nil
}

// ChangeFeed relays Postgres notifications emitted by the row triggers onto
// the event dispatcher. Delivery is best effort in receipt order.
type ChangeFeed struct {
	pool       *pgxpool.Pool
	fetcher    RowFetcher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewChangeFeed constructs a feed listening on ChangeChannel.
func NewChangeFeed(pool *pgxpool.Pool, dispatcher events.Dispatcher, logger *zap.Logger) *ChangeFeed {
	return &ChangeFeed{pool: pool, fetcher: poolRowFetcher{pool: pool}, dispatcher: dispatcher, logger: logger}
}

type notification struct {
	Table string          `json:"table"`
	Op    string          `json:"op"`
	ID    int64           `json:"id"`
	Row   json.RawMessage `json:"row"`
}

// ParseNotification decodes a trigger payload into a change event. The row
// is optional; an id-only payload yields an event with an empty Row.
func ParseNotification(payload string) (events.Event, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return events.Event{}, fmt.Errorf("decode notification: %w", err)
	}
	kind, ok := domain.ParseKind(n.Table)
	if !ok {
		return events.Event{}, fmt.Errorf("unknown table %q", n.Table)
	}
	op := events.EventType(n.Op)
	if op != events.EventRecordInserted && op != events.EventRecordUpdated {
		return events.Event{}, fmt.Errorf("unsupported op %q", n.Op)
	}
	if n.ID <= 0 {
		return events.Event{}, fmt.Errorf("notification for %s without id", kind)
	}
	row := n.Row
	if bytes.Equal(bytes.TrimSpace(row), []byte("null")) {
		row = nil
	}
	return events.Event{
		ID:        uuid.NewString(),
		Type:      op,
		Table:     kind,
		RecordID:  n.ID,
		Row:       row,
		Timestamp: time.Now(),
	}, nil
}

// complete fills in the row of an id-only event.
func (f *ChangeFeed) complete(ctx context.Context, event events.Event) (events.Event, error) {
	if len(event.Row) > 0 {
		return event, nil
	}
	row, err := f.fetcher.FetchRow(ctx, event.Table, event.RecordID)
	if err != nil {
		return event, fmt.Errorf("fetch %s/%d: %w", event.Table, event.RecordID, err)
	}
	event.Row = row
	return event, nil
}

// Run blocks until ctx is cancelled or the listening connection fails.
func (f *ChangeFeed) Run(ctx context.Context) error {
	if f.pool == nil {
		return errors.New("change feed requires a postgres pool")
	}
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ChangeChannel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", ChangeChannel, err)
	}
	f.logger.Info("change feed subscribed", zap.String("channel", ChangeChannel))

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		event, err := ParseNotification(n.Payload)
		if err != nil {
			f.logger.Warn("dropping change notification", zap.Error(err))
			continue
		}
		if event, err = f.complete(ctx, event); err != nil {
			f.logger.Warn("dropping change notification", zap.Error(err))
			continue
		}
		if err := f.dispatcher.Publish(ctx, event); err != nil {
			f.logger.Warn("change handler failed",
				zap.String("table", string(event.Table)),
				zap.Int64("record_id", event.RecordID),
				zap.Error(err))
		}
	}
}
