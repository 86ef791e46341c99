package repository

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/events"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []events.Event
}

func (h *recordingHandler) handle(_ context.Context, ev events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return nil
}

func TestMemoryGatewayInsertAssignsIdentityAndPublishes(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recordingHandler{}
	dispatcher.Subscribe(events.EventRecordInserted, rec.handle)

	gw := NewMemoryGateway(dispatcher)
	require.True(t, gw.Configured())

	ctx := context.Background()
	first := domain.Issue{Username: "ali", Description: "login fails"}
	second := domain.Issue{Username: "sara"}
	require.NoError(t, gw.Issues.Insert(ctx, &first))
	require.NoError(t, gw.Issues.Insert(ctx, &second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	rows, err := gw.Issues.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "sara", rows[0].Username, "newest first")

	require.Len(t, rec.events, 2)
	assert.Equal(t, domain.KindIssue, rec.events[0].Table)
	assert.Equal(t, int64(1), rec.events[0].RecordID)
	assert.JSONEq(t, `"login fails"`, extractField(t, rec.events[0], "desc_text"))
}

func TestMemoryGatewayUpdateKeepsDateColumn(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recordingHandler{}
	dispatcher.Subscribe(events.EventRecordUpdated, rec.handle)
	gw := NewMemoryGateway(dispatcher)
	ctx := context.Background()

	refund := domain.RefundRequest{Username: "sara", RequestedAt: "۱۴۰۵/۷/۲۵"}
	require.NoError(t, gw.Refunds.Insert(ctx, &refund))

	edited := refund
	edited.RequestedAt = ""
	edited.Action = domain.RefundActionRefunded
	require.NoError(t, gw.Refunds.Update(ctx, &edited))

	rows, err := gw.Refunds.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "۱۴۰۵/۷/۲۵", rows[0].RequestedAt)
	assert.Equal(t, domain.RefundActionRefunded, rows[0].Action)
	require.Len(t, rec.events, 1)
	assert.Equal(t, events.EventRecordUpdated, rec.events[0].Type)
}

func TestMemoryGatewayUpdateUnknownRow(t *testing.T) {
	gw := NewMemoryGateway(nil)
	missing := domain.FeatureRequest{ID: 42}
	err := gw.Features.Update(context.Background(), &missing)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestNilGatewayIsNotConfigured(t *testing.T) {
	var gw *Gateway
	assert.False(t, gw.Configured())
	assert.Nil(t, NewPostgresGateway(nil))
	assert.False(t, (&Gateway{Issues: NewIssueTable(nil)}).Configured())
}

func extractField(t *testing.T, ev events.Event, field string) string {
	t.Helper()
	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(ev.Row, &fields))
	raw, err := json.Marshal(fields[field])
	require.NoError(t, err)
	return string(raw)
}
