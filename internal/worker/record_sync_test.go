package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/events"
	"github.com/vardast/ops-dashboard/internal/repository"
	"github.com/vardast/ops-dashboard/internal/store"
)

// eagerFeed publishes one insert as soon as it runs.
type eagerFeed struct {
	dispatcher events.Dispatcher
	row        domain.Issue
}

func (f eagerFeed) Run(ctx context.Context) error {
	body, err := json.Marshal(f.row)
	if err != nil {
		return err
	}
	if err := f.dispatcher.Publish(ctx, events.Event{
		Type:     events.EventRecordInserted,
		Table:    domain.KindIssue,
		RecordID: f.row.ID,
		Row:      body,
	}); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func TestStartRecordSyncSubscribesBeforeFeed(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	st := store.New(repository.NewMemoryGateway(nil), nil)
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	feed := eagerFeed{dispatcher: dispatcher, row: domain.Issue{ID: 41, Username: "ali"}}
	done := StartRecordSync(ctx, st, dispatcher, feed, zap.NewNop(), time.Millisecond)

	assert.Eventually(t, func() bool {
		snap, err := st.Snapshot(context.Background())
		return err == nil && len(snap.Issues) == 1 && snap.Issues[0].ID == 41
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("record sync did not stop")
	}
}

func TestStartRecordSyncWithoutFeed(t *testing.T) {
	gw := repository.NewMemoryGateway(events.NewInMemoryDispatcher())
	issue := domain.Issue{Username: "sara"}
	require.NoError(t, gw.Issues.Insert(context.Background(), &issue))
	st := store.New(gw, nil)
	defer st.Close()

	done := StartRecordSync(context.Background(), st, events.NewInMemoryDispatcher(), nil, zap.NewNop(), 0)
	<-done

	snap, err := st.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Connected)
	assert.Len(t, snap.Issues, 1)
}
