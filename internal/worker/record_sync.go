package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vardast/ops-dashboard/internal/events"
	"github.com/vardast/ops-dashboard/internal/store"
)

// StartRecordSync seeds st, subscribes it to dispatcher and only then starts
// feed, so no change published by the feed can miss the store. A nil feed
// (memory driver, no database) skips the listener. The returned channel
// closes once the feed loop has exited.
func StartRecordSync(ctx context.Context, st *store.Store, dispatcher events.Dispatcher, feed FeedRunner, logger *zap.Logger, retry time.Duration) <-chan struct{} {
	if err := st.Seed(ctx); err != nil {
		logger.Error("initial load incomplete", zap.Error(err))
	}
	st.Subscribe(dispatcher)

	if feed == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return StartChangeFeed(ctx, feed, logger, retry)
}
