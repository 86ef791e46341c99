package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FeedRunner is a blocking change-feed loop such as repository.ChangeFeed.
type FeedRunner interface {
	Run(ctx context.Context) error
}

// StartChangeFeed runs feed until ctx is cancelled, reconnecting after
// failures with a capped backoff. The returned channel closes once the loop
// has exited.
func StartChangeFeed(ctx context.Context, feed FeedRunner, logger *zap.Logger, retry time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if retry <= 0 {
		retry = time.Second
	}
	go func() {
		defer close(done)
		backoff := retry
		for {
			err := feed.Run(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				logger.Warn("change feed stopped", zap.Error(err), zap.Duration("retry_in", backoff))
			} else {
				backoff = retry
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if err != nil && backoff < 30*time.Second {
				backoff *= 2
			}
		}
	}()
	return done
}
