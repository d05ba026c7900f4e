package store

import (
	"context"
	"errors"
	"time"

	"storefront/internal/repository"

	"github.com/cenkalti/backoff/v4"
)

var errFeedEnded = errors.New("change feed ended")

// runFeed is the reconciliation loop for one table. It applies events in
// arrival order and, when the feed drops, resubscribes with capped
// exponential backoff before reloading the table.
func (c *Container) runFeed(ctx context.Context, table repository.Table, sub repository.Subscription) {
	defer c.wg.Done()

	logger := c.logger.With().Str("table", string(table)).Logger()

	for {
		if sub != nil {
			c.setFeedState(table, FeedActive, nil)
			c.consume(ctx, table, sub)

			err := sub.Err()
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				err = errFeedEnded
			}
			logger.Warn().Err(err).Msg("change feed dropped, mirror is stale")
			c.setFeedState(table, FeedStale, err)
		}

		sub = c.resubscribe(ctx, table)
		if sub == nil {
			return
		}
	}
}

// consume applies events until the subscription ends or ctx is cancelled.
func (c *Container) consume(ctx context.Context, table repository.Table, sub repository.Subscription) {
	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			if ev.Table == "" {
				ev.Table = table
			}
			c.apply(ev)
		}
	}
}

// resubscribe re-establishes the feed and reloads the table. It returns nil
// once ctx is cancelled or the retries are exhausted, leaving the table stale.
func (c *Container) resubscribe(ctx context.Context, table repository.Table) repository.Subscription {
	logger := c.logger.With().Str("table", string(table)).Logger()

	var sub repository.Subscription
	operation := func() error {
		c.setFeedState(table, FeedSubscribing, nil)

		s, err := c.gw.Feed.Subscribe(ctx, table)
		if err != nil {
			c.setFeedState(table, FeedStale, err)
			return err
		}
		// Reload after subscribing so nothing committed in between is missed.
		if err := c.reloadTable(ctx, table); err != nil {
			_ = s.Close()
			c.setFeedState(table, FeedStale, err)
			return err
		}
		sub = s
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.ReconnectInitialInterval
	policy.MaxInterval = c.opts.ReconnectMaxInterval
	policy.MaxElapsedTime = 0

	notify := func(err error, next time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", next).Msg("change feed resubscribe failed")
	}

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.opts.ReconnectMaxRetries)), ctx),
		notify)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error().Err(err).Int("max_retries", c.opts.ReconnectMaxRetries).Msg("giving up on change feed")
			c.setFeedState(table, FeedStale, err)
		}
		return nil
	}

	logger.Info().Msg("change feed re-established")
	return sub
}
