package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"reactgram/internal/apperrors"
	"reactgram/internal/models"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ErrFeedClosed is returned by Publish after Close.
var ErrFeedClosed = errors.New("change feed closed")

// ChangeHandler consumes one user change. Errors coded ErrUnavailable are redelivered.
type ChangeHandler func(ctx context.Context, change models.UserChange) error

// FeedOptions configures a ChangeFeed.
type FeedOptions struct {
	Buffer          int
	MaxAttempts     int
	InitialInterval time.Duration
}

// ChangeFeed delivers user write events to a handler on a background worker, in the
// order they were published, redelivering transient failures with backoff.
type ChangeFeed struct {
	queue       chan models.UserChange
	handler     ChangeHandler
	log         *zap.Logger
	maxAttempts int
	interval    time.Duration

	mu       sync.RWMutex
	closed   bool
	started  bool
	quit     chan struct{} // closed by Close; releases blocked publishers
	inflight sync.WaitGroup
	done     chan struct{}
}

func NewChangeFeed(handler ChangeHandler, log *zap.Logger, opts FeedOptions) *ChangeFeed {
	if opts.Buffer <= 0 {
		opts.Buffer = 1000
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 200 * time.Millisecond
	}
	return &ChangeFeed{
		queue:       make(chan models.UserChange, opts.Buffer),
		handler:     handler,
		log:         log,
		maxAttempts: opts.MaxAttempts,
		interval:    opts.InitialInterval,
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the worker. Handlers run with ctx; Start is a no-op after the first call.
func (f *ChangeFeed) Start(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started || f.closed {
		return
	}
	f.started = true
	go f.worker(ctx)
}

// Publish enqueues a change, waiting for room in the buffer until ctx ends or the
// feed is closed.
func (f *ChangeFeed) Publish(ctx context.Context, change models.UserChange) error {
	f.mu.RLock()
	if f.closed {
		f.mu.RUnlock()
		return ErrFeedClosed
	}
	f.inflight.Add(1)
	f.mu.RUnlock()
	defer f.inflight.Done()

	select {
	case f.queue <- change:
		return nil
	case <-f.quit:
		return ErrFeedClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting changes and waits until the queued ones were handled.
// Publishers still waiting for buffer room get ErrFeedClosed.
func (f *ChangeFeed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	started := f.started
	f.mu.Unlock()

	close(f.quit)
	f.inflight.Wait()
	close(f.queue)

	if started {
		<-f.done
	}
}

func (f *ChangeFeed) worker(ctx context.Context) {
	defer close(f.done)
	for change := range f.queue {
		f.deliver(ctx, change)
	}
}

func (f *ChangeFeed) deliver(ctx context.Context, change models.UserChange) {
	attempt := 0
	op := func() error {
		attempt++
		err := f.handler(ctx, change)
		if err != nil && !apperrors.Is(err, apperrors.ErrUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = f.interval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(f.maxAttempts-1)), ctx)

	err := backoff.RetryNotify(op, policy, func(err error, next time.Duration) {
		f.log.Warn("user change delivery failed, retrying",
			zap.Uint("user_id", change.UserID),
			zap.Int("attempt", attempt),
			zap.Duration("next", next),
			zap.Error(err))
	})
	if err != nil {
		f.log.Error("user change dropped",
			zap.Uint("user_id", change.UserID),
			zap.Int("attempts", attempt),
			zap.Error(err))
	}
}
