// Package invite holds an invitation code that arrived before there was a
// session to use it, and delivers it once sign-in completes.
package invite

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/dev-catena/lacos-sub000/internal/notify"
	"github.com/dev-catena/lacos-sub000/internal/router"
)

var errSignedOut = errors.New("signed out before delivery")

// Options configures a Queue.
type Options struct {
	Dispatcher router.Dispatcher
	Notifier   notify.Notifier
	Localizer  *notify.Localizer
	// Attempts caps delivery attempts; Interval is the fixed wait between them
	// and also bounds each wait for navigator readiness.
	Attempts int
	Interval time.Duration
	Logger   *slog.Logger
}

// Queue keeps at most one pending code. A newer code replaces an older one.
type Queue struct {
	dispatcher router.Dispatcher
	notifier   notify.Notifier
	loc        *notify.Localizer
	attempts   int
	interval   time.Duration
	logger     *slog.Logger

	mu            sync.Mutex
	pending       string
	authenticated bool
	epoch         uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an empty queue.
func New(opts Options) *Queue {
	q := &Queue{
		dispatcher: opts.Dispatcher,
		notifier:   opts.Notifier,
		loc:        opts.Localizer,
		attempts:   opts.Attempts,
		interval:   opts.Interval,
		logger:     opts.Logger,
	}
	if q.notifier == nil {
		q.notifier = notify.Discard
	}
	if q.loc == nil {
		q.loc = notify.NewLocalizer("")
	}
	if q.attempts <= 0 {
		q.attempts = 10
	}
	if q.interval <= 0 {
		q.interval = 500 * time.Millisecond
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	q.logger = q.logger.With("component", "invite")
	q.ctx, q.cancel = context.WithCancel(context.Background())
	return q
}

// Enqueue stores code as the pending invitation, replacing any other.
func (q *Queue) Enqueue(code string) {
	q.mu.Lock()
	q.pending = code
	q.mu.Unlock()
}

// Pending returns the undelivered code, if any.
func (q *Queue) Pending() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending, q.pending != ""
}

// Clear drops the pending code.
func (q *Queue) Clear() {
	q.Enqueue("")
}

// Offer accepts a freshly resolved code. With a session it is dispatched at
// once; otherwise it is queued and, when remind is set, the user is told to
// sign in. It reports whether a dispatch started.
func (q *Queue) Offer(ctx context.Context, code string, remind bool) bool {
	q.mu.Lock()
	if q.authenticated {
		epoch := q.epoch
		q.mu.Unlock()
		q.start(code, epoch)
		return true
	}
	q.pending = code
	q.mu.Unlock()

	q.logger.Info("Invitation queued until sign-in")
	if remind {
		q.notifier.Notify(ctx, q.loc.Event(notify.Warning, notify.KeyInviteLoginRequired, code))
	}
	return false
}

// OnAuthenticated marks the session as present and drains the pending code.
func (q *Queue) OnAuthenticated(context.Context) {
	q.mu.Lock()
	q.authenticated = true
	code := q.pending
	q.pending = ""
	epoch := q.epoch
	q.mu.Unlock()

	if code != "" {
		q.start(code, epoch)
	}
}

// OnSignedOut forgets the session and any pending code. In-flight deliveries
// stop at their next attempt.
func (q *Queue) OnSignedOut() {
	q.mu.Lock()
	q.authenticated = false
	q.pending = ""
	q.epoch++
	q.mu.Unlock()
}

// Wait blocks until in-flight deliveries finish.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Close stops in-flight deliveries and waits for them.
func (q *Queue) Close() {
	q.cancel()
	q.wg.Wait()
}

func (q *Queue) start(code string, epoch uint64) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.deliver(q.ctx, code, epoch)
	}()
}

func (q *Queue) deliver(ctx context.Context, code string, epoch uint64) {
	params := map[string]any{
		"inviteCode":    code,
		"openJoinModal": true,
	}

	attempt := 0
	operation := func() (struct{}, error) {
		attempt++
		readyCtx, cancel := context.WithTimeout(ctx, q.interval)
		defer cancel()
		if err := q.dispatcher.WaitReady(readyCtx); err != nil {
			return struct{}{}, err
		}
		if q.signedOutSince(epoch) {
			return struct{}{}, backoff.Permanent(errSignedOut)
		}
		return struct{}{}, q.dispatcher.Navigate(router.RouteGroups, params)
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(q.interval)),
		backoff.WithMaxTries(uint(q.attempts)),
	)
	switch {
	case err == nil:
		q.logger.Info("Invitation delivered", "attempts", attempt)
	case errors.Is(err, errSignedOut), errors.Is(err, context.Canceled) && ctx.Err() != nil:
		q.logger.Debug("Invitation delivery abandoned", "reason", err)
	default:
		q.logger.Warn("Dropping invitation, navigation never became ready", "attempts", attempt, "error", err)
		q.notifier.Notify(ctx, q.loc.Event(notify.Warning, notify.KeyInviteUndeliverable, code))
	}
}

func (q *Queue) signedOutSince(epoch uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.epoch != epoch
}
