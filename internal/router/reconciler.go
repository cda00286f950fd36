package router

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dev-catena/lacos-sub000/internal/session"
)

// SessionView is the read side of the session controller.
type SessionView interface {
	Snapshot() session.Snapshot
}

// InviteQueue is notified of sign-in and sign-out transitions.
type InviteQueue interface {
	OnAuthenticated(ctx context.Context)
	OnSignedOut()
}

// ReconcilerOptions configures a Reconciler.
type ReconcilerOptions struct {
	Gateway *Gateway
	Session SessionView
	Queue   InviteQueue
	// ResetDelay lets a freshly mounted container settle before a forced reset.
	ResetDelay time.Duration
	// ReadyTimeout bounds how long a due reset waits for the navigator.
	ReadyTimeout time.Duration
	// OnDecision is called whenever the host must mount a different tree.
	OnDecision func(Decision)
	Logger     *slog.Logger
}

// Reconciler maps session state to a navigation tree and repairs the live
// navigation stack when it disagrees with the session.
type Reconciler struct {
	gateway      *Gateway
	session      SessionView
	queue        InviteQueue
	delay        time.Duration
	readyTimeout time.Duration
	onDecision   func(Decision)
	logger       *slog.Logger

	mu       sync.Mutex
	current  Decision
	decided  bool
	instance int
	gen      uint64
	timer    *time.Timer
	resets   int
}

// NewReconciler creates a reconciler. Nothing is decided until the first
// Observe or Evaluate.
func NewReconciler(opts ReconcilerOptions) *Reconciler {
	r := &Reconciler{
		gateway:      opts.Gateway,
		session:      opts.Session,
		queue:        opts.Queue,
		delay:        opts.ResetDelay,
		readyTimeout: opts.ReadyTimeout,
		onDecision:   opts.OnDecision,
		logger:       opts.Logger,
	}
	if r.delay <= 0 {
		r.delay = 300 * time.Millisecond
	}
	if r.readyTimeout <= 0 {
		r.readyTimeout = 10 * r.delay
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "router")
	return r
}

// Observe handles one session transition. Pass it to Controller.Subscribe.
func (r *Reconciler) Observe(tr session.Transition) {
	r.evaluate(r.effective(tr.From, false), tr.To)
}

// Evaluate decides from the current session state, e.g. right after startup.
func (r *Reconciler) Evaluate() {
	r.evaluate(session.StateLoading, r.session.Snapshot())
}

// Decision returns the current decision.
func (r *Reconciler) Decision() Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Resets returns how many forced resets were applied.
func (r *Reconciler) Resets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resets
}

// Close cancels any pending reset.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.cancelResetLocked()
	r.mu.Unlock()
}

// effective folds the inconsistent signed-without-user state into anonymous.
func (r *Reconciler) effective(s session.Snapshot, log bool) session.State {
	if s.State == session.StateAuthenticated && s.User == nil {
		if log {
			r.logger.Error("Inconsistent session: authenticated without a user, treating as anonymous")
		}
		return session.StateAnonymous
	}
	return s.State
}

func (r *Reconciler) evaluate(from session.State, to session.Snapshot) {
	state := r.effective(to, true)

	// Leaving the session for any other state is a sign-out, including a
	// fresh two-factor challenge or a registration attempt.
	if from == session.StateAuthenticated && state != session.StateAuthenticated {
		r.mu.Lock()
		r.instance++
		r.mu.Unlock()
		if r.queue != nil {
			r.queue.OnSignedOut()
		}
	}

	switch state {
	case session.StateLoading:
		r.decide(Decision{Tree: TreeNone})

	case session.StateRegistering:
		r.mu.Lock()
		r.cancelResetLocked()
		r.mu.Unlock()
		r.decide(r.unauthenticated(to))

	case session.StateAnonymous, session.StateTwoFactorPending:
		r.decide(r.unauthenticated(to))
		r.scheduleReset()

	case session.StateAuthenticated:
		r.mu.Lock()
		r.cancelResetLocked()
		r.mu.Unlock()
		r.decide(Decision{Tree: TreeAuthenticated, InitialRoute: RouteHome})
		if from != session.StateAuthenticated && r.queue != nil {
			r.queue.OnAuthenticated(context.Background())
		}
	}
}

func (r *Reconciler) unauthenticated(s session.Snapshot) Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Decision{Tree: TreeUnauthenticated, Instance: r.instance, InitialRoute: landingRoute(s)}
}

// landingRoute is where a forced reset goes. A patient with an active patient
// session lands on the patient home instead of the welcome screen.
func landingRoute(s session.Snapshot) Route {
	if s.Patient != nil {
		return RoutePatientHome
	}
	return RouteWelcome
}

func (r *Reconciler) decide(d Decision) {
	r.mu.Lock()
	if r.decided && r.current.sameMount(d) {
		r.current.InitialRoute = d.InitialRoute
		r.mu.Unlock()
		return
	}
	r.current = d
	r.decided = true
	r.mu.Unlock()

	r.logger.Info("Mounting navigation tree", "tree", d.Tree.String(), "instance", d.Instance)
	if r.onDecision != nil {
		r.onDecision(d)
	}
}

func (r *Reconciler) scheduleReset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelResetLocked()
	gen := r.gen
	r.timer = time.AfterFunc(r.delay, func() { r.fireReset(gen) })
}

// cancelResetLocked must be called with r.mu held. Bumping gen also discards a
// reset whose timer already fired.
func (r *Reconciler) cancelResetLocked() {
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Reconciler) stale(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen != r.gen
}

func (r *Reconciler) fireReset(gen uint64) {
	if r.stale(gen) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.readyTimeout)
	defer cancel()
	if err := r.gateway.WaitReady(ctx); err != nil {
		r.logger.Warn("Skipping navigation reset, navigator not ready", "error", err)
		return
	}

	// The session may have moved on during the delay.
	snap := r.session.Snapshot()
	state := r.effective(snap, false)
	if state != session.StateAnonymous && state != session.StateTwoFactorPending {
		r.logger.Debug("Discarding stale navigation reset", "state", state.String())
		return
	}

	route, ok := r.gateway.CurrentRoute()
	if !ok {
		return
	}
	landing := landingRoute(snap)
	switch {
	case route == landing || route == RouteRegister:
		return
	case state == session.StateTwoFactorPending && (route == RouteLogin || route == RouteTwoFactor):
		return
	}

	if r.stale(gen) {
		return
	}
	if err := r.gateway.resetTo(landing); err != nil {
		r.logger.Warn("Navigation reset failed", "error", err)
		return
	}
	r.mu.Lock()
	r.resets++
	r.mu.Unlock()
	r.logger.Info("Navigation reset to landing route", "from", string(route), "to", string(landing))
}
