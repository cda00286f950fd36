package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/dev-catena/lacos-sub000/internal/models"
	"github.com/dev-catena/lacos-sub000/internal/notify"
	"github.com/dev-catena/lacos-sub000/internal/storage"
	"github.com/dev-catena/lacos-sub000/internal/utils"
)

const tracerName = "github.com/dev-catena/lacos-sub000/internal/session"

// Backend is the subset of the backend API the controller drives.
type Backend interface {
	Login(ctx context.Context, identifier, secret string) (*models.LoginResponse, error)
	VerifyTwoFactor(ctx context.Context, identifier, code string) (*models.LoginResponse, error)
	Register(ctx context.Context, payload models.RegisterPayload) (*models.RegisterResponse, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, token string) (*models.User, error)
	RedeemPatientCode(ctx context.Context, code string) (*models.PatientJoinResponse, error)
}

// Backend error tags returned by the login endpoint.
const (
	codeDoctorPendingApproval = "doctor_pending_approval"
	codePendingActivation     = "pending_activation"
)

// Options configures a Controller. Backend and Store are required.
type Options struct {
	Backend   Backend
	Store     storage.Store
	Notifier  notify.Notifier
	Localizer *notify.Localizer
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Now       func() time.Time
}

// Controller is the only writer of Session, Two-Factor Challenge and
// Registration state. Each kind of action is serialized on its own mutex;
// unrelated actions may interleave and the last completion wins.
type Controller struct {
	backend  Backend
	store    storage.Store
	notifier notify.Notifier
	loc      *notify.Localizer
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	// emitMu orders state changes and their delivery to observers.
	emitMu sync.Mutex
	mu     sync.RWMutex
	snap   Snapshot

	obsMu     sync.Mutex
	observers map[int]func(Transition)
	nextObs   int

	bootstrapMu sync.Mutex
	signInMu    sync.Mutex
	twoFactorMu sync.Mutex
	signUpMu    sync.Mutex
	patientMu   sync.Mutex
	signOut     singleflight.Group
}

// New creates a controller in the loading state.
func New(opts Options) *Controller {
	c := &Controller{
		backend:   opts.Backend,
		store:     opts.Store,
		notifier:  opts.Notifier,
		loc:       opts.Localizer,
		logger:    opts.Logger,
		tracer:    opts.Tracer,
		now:       opts.Now,
		snap:      Snapshot{State: StateLoading},
		observers: make(map[int]func(Transition)),
	}
	if c.notifier == nil {
		c.notifier = notify.Discard
	}
	if c.loc == nil {
		c.loc = notify.NewLocalizer("")
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "session")
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Subscribe registers fn for every state change. Observers run synchronously
// in change order and must not call mutating controller operations inline.
func (c *Controller) Subscribe(fn func(Transition)) (unsubscribe func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.obsMu.Lock()
			delete(c.observers, id)
			c.obsMu.Unlock()
		})
	}
}

// update applies mutate to the state. mutate returns false to abort. Observers
// are called only when something changed.
func (c *Controller) update(mutate func(s *Snapshot) bool) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	from := c.snap
	next := c.snap
	if !mutate(&next) {
		c.mu.Unlock()
		return false
	}
	c.snap = next
	c.mu.Unlock()

	if from.equal(next) {
		return true
	}
	if from.State != next.State {
		c.logger.Info("Session state changed", "from", from.State.String(), "to", next.State.String())
	}

	c.obsMu.Lock()
	fns := make([]func(Transition), 0, len(c.observers))
	for i := 0; i < c.nextObs; i++ {
		if fn, ok := c.observers[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.obsMu.Unlock()

	tr := Transition{From: from, To: next}
	for _, fn := range fns {
		fn(tr)
	}
	return true
}

func (c *Controller) emit(ctx context.Context, kind notify.Kind, key string, args ...any) notify.Event {
	ev := c.loc.Event(kind, key, args...)
	c.notifier.Notify(ctx, ev)
	return ev
}

func (c *Controller) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "session."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, res Result) {
	span.SetAttributes(attribute.String("session.outcome", res.Outcome.String()))
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	span.End()
}

// Bootstrap loads the persisted session and revalidates it against the
// backend. Any revalidation failure signs out locally. It leaves the loading
// state in every case.
func (c *Controller) Bootstrap(ctx context.Context) Snapshot {
	c.bootstrapMu.Lock()
	defer c.bootstrapMu.Unlock()

	ctx, span := c.startSpan(ctx, "Bootstrap")
	defer span.End()

	if c.Snapshot().State != StateLoading {
		return c.Snapshot()
	}

	patient, err := c.loadPatient(ctx)
	if err != nil {
		c.logger.Warn("Discarding unreadable patient session", "error", err)
		_ = c.store.Remove(ctx, storage.KeyPatientSession)
	}

	user, token, err := c.loadSession(ctx)
	switch {
	case err != nil:
		c.logger.Warn("Stored session is unreadable, clearing it", "error", err)
		c.clearStored(ctx)
		c.setAnonymous(patient)
		return c.Snapshot()
	case user == nil:
		c.setAnonymous(patient)
		return c.Snapshot()
	}

	fresh, err := c.backend.Profile(ctx, token)
	if err != nil {
		span.RecordError(err)
		if !utils.IsAuthError(err) {
			c.bestEffortLogout(ctx, token)
		}
		c.logger.Info("Stored session failed revalidation, signing out", "user_id", string(user.ID), "error", err)
		c.clearStored(ctx)
		c.setAnonymous(nil)
		_ = c.store.Remove(ctx, storage.KeyPatientSession)
		return c.Snapshot()
	}
	if fresh == nil || fresh.ID == "" {
		fresh = user
	}
	if err := c.persistUser(ctx, fresh); err != nil {
		c.logger.Warn("Failed to refresh stored user", "error", err)
	}

	c.update(func(s *Snapshot) bool {
		*s = Snapshot{State: StateAuthenticated, User: fresh, Token: token, Patient: patient}
		return true
	})
	span.SetAttributes(attribute.String("session.state", StateAuthenticated.String()))
	return c.Snapshot()
}

func (c *Controller) setAnonymous(patient *models.PatientSession) {
	c.update(func(s *Snapshot) bool {
		*s = Snapshot{State: StateAnonymous, Patient: patient}
		return true
	})
}

// SignIn exchanges credentials for a session or a two-factor challenge.
func (c *Controller) SignIn(ctx context.Context, identifier, secret string) Result {
	c.signInMu.Lock()
	defer c.signInMu.Unlock()

	ctx, span := c.startSpan(ctx, "SignIn")
	res := c.signIn(ctx, strings.TrimSpace(identifier), secret)
	endSpan(span, res)
	return res
}

func (c *Controller) signIn(ctx context.Context, identifier, secret string) Result {
	if err := utils.ValidateRequired(identifier, "login"); err != nil {
		ev := c.emit(ctx, notify.Error, notify.KeySignInFailed, err.Error())
		return failed(err, ev.Detail, true)
	}
	if err := utils.ValidateRequired(secret, "password"); err != nil {
		ev := c.emit(ctx, notify.Error, notify.KeySignInFailed, err.Error())
		return failed(err, ev.Detail, true)
	}

	resp, err := c.backend.Login(ctx, identifier, secret)
	if err != nil {
		switch utils.ErrorCode(err) {
		case codeDoctorPendingApproval:
			ev := c.emit(ctx, notify.Info, notify.KeyApprovalPending)
			return Result{Outcome: OutcomeApprovalPending, Message: ev.Detail, Err: err}
		case codePendingActivation:
			ev := c.emit(ctx, notify.Warning, notify.KeyActivationRequired)
			return Result{Outcome: OutcomeActivationRequired, Message: ev.Detail, Err: err}
		}
		c.logger.Warn("Sign-in failed", "error", err)
		msg := userMessage(err)
		c.emit(ctx, notify.Error, notify.KeySignInFailed, msg)
		return failed(err, msg, transient(err))
	}

	if resp.RequiresTwoFactor {
		ch := &Challenge{
			ID:         uuid.New(),
			Identifier: identifier,
			Method:     resp.Method,
			IssuedAt:   c.now(),
		}
		c.clearStored(ctx)
		c.update(func(s *Snapshot) bool {
			*s = Snapshot{State: StateTwoFactorPending, Challenge: ch, Patient: s.Patient}
			return true
		})
		method := resp.Method
		if method == "" {
			method = "e-mail"
		}
		ev := c.emit(ctx, notify.Info, notify.KeyTwoFactorSent, method)
		return Result{Outcome: OutcomeTwoFactorRequired, Challenge: ch, Message: ev.Detail}
	}

	if err := c.commit(ctx, resp.User, resp.Token, nil); err != nil {
		msg := userMessage(err)
		c.emit(ctx, notify.Error, notify.KeySignInFailed, msg)
		return failed(err, msg, true)
	}
	return Result{Outcome: OutcomeSuccess}
}

// CompleteTwoFactor submits the code for the outstanding challenge. A failure
// leaves the challenge in place so the user can try again.
func (c *Controller) CompleteTwoFactor(ctx context.Context, identifier, code string) Result {
	c.twoFactorMu.Lock()
	defer c.twoFactorMu.Unlock()

	ctx, span := c.startSpan(ctx, "CompleteTwoFactor")
	res := c.completeTwoFactor(ctx, strings.TrimSpace(identifier), code)
	endSpan(span, res)
	return res
}

func (c *Controller) completeTwoFactor(ctx context.Context, identifier, code string) Result {
	snap := c.Snapshot()
	ch := snap.Challenge
	if snap.State != StateTwoFactorPending || ch == nil {
		return failed(ErrNoChallenge, ErrNoChallenge.Error(), false)
	}
	if identifier == "" {
		identifier = ch.Identifier
	}
	if !strings.EqualFold(identifier, ch.Identifier) {
		return failed(ErrNoChallenge, ErrNoChallenge.Error(), false)
	}

	normalized, err := utils.NormalizeTwoFactorCode(code)
	if err != nil {
		ev := c.emit(ctx, notify.Error, notify.KeyTwoFactorInvalid)
		return failed(err, ev.Detail, true)
	}

	resp, err := c.backend.VerifyTwoFactor(ctx, ch.Identifier, normalized)
	if err == nil && (resp == nil || resp.User == nil || resp.Token == "") {
		err = ErrIncompleteSession
	}
	if err != nil {
		c.logger.Info("Two-factor verification failed", "error", err)
		ev := c.emit(ctx, notify.Error, notify.KeyTwoFactorInvalid)
		return failed(err, ev.Detail, true)
	}

	stillCurrent := func(s Snapshot) bool {
		return s.State == StateTwoFactorPending && s.Challenge != nil && s.Challenge.ID == ch.ID
	}
	if err := c.commit(ctx, resp.User, resp.Token, stillCurrent); err != nil {
		if errors.Is(err, ErrChallengeSuperseded) {
			return failed(err, err.Error(), true)
		}
		msg := userMessage(err)
		c.emit(ctx, notify.Error, notify.KeySignInFailed, msg)
		return failed(err, msg, true)
	}
	return Result{Outcome: OutcomeSuccess}
}

// CancelTwoFactor drops the outstanding challenge.
func (c *Controller) CancelTwoFactor() {
	c.update(func(s *Snapshot) bool {
		if s.State != StateTwoFactorPending {
			return false
		}
		*s = Snapshot{State: StateAnonymous, Patient: s.Patient}
		return true
	})
}

// commit persists a full session and moves to authenticated. guard, when set,
// must still hold at the moment of the transition; otherwise the persisted
// credentials are rolled back.
func (c *Controller) commit(ctx context.Context, user *models.User, token string, guard func(Snapshot) bool) error {
	if user == nil || token == "" {
		return ErrIncompleteSession
	}
	if err := c.persistUser(ctx, user); err != nil {
		c.clearStored(ctx)
		return err
	}
	if err := c.store.Set(ctx, storage.KeyToken, token); err != nil {
		c.clearStored(ctx)
		return fmt.Errorf("persist token: %w", err)
	}

	applied := c.update(func(s *Snapshot) bool {
		if guard != nil && !guard(*s) {
			return false
		}
		*s = Snapshot{State: StateAuthenticated, User: user, Token: token, Patient: s.Patient}
		return true
	})
	if !applied {
		c.clearStored(ctx)
		return ErrChallengeSuperseded
	}
	c.logger.Info("Signed in", "user_id", string(user.ID), "profile", string(user.Profile))
	return nil
}

// SignOut calls the backend logout best-effort and then clears the session
// and the patient session. Concurrent calls share one execution.
func (c *Controller) SignOut(ctx context.Context) {
	ctx, span := c.startSpan(ctx, "SignOut")
	defer span.End()

	_, _, shared := c.signOut.Do("sign-out", func() (any, error) {
		before := c.Snapshot()
		if before.Token != "" {
			c.bestEffortLogout(ctx, before.Token)
		}
		c.clearLocal(ctx)
		if before.State == StateAuthenticated {
			c.emit(ctx, notify.Success, notify.KeySignedOut)
		}
		return nil, nil
	})
	span.SetAttributes(attribute.Bool("session.shared", shared))
}

// Invalidate signs out locally without contacting the backend. Used when the
// backend has rejected the token.
func (c *Controller) Invalidate(ctx context.Context, reason string) {
	ctx, span := c.startSpan(ctx, "Invalidate", attribute.String("session.reason", reason))
	defer span.End()

	c.logger.Info("Session invalidated", "reason", reason)
	c.clearLocal(ctx)
}

// ReportError lets callers of other authenticated endpoints hand back their
// failures. An unauthorized failure ends the session; it reports whether it did.
func (c *Controller) ReportError(ctx context.Context, err error) bool {
	if !utils.IsAuthError(err) || !c.Snapshot().Signed() {
		return false
	}
	c.Invalidate(ctx, "unauthorized")
	return true
}

func (c *Controller) bestEffortLogout(ctx context.Context, token string) {
	// The logout must finish even when the caller is going away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := c.backend.Logout(ctx, token); err != nil {
		c.logger.Warn("Backend logout failed, clearing local session anyway", "error", err)
	}
}

func (c *Controller) clearLocal(ctx context.Context) {
	c.clearStored(ctx)
	if err := c.store.Remove(ctx, storage.KeyPatientSession); err != nil {
		c.logger.Warn("Failed to clear patient session", "error", err)
	}
	c.update(func(s *Snapshot) bool {
		*s = Snapshot{State: StateAnonymous}
		return true
	})
}

func (c *Controller) clearStored(ctx context.Context) {
	if err := storage.RemoveAll(ctx, c.store, storage.KeyUser, storage.KeyToken, storage.KeyCurrentProfile); err != nil {
		c.logger.Warn("Failed to clear stored session", "error", err)
	}
}

// UpdateProfile merges patch into the signed-in user and persists it. It is
// a no-op without a session.
func (c *Controller) UpdateProfile(ctx context.Context, patch map[string]any) Result {
	ctx, span := c.startSpan(ctx, "UpdateProfile")
	res := c.updateProfile(ctx, patch)
	endSpan(span, res)
	return res
}

func (c *Controller) updateProfile(ctx context.Context, patch map[string]any) Result {
	snap := c.Snapshot()
	if snap.State != StateAuthenticated || snap.User == nil {
		return failed(ErrNotSigned, ErrNotSigned.Error(), false)
	}

	merged, err := snap.User.Merge(patch)
	if err != nil {
		return failed(err, err.Error(), false)
	}
	if err := c.persistUser(ctx, &merged); err != nil {
		return failed(err, err.Error(), true)
	}

	applied := c.update(func(s *Snapshot) bool {
		if s.State != StateAuthenticated || s.Token != snap.Token {
			return false
		}
		s.User = &merged
		return true
	})
	if !applied {
		return failed(ErrNotSigned, ErrNotSigned.Error(), false)
	}
	c.emit(ctx, notify.Success, notify.KeyProfileUpdated)
	return Result{Outcome: OutcomeSuccess}
}

func (c *Controller) persistUser(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := c.store.Set(ctx, storage.KeyUser, string(data)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	if user.Profile != "" {
		if err := c.store.Set(ctx, storage.KeyCurrentProfile, string(user.Profile)); err != nil {
			return fmt.Errorf("persist profile: %w", err)
		}
	}
	return nil
}

// loadSession returns a nil user when nothing is stored. A user without a
// token, or a token without a user, is reported as an error.
func (c *Controller) loadSession(ctx context.Context) (*models.User, string, error) {
	rawUser, hasUser, err := c.store.Get(ctx, storage.KeyUser)
	if err != nil {
		return nil, "", err
	}
	token, hasToken, err := c.store.Get(ctx, storage.KeyToken)
	if err != nil {
		return nil, "", err
	}
	if !hasUser && !hasToken {
		return nil, "", nil
	}
	if !hasUser || !hasToken || token == "" {
		return nil, "", errors.New("stored session is partial")
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, "", fmt.Errorf("decode stored user: %w", err)
	}
	return &user, token, nil
}
