package router

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-catena/lacos-sub000/internal/logging"
	"github.com/dev-catena/lacos-sub000/internal/models"
	"github.com/dev-catena/lacos-sub000/internal/session"
)

const testDelay = 10 * time.Millisecond

type fakeSession struct {
	mu   sync.Mutex
	snap session.Snapshot
}

func (f *fakeSession) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSession) set(s session.Snapshot) {
	f.mu.Lock()
	f.snap = s
	f.mu.Unlock()
}

type fakeQueue struct {
	mu            sync.Mutex
	authenticated int
	signedOut     int
}

func (q *fakeQueue) OnAuthenticated(context.Context) {
	q.mu.Lock()
	q.authenticated++
	q.mu.Unlock()
}

func (q *fakeQueue) OnSignedOut() {
	q.mu.Lock()
	q.signedOut++
	q.mu.Unlock()
}

func (q *fakeQueue) counts() (int, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.authenticated, q.signedOut
}

type fixture struct {
	sess      *fakeSession
	queue     *fakeQueue
	nav       *HeadlessNavigator
	gateway   *Gateway
	rec       *Reconciler
	mu        sync.Mutex
	decisions []Decision
}

func newFixture(t *testing.T, attach bool) *fixture {
	t.Helper()
	f := &fixture{
		sess:    &fakeSession{snap: session.Snapshot{State: session.StateLoading}},
		queue:   &fakeQueue{},
		nav:     NewHeadlessNavigator(),
		gateway: NewGateway(),
	}
	if attach {
		f.gateway.Attach(f.nav)
	}
	f.rec = NewReconciler(ReconcilerOptions{
		Gateway:      f.gateway,
		Session:      f.sess,
		Queue:        f.queue,
		ResetDelay:   testDelay,
		ReadyTimeout: 200 * time.Millisecond,
		Logger:       logging.Discard(),
		OnDecision: func(d Decision) {
			f.mu.Lock()
			f.decisions = append(f.decisions, d)
			f.mu.Unlock()
			f.nav.Mount(d)
		},
	})
	t.Cleanup(f.rec.Close)
	return f
}

// move sets the session state and delivers the transition.
func (f *fixture) move(to session.Snapshot) {
	from := f.sess.Snapshot()
	f.sess.set(to)
	f.rec.Observe(session.Transition{From: from, To: to})
}

func (f *fixture) mounts() []Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Decision, len(f.decisions))
	copy(out, f.decisions)
	return out
}

func resets(nav *HeadlessNavigator) int {
	n := 0
	for _, c := range nav.Calls() {
		if c.Op == "reset" {
			n++
		}
	}
	return n
}

var (
	anonymous   = session.Snapshot{State: session.StateAnonymous}
	twoFactor   = session.Snapshot{State: session.StateTwoFactorPending, Challenge: &session.Challenge{Identifier: "user@x.com"}}
	registering = session.Snapshot{State: session.StateRegistering, Registration: &session.Registration{}}
	signedIn    = session.Snapshot{State: session.StateAuthenticated, User: &models.User{ID: "1"}, Token: "tok"}
)

func TestLoadingShowsNeutralTree(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()

	assert.Equal(t, TreeNone, f.rec.Decision().Tree)
	assert.Never(t, func() bool { return len(f.nav.Calls()) > 0 }, 5*testDelay, testDelay)
}

func TestAnonymousResetsToLanding(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(anonymous)
	require.Equal(t, TreeUnauthenticated, f.rec.Decision().Tree)

	f.nav.Push(RouteLogin)
	f.move(twoFactor)
	f.nav.Push(RouteGroups)
	f.move(anonymous)

	assert.Eventually(t, func() bool { return f.nav.CurrentRoute() == RouteWelcome }, time.Second, testDelay)
	assert.Equal(t, []Route{RouteWelcome}, f.nav.Stack())
	assert.Equal(t, 1, f.rec.Resets())
}

func TestResetIsNoOpAtLanding(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(anonymous)
	f.move(twoFactor)
	f.move(anonymous)

	assert.Equal(t, RouteWelcome, f.nav.CurrentRoute())
	assert.Never(t, func() bool { return resets(f.nav) > 0 }, 5*testDelay, testDelay)
}

func TestRegisterRouteIsNeverReset(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(anonymous)
	f.nav.Push(RouteRegister)

	// Registration screen open but no validation error yet.
	f.move(twoFactor)
	f.move(anonymous)
	assert.Never(t, func() bool { return resets(f.nav) > 0 }, 5*testDelay, testDelay)
	assert.Equal(t, RouteRegister, f.nav.CurrentRoute())
}

func TestRegisteringSuppressesPendingReset(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(anonymous)
	f.nav.Push(RouteLogin)
	f.nav.Push(RouteGroups)

	f.move(twoFactor)
	f.move(registering)

	assert.Never(t, func() bool { return resets(f.nav) > 0 }, 5*testDelay, testDelay)
	assert.Equal(t, TreeUnauthenticated, f.rec.Decision().Tree)
}

func TestStaleResetIsDiscarded(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(anonymous)
	f.nav.Push(RouteGroups)
	f.move(twoFactor)

	// State changes during the delay without the transition reaching us yet.
	f.sess.set(registering)

	assert.Never(t, func() bool { return resets(f.nav) > 0 }, 5*testDelay, testDelay)
}

func TestTwoFactorKeepsLoginScreens(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(anonymous)
	f.nav.Push(RouteLogin)
	f.nav.Push(RouteTwoFactor)

	f.move(twoFactor)
	assert.Never(t, func() bool { return resets(f.nav) > 0 }, 5*testDelay, testDelay)

	f.move(anonymous)
	assert.Eventually(t, func() bool { return f.nav.CurrentRoute() == RouteWelcome }, time.Second, testDelay)
}

func TestSignInAndSignOutTrees(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(anonymous)
	f.move(twoFactor)
	f.move(registering)
	f.move(anonymous)

	unauth := 0
	for _, d := range f.mounts() {
		if d.Tree == TreeUnauthenticated {
			unauth++
		}
	}
	assert.Equal(t, 1, unauth, "unauthenticated tree must be reused")

	f.move(signedIn)
	assert.Equal(t, Decision{Tree: TreeAuthenticated, InitialRoute: RouteHome}, f.rec.Decision())
	authCalls, _ := f.queue.counts()
	assert.Equal(t, 1, authCalls)

	f.move(anonymous)
	d := f.rec.Decision()
	assert.Equal(t, TreeUnauthenticated, d.Tree)
	assert.Equal(t, 1, d.Instance)
	_, signedOut := f.queue.counts()
	assert.Equal(t, 1, signedOut)

	mounts := f.mounts()
	assert.Equal(t, 4, len(mounts))
	assert.Equal(t, RouteWelcome, f.nav.CurrentRoute())
}

func TestLeavingSessionForAnyStateIsSignOut(t *testing.T) {
	tests := []struct {
		name string
		to   session.Snapshot
	}{
		{"new two-factor challenge", twoFactor},
		{"registration attempt", registering},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.rec.Evaluate()
			f.move(anonymous)
			f.move(signedIn)
			f.move(tt.to)

			d := f.rec.Decision()
			assert.Equal(t, TreeUnauthenticated, d.Tree)
			assert.Equal(t, 1, d.Instance)
			_, signedOut := f.queue.counts()
			assert.Equal(t, 1, signedOut)

			f.move(signedIn)
			authCalls, _ := f.queue.counts()
			assert.Equal(t, 2, authCalls)
		})
	}
}

func TestTwoFactorSignInTriggersDrain(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(anonymous)
	f.move(twoFactor)
	f.move(signedIn)

	authCalls, _ := f.queue.counts()
	assert.Equal(t, 1, authCalls)
}

func TestBootstrapIntoSessionTriggersDrain(t *testing.T) {
	f := newFixture(t, true)
	f.sess.set(signedIn)
	f.rec.Evaluate()

	assert.Equal(t, TreeAuthenticated, f.rec.Decision().Tree)
	authCalls, _ := f.queue.counts()
	assert.Equal(t, 1, authCalls)
}

func TestInconsistentSessionIsTreatedAsAnonymous(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(session.Snapshot{State: session.StateAuthenticated, Token: "tok"})

	assert.Equal(t, TreeUnauthenticated, f.rec.Decision().Tree)
	authCalls, _ := f.queue.counts()
	assert.Zero(t, authCalls)
}

func TestPatientLandsOnPatientHome(t *testing.T) {
	f := newFixture(t, true)
	f.rec.Evaluate()
	f.move(session.Snapshot{State: session.StateAnonymous, Patient: &models.PatientSession{GroupID: "3"}})

	assert.Equal(t, RoutePatientHome, f.nav.CurrentRoute())
}

func TestResetWaitsForNavigator(t *testing.T) {
	f := newFixture(t, false)
	f.rec.Evaluate()
	f.move(anonymous)
	f.nav.Push(RouteLogin)
	f.move(twoFactor)
	f.nav.Push(RouteGroups)
	f.move(anonymous)

	time.Sleep(3 * testDelay)
	assert.Zero(t, resets(f.nav))

	f.gateway.Attach(f.nav)
	assert.Eventually(t, func() bool { return resets(f.nav) == 1 }, time.Second, testDelay)
}

func TestGateway(t *testing.T) {
	g := NewGateway()
	assert.False(t, g.Ready())
	assert.ErrorIs(t, g.Navigate(RouteGroups, nil), ErrNotReady)
	_, ok := g.CurrentRoute()
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), testDelay)
	defer cancel()
	assert.ErrorIs(t, g.WaitReady(ctx), context.DeadlineExceeded)

	nav := NewHeadlessNavigator()
	nav.Mount(Decision{Tree: TreeAuthenticated, InitialRoute: RouteHome})
	g.Attach(nav)
	require.NoError(t, g.WaitReady(context.Background()))
	require.NoError(t, g.Navigate(RouteGroups, map[string]any{"inviteCode": "ABC123"}))
	route, ok := g.CurrentRoute()
	assert.True(t, ok)
	assert.Equal(t, RouteGroups, route)
	assert.Equal(t, "ABC123", nav.Params()["inviteCode"])

	g.Detach()
	assert.ErrorIs(t, g.WaitReady(context.Background()), ErrNotReady)
	g.Attach(nav)
	assert.True(t, g.Ready())
}
