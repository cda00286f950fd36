package invite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-catena/lacos-sub000/internal/deeplink"
	"github.com/dev-catena/lacos-sub000/internal/logging"
	"github.com/dev-catena/lacos-sub000/internal/notify"
	"github.com/dev-catena/lacos-sub000/internal/router"
)

func newQueue(t *testing.T, gw *router.Gateway, events *notify.Recorder) *Queue {
	t.Helper()
	q := New(Options{
		Dispatcher: gw,
		Notifier:   events,
		Localizer:  notify.NewLocalizer("en"),
		Attempts:   4,
		Interval:   5 * time.Millisecond,
		Logger:     logging.Discard(),
	})
	t.Cleanup(q.Close)
	return q
}

func readyNavigator() (*router.Gateway, *router.HeadlessNavigator) {
	gw := router.NewGateway()
	nav := router.NewHeadlessNavigator()
	nav.Mount(router.Decision{Tree: router.TreeAuthenticated, InitialRoute: router.RouteHome})
	gw.Attach(nav)
	return gw, nav
}

func navigations(nav *router.HeadlessNavigator) []router.Call {
	var out []router.Call
	for _, c := range nav.Calls() {
		if c.Op == "navigate" {
			out = append(out, c)
		}
	}
	return out
}

func TestLastWriteWins(t *testing.T) {
	gw, nav := readyNavigator()
	q := newQueue(t, gw, &notify.Recorder{})

	q.Enqueue("AAA111")
	q.Enqueue("BBB222")
	code, ok := q.Pending()
	require.True(t, ok)
	assert.Equal(t, "BBB222", code)

	q.OnAuthenticated(context.Background())
	q.Wait()

	calls := navigations(nav)
	require.Len(t, calls, 1)
	assert.Equal(t, router.RouteGroups, calls[0].Route)
	assert.Equal(t, "BBB222", calls[0].Params["inviteCode"])
	_, ok = q.Pending()
	assert.False(t, ok)

	q.OnAuthenticated(context.Background())
	q.Wait()
	assert.Len(t, navigations(nav), 1)
}

func TestDeepLinkBeforeSignIn(t *testing.T) {
	gw, nav := readyNavigator()
	events := &notify.Recorder{}
	q := newQueue(t, gw, events)
	resolver := deeplink.NewResolver(deeplink.Rules{Scheme: "lacos", Hosts: []string{"lacosapp.com"}})

	code, ok := resolver.Resolve("lacos://join?code=Z9Z9Z9")
	require.True(t, ok)
	assert.False(t, q.Offer(context.Background(), code, true))
	assert.Equal(t, []string{notify.KeyInviteLoginRequired}, events.Keys())
	assert.Contains(t, events.Events()[0].Detail, "Z9Z9Z9")
	assert.Empty(t, navigations(nav))

	q.OnAuthenticated(context.Background())
	assert.Eventually(t, func() bool { return len(navigations(nav)) == 1 }, time.Second, time.Millisecond)
	q.Wait()

	call := navigations(nav)[0]
	assert.Equal(t, router.RouteGroups, call.Route)
	assert.Equal(t, "Z9Z9Z9", call.Params["inviteCode"])
	assert.Equal(t, true, call.Params["openJoinModal"])
}

func TestOfferWhileAuthenticatedDispatchesImmediately(t *testing.T) {
	gw, nav := readyNavigator()
	events := &notify.Recorder{}
	q := newQueue(t, gw, events)
	q.OnAuthenticated(context.Background())

	assert.True(t, q.Offer(context.Background(), "ABC123", true))
	q.Wait()

	require.Len(t, navigations(nav), 1)
	_, ok := q.Pending()
	assert.False(t, ok)
	assert.Empty(t, events.Keys())
}

func TestQuietOfferDoesNotRemind(t *testing.T) {
	gw, _ := readyNavigator()
	events := &notify.Recorder{}
	q := newQueue(t, gw, events)

	q.Offer(context.Background(), "ABC123", false)
	assert.Empty(t, events.Keys())
	code, _ := q.Pending()
	assert.Equal(t, "ABC123", code)
}

func TestNavigatorNeverReadyDropsCode(t *testing.T) {
	gw := router.NewGateway()
	events := &notify.Recorder{}
	q := newQueue(t, gw, events)

	q.Enqueue("ABC123")
	q.OnAuthenticated(context.Background())

	done := make(chan struct{})
	go func() {
		q.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery did not give up")
	}

	_, ok := q.Pending()
	assert.False(t, ok)
	assert.Equal(t, []string{notify.KeyInviteUndeliverable}, events.Keys())
}

func TestNavigatorReadyLate(t *testing.T) {
	gw := router.NewGateway()
	nav := router.NewHeadlessNavigator()
	q := New(Options{
		Dispatcher: gw,
		Attempts:   20,
		Interval:   5 * time.Millisecond,
		Logger:     logging.Discard(),
	})
	t.Cleanup(q.Close)

	q.Enqueue("LATE01")
	q.OnAuthenticated(context.Background())
	time.Sleep(12 * time.Millisecond)
	gw.Attach(nav)
	q.Wait()

	calls := navigations(nav)
	require.Len(t, calls, 1)
	assert.Equal(t, "LATE01", calls[0].Params["inviteCode"])
}

func TestSignedOutClearsPending(t *testing.T) {
	gw := router.NewGateway()
	nav := router.NewHeadlessNavigator()
	events := &notify.Recorder{}
	q := newQueue(t, gw, events)

	q.Enqueue("ABC123")
	q.OnSignedOut()
	_, ok := q.Pending()
	assert.False(t, ok)

	q.OnAuthenticated(context.Background())
	q.Offer(context.Background(), "XYZ789", true)
	q.OnSignedOut()
	gw.Attach(nav)
	q.Wait()

	assert.Empty(t, navigations(nav))
	assert.Empty(t, events.Keys())
}
