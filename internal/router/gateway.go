package router

import (
	"context"
	"errors"
	"sync"
)

// ErrNotReady is returned while no navigator is attached.
var ErrNotReady = errors.New("navigation is not ready")

// Navigator is the imperative handle of a mounted navigation container.
type Navigator interface {
	CurrentRoute() Route
	ResetTo(route Route) error
	Navigate(route Route, params map[string]any) error
}

// Dispatcher is the navigation capability handed to the invitation queue.
type Dispatcher interface {
	WaitReady(ctx context.Context) error
	Navigate(route Route, params map[string]any) error
}

// Gateway owns the live navigator. Only the reconciler in this package can
// reset history; other callers get Navigate through Dispatcher.
type Gateway struct {
	mu    sync.RWMutex
	nav   Navigator
	ready chan struct{}
	once  sync.Once
}

// NewGateway creates a gateway with no navigator.
func NewGateway() *Gateway {
	return &Gateway{ready: make(chan struct{})}
}

// Attach installs the navigator and resolves readiness the first time.
func (g *Gateway) Attach(nav Navigator) {
	g.mu.Lock()
	g.nav = nav
	g.mu.Unlock()
	if nav != nil {
		g.once.Do(func() { close(g.ready) })
	}
}

// Detach removes the navigator, e.g. while a tree is being rebuilt.
func (g *Gateway) Detach() {
	g.mu.Lock()
	g.nav = nil
	g.mu.Unlock()
}

// Ready reports whether a navigator is attached.
func (g *Gateway) Ready() bool {
	return g.navigator() != nil
}

// WaitReady blocks until a navigator has been attached at least once and is
// attached now, or ctx ends.
func (g *Gateway) WaitReady(ctx context.Context) error {
	select {
	case <-g.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	if g.navigator() == nil {
		return ErrNotReady
	}
	return nil
}

// CurrentRoute returns the focused route.
func (g *Gateway) CurrentRoute() (Route, bool) {
	nav := g.navigator()
	if nav == nil {
		return "", false
	}
	return nav.CurrentRoute(), true
}

// Navigate pushes route onto the live navigator.
func (g *Gateway) Navigate(route Route, params map[string]any) error {
	nav := g.navigator()
	if nav == nil {
		return ErrNotReady
	}
	return nav.Navigate(route, params)
}

func (g *Gateway) resetTo(route Route) error {
	nav := g.navigator()
	if nav == nil {
		return ErrNotReady
	}
	return nav.ResetTo(route)
}

func (g *Gateway) navigator() Navigator {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nav
}
