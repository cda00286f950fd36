package router

import (
	"fmt"
	"sync"
)

// Call records one imperative navigation call.
type Call struct {
	Op     string         `json:"op"`
	Route  Route          `json:"route"`
	Params map[string]any `json:"params,omitempty"`
}

// HeadlessNavigator is an in-memory navigation stack used by the command-line
// host and by tests.
type HeadlessNavigator struct {
	mu      sync.Mutex
	tree    Tree
	stack   []Route
	params  map[string]any
	calls   []Call
	mounted int
}

// NewHeadlessNavigator creates an empty navigator.
func NewHeadlessNavigator() *HeadlessNavigator {
	return &HeadlessNavigator{}
}

// Mount replaces the whole stack with a fresh tree.
func (n *HeadlessNavigator) Mount(d Decision) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tree = d.Tree
	n.stack = nil
	n.params = nil
	if d.InitialRoute != "" {
		n.stack = []Route{d.InitialRoute}
	}
	n.mounted++
}

// Push simulates the user opening a screen.
func (n *HeadlessNavigator) Push(route Route) {
	n.mu.Lock()
	n.stack = append(n.stack, route)
	n.mu.Unlock()
}

func (n *HeadlessNavigator) CurrentRoute() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 0 {
		return ""
	}
	return n.stack[len(n.stack)-1]
}

func (n *HeadlessNavigator) ResetTo(route Route) error {
	if route == "" {
		return fmt.Errorf("reset needs a route")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = []Route{route}
	n.params = nil
	n.calls = append(n.calls, Call{Op: "reset", Route: route})
	return nil
}

func (n *HeadlessNavigator) Navigate(route Route, params map[string]any) error {
	if route == "" {
		return fmt.Errorf("navigate needs a route")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = append(n.stack, route)
	n.params = params
	n.calls = append(n.calls, Call{Op: "navigate", Route: route, Params: params})
	return nil
}

// Calls returns the recorded reset and navigate calls.
func (n *HeadlessNavigator) Calls() []Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Call, len(n.calls))
	copy(out, n.calls)
	return out
}

// Stack returns a copy of the route stack, bottom first.
func (n *HeadlessNavigator) Stack() []Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Route, len(n.stack))
	copy(out, n.stack)
	return out
}

// Params returns the params of the last navigate call on the current stack.
func (n *HeadlessNavigator) Params() map[string]any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.params
}

// Tree returns the mounted tree and how many mounts happened.
func (n *HeadlessNavigator) Tree() (Tree, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tree, n.mounted
}
