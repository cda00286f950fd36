// Package router decides which navigation tree is mounted and keeps the live
// navigation state consistent with the session.
package router

// Route names a screen.
type Route string

const (
	RouteWelcome     Route = "Welcome"
	RouteLogin       Route = "Login"
	RouteRegister    Route = "Register"
	RouteTwoFactor   Route = "TwoFactor"
	RoutePatientHome Route = "PatientHome"
	RouteHome        Route = "Home"
	RouteGroups      Route = "Groups"
)

// Tree is a top-level navigation tree.
type Tree int

const (
	// TreeNone is the neutral waiting view shown while loading.
	TreeNone Tree = iota
	TreeUnauthenticated
	TreeAuthenticated
)

func (t Tree) String() string {
	switch t {
	case TreeUnauthenticated:
		return "unauthenticated"
	case TreeAuthenticated:
		return "authenticated"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tree) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Decision is what the host must mount. A change of Instance for the same
// tree means the tree must be rebuilt from scratch.
type Decision struct {
	Tree         Tree  `json:"tree"`
	Instance     int   `json:"instance"`
	InitialRoute Route `json:"initial_route,omitempty"`
}

func (d Decision) sameMount(o Decision) bool {
	return d.Tree == o.Tree && d.Instance == o.Instance
}
