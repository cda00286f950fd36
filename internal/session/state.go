// Package session owns the authentication state machine: who is signed in,
// any outstanding two-factor challenge, and a registration that stopped on a
// recoverable validation error.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dev-catena/lacos-sub000/internal/models"
	"github.com/dev-catena/lacos-sub000/internal/utils"
)

// State is the tagged session state. Only one state holds at a time.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateTwoFactorPending
	StateRegistering
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateTwoFactorPending:
		return "two_factor_pending"
	case StateRegistering:
		return "registering"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Challenge is an outstanding two-factor verification. A new sign-in that
// asks for a code again replaces it with a new ID.
type Challenge struct {
	ID         uuid.UUID `json:"id"`
	Identifier string    `json:"identifier"`
	Method     string    `json:"method,omitempty"`
	IssuedAt   time.Time `json:"issued_at"`
}

// Registration is kept while a sign-up sits on a recoverable validation error.
type Registration struct {
	SavedForm models.RegisterPayload `json:"saved_form"`
	Error     *utils.ValidationError `json:"error"`
}

// Snapshot is an immutable view of the controller state. Pointer fields are
// replaced, never mutated, so a snapshot can be shared freely.
type Snapshot struct {
	State        State                  `json:"state"`
	User         *models.User           `json:"user,omitempty"`
	Token        string                 `json:"-"`
	Challenge    *Challenge             `json:"challenge,omitempty"`
	Registration *Registration          `json:"registration,omitempty"`
	Patient      *models.PatientSession `json:"patient,omitempty"`
}

// Signed reports whether an identity is present.
func (s Snapshot) Signed() bool {
	return s.User != nil
}

// Registering reports whether a sign-up is waiting on a field correction.
func (s Snapshot) Registering() bool {
	return s.State == StateRegistering
}

// Session returns the identity and credential pair.
func (s Snapshot) Session() models.Session {
	return models.Session{User: s.User, Token: s.Token}
}

func (s Snapshot) equal(o Snapshot) bool {
	return s.State == o.State &&
		s.User == o.User &&
		s.Token == o.Token &&
		s.Challenge == o.Challenge &&
		s.Registration == o.Registration &&
		s.Patient == o.Patient
}

// Transition is delivered to observers after every change.
type Transition struct {
	From Snapshot
	To   Snapshot
}

// SignedIn reports a move from any non-authenticated state to authenticated.
func (t Transition) SignedIn() bool {
	return t.From.State != StateAuthenticated && t.To.State == StateAuthenticated
}

// SignedOut reports a move from authenticated to any other state.
func (t Transition) SignedOut() bool {
	return t.From.State == StateAuthenticated && t.To.State != StateAuthenticated
}
