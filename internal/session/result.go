package session

import (
	"errors"

	"github.com/dev-catena/lacos-sub000/internal/utils"
)

var (
	// ErrNoChallenge is returned when a code is submitted with no challenge
	// outstanding for the identifier.
	ErrNoChallenge = errors.New("no two-factor challenge is pending")
	// ErrChallengeSuperseded is returned when a resend replaced the challenge
	// while its verification was in flight.
	ErrChallengeSuperseded = errors.New("two-factor challenge was replaced")
	// ErrNotSigned is returned by operations that need a session.
	ErrNotSigned = errors.New("not signed in")
	// ErrIncompleteSession is returned when the backend replies success
	// without both an identity and a token.
	ErrIncompleteSession = errors.New("backend returned an incomplete session")
)

// Outcome classifies the result of a controller operation.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTwoFactorRequired
	OutcomeValidationError
	OutcomeFailed
	OutcomeApprovalPending
	OutcomeActivationRequired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTwoFactorRequired:
		return "two_factor_required"
	case OutcomeValidationError:
		return "validation_error"
	case OutcomeApprovalPending:
		return "approval_pending"
	case OutcomeActivationRequired:
		return "activation_required"
	default:
		return "failed"
	}
}

// Result is what every operation returns instead of a raw backend error.
type Result struct {
	Outcome    Outcome
	Message    string
	Challenge  *Challenge
	Validation *utils.ValidationError
	// Retryable is set when repeating the same call may succeed.
	Retryable bool
	Err       error
}

// OK reports a plain success.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

func failed(err error, message string, retryable bool) Result {
	return Result{Outcome: OutcomeFailed, Err: err, Message: message, Retryable: retryable}
}

// userMessage picks the text shown to the user for a backend failure.
func userMessage(err error) string {
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// transient reports failures that are not a definitive rejection.
func transient(err error) bool {
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == 429
	}
	return true
}
