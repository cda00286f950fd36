package app

import (
	"time"

	"github.com/dev-catena/lacos-sub000/internal/models"
	"github.com/dev-catena/lacos-sub000/internal/router"
)

// UserView is the part of the identity that is safe to print.
type UserView struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Profile models.ProfileKind `json:"profile,omitempty"`
}

// PatientView describes an active patient session.
type PatientView struct {
	GroupID   string    `json:"group_id"`
	GroupName string    `json:"group_name"`
	Since     time.Time `json:"since"`
}

// StateView is the document served by the state endpoint and printed by the
// status commands. It never carries the token or the saved password.
type StateView struct {
	State             string       `json:"state"`
	Signed            bool         `json:"signed"`
	User              *UserView    `json:"user,omitempty"`
	Tree              router.Tree  `json:"tree"`
	TreeInstance      int          `json:"tree_instance"`
	CurrentRoute      router.Route `json:"current_route,omitempty"`
	PendingInvite     string       `json:"pending_invite,omitempty"`
	ChallengeMethod   string       `json:"challenge_method,omitempty"`
	RegistrationField string       `json:"registration_field,omitempty"`
	Patient           *PatientView `json:"patient,omitempty"`
}

// State returns a printable view of the running core.
func (a *App) State() StateView {
	snap := a.Session.Snapshot()
	decision := a.Reconciler.Decision()

	view := StateView{
		State:        snap.State.String(),
		Signed:       snap.Signed(),
		Tree:         decision.Tree,
		TreeInstance: decision.Instance,
	}
	if snap.User != nil {
		view.User = &UserView{
			ID:      string(snap.User.ID),
			Name:    snap.User.Name,
			Email:   snap.User.Email,
			Profile: snap.User.Profile,
		}
	}
	if route, ok := a.Gateway.CurrentRoute(); ok {
		view.CurrentRoute = route
	}
	if code, ok := a.Queue.Pending(); ok {
		view.PendingInvite = code
	}
	if snap.Challenge != nil {
		view.ChallengeMethod = snap.Challenge.Method
		if view.ChallengeMethod == "" {
			view.ChallengeMethod = "e-mail"
		}
	}
	if snap.Registration != nil && snap.Registration.Error != nil {
		view.RegistrationField = snap.Registration.Error.Field
	}
	if snap.Patient != nil {
		view.Patient = &PatientView{
			GroupID:   snap.Patient.GroupID,
			GroupName: snap.Patient.GroupName,
			Since:     snap.Patient.LoginTime,
		}
	}
	return view
}
