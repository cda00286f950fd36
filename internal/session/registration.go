package session

import (
	"context"
	"strings"

	"github.com/dev-catena/lacos-sub000/internal/models"
	"github.com/dev-catena/lacos-sub000/internal/notify"
	"github.com/dev-catena/lacos-sub000/internal/storage"
	"github.com/dev-catena/lacos-sub000/internal/utils"
)

const statusPendingActivation = "pending_activation"

// SignUp submits the registration form. A classified validation error keeps
// the form and moves to registering; any other failure only notifies. Moving
// to registering ends an existing session, in memory and in storage.
func (c *Controller) SignUp(ctx context.Context, payload models.RegisterPayload) Result {
	c.signUpMu.Lock()
	defer c.signUpMu.Unlock()

	ctx, span := c.startSpan(ctx, "SignUp")
	res := c.signUp(ctx, payload)
	endSpan(span, res)
	return res
}

func (c *Controller) signUp(ctx context.Context, payload models.RegisterPayload) Result {
	resp, err := c.backend.Register(ctx, payload)
	if err != nil {
		if vErr, ok := utils.AsValidationError(err); ok {
			reg := &Registration{SavedForm: payload, Error: vErr}
			c.clearStored(ctx)
			c.update(func(s *Snapshot) bool {
				*s = Snapshot{State: StateRegistering, Registration: reg, Patient: s.Patient}
				return true
			})
			ev := c.validationEvent(vErr)
			c.notifier.Notify(ctx, ev)
			return Result{Outcome: OutcomeValidationError, Validation: vErr, Message: ev.Detail, Retryable: true, Err: err}
		}

		c.logger.Warn("Registration failed", "error", err)
		msg := userMessage(err)
		c.emit(ctx, notify.Error, notify.KeyRegisterFailed, msg)
		return failed(err, msg, transient(err))
	}

	if resp.PendingApproval() || resp.Status == statusPendingActivation {
		c.clearStored(ctx)
		c.update(func(s *Snapshot) bool {
			*s = Snapshot{State: StateAnonymous, Patient: s.Patient}
			return true
		})
		if resp.PendingApproval() {
			ev := c.emit(ctx, notify.Info, notify.KeyRegisterNeedsReview)
			return Result{Outcome: OutcomeApprovalPending, Message: ev.Detail}
		}
		ev := c.emit(ctx, notify.Warning, notify.KeyActivationRequired)
		return Result{Outcome: OutcomeActivationRequired, Message: ev.Detail}
	}

	if err := c.commit(ctx, resp.User, resp.Token, nil); err != nil {
		msg := userMessage(err)
		c.emit(ctx, notify.Error, notify.KeyRegisterFailed, msg)
		return failed(err, msg, true)
	}
	return Result{Outcome: OutcomeSuccess}
}

func (c *Controller) validationEvent(vErr *utils.ValidationError) notify.Event {
	var ev notify.Event
	switch vErr.Kind {
	case utils.DuplicateEmail:
		ev = c.loc.Event(notify.Error, notify.KeyDuplicateEmail)
	case utils.DuplicateTaxID:
		ev = c.loc.Event(notify.Error, notify.KeyDuplicateTaxID)
	case utils.DuplicateOther:
		ev = c.loc.Event(notify.Error, notify.KeyDuplicateOther, vErr.Message)
	default:
		ev = c.loc.Event(notify.Warning, notify.KeyFieldInvalid, vErr.Message)
	}
	ev.Modal = vErr.Kind.Modal()
	ev.Focus = vErr.Field
	return ev
}

// ClearRegistration leaves the registration flow explicitly.
func (c *Controller) ClearRegistration() {
	c.update(func(s *Snapshot) bool {
		if s.State != StateRegistering {
			return false
		}
		*s = Snapshot{State: StateAnonymous, Patient: s.Patient}
		return true
	})
}

// FieldCorrected tells the controller the user edited field. Editing a field
// named by the pending validation error ends the registering state.
func (c *Controller) FieldCorrected(field string) bool {
	field = strings.TrimSpace(field)
	return c.update(func(s *Snapshot) bool {
		if s.State != StateRegistering || s.Registration == nil || s.Registration.Error == nil {
			return false
		}
		vErr := s.Registration.Error
		if !strings.EqualFold(vErr.Field, field) {
			if _, listed := vErr.Fields[field]; !listed {
				return false
			}
		}
		*s = Snapshot{State: StateAnonymous, Patient: s.Patient}
		return true
	})
}

// SavedForm returns the last submitted registration form while registering.
func (c *Controller) SavedForm() (models.RegisterPayload, bool) {
	snap := c.Snapshot()
	if snap.State != StateRegistering || snap.Registration == nil {
		return models.RegisterPayload{}, false
	}
	return snap.Registration.SavedForm, true
}

func (c *Controller) loadPatient(ctx context.Context) (*models.PatientSession, error) {
	raw, ok, err := c.store.Get(ctx, storage.KeyPatientSession)
	if err != nil || !ok {
		return nil, err
	}
	return decodePatient(raw)
}
