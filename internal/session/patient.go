package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dev-catena/lacos-sub000/internal/models"
	"github.com/dev-catena/lacos-sub000/internal/notify"
	"github.com/dev-catena/lacos-sub000/internal/storage"
	"github.com/dev-catena/lacos-sub000/internal/utils"
)

// JoinPatient redeems a group join code for a patient session. The patient
// session is independent of the account session.
func (c *Controller) JoinPatient(ctx context.Context, code string) Result {
	c.patientMu.Lock()
	defer c.patientMu.Unlock()

	ctx, span := c.startSpan(ctx, "JoinPatient")
	res := c.joinPatient(ctx, code)
	endSpan(span, res)
	return res
}

func (c *Controller) joinPatient(ctx context.Context, code string) Result {
	code = utils.NormalizeInviteCode(code)
	if err := utils.ValidateInviteCode(code); err != nil {
		ev := c.emit(ctx, notify.Error, notify.KeyPatientJoinFailed, err.Error())
		return failed(err, ev.Detail, false)
	}

	resp, err := c.backend.RedeemPatientCode(ctx, code)
	if err != nil {
		msg := userMessage(err)
		c.emit(ctx, notify.Error, notify.KeyPatientJoinFailed, msg)
		return failed(err, msg, transient(err))
	}

	ps := &models.PatientSession{
		GroupID:         string(resp.Group.ID),
		GroupName:       resp.Group.Name,
		AccompaniedName: resp.Group.AccompaniedName,
		LoginTime:       c.now().UTC(),
	}
	data, err := json.Marshal(ps)
	if err != nil {
		return failed(err, err.Error(), false)
	}
	if err := c.store.Set(ctx, storage.KeyPatientSession, string(data)); err != nil {
		err = fmt.Errorf("persist patient session: %w", err)
		return failed(err, err.Error(), true)
	}

	c.update(func(s *Snapshot) bool {
		s.Patient = ps
		return true
	})
	c.logger.Info("Patient joined group", "group_id", ps.GroupID)
	c.emit(ctx, notify.Success, notify.KeyPatientJoined, ps.GroupName)
	return Result{Outcome: OutcomeSuccess}
}

// PatientSession returns the active patient session, if any.
func (c *Controller) PatientSession() (*models.PatientSession, bool) {
	ps := c.Snapshot().Patient
	return ps, ps != nil
}

// LeavePatient ends the patient session.
func (c *Controller) LeavePatient(ctx context.Context) error {
	c.patientMu.Lock()
	defer c.patientMu.Unlock()

	if err := c.store.Remove(ctx, storage.KeyPatientSession); err != nil {
		return fmt.Errorf("remove patient session: %w", err)
	}
	c.update(func(s *Snapshot) bool {
		s.Patient = nil
		return true
	})
	return nil
}

func decodePatient(raw string) (*models.PatientSession, error) {
	var ps models.PatientSession
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return nil, fmt.Errorf("decode patient session: %w", err)
	}
	if ps.GroupID == "" {
		return nil, fmt.Errorf("patient session has no group")
	}
	return &ps, nil
}
