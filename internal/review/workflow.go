// Package review runs the doctor-facing workflow: fetch a case by id, show
// its report, and send the doctor's verified reply to the patient.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/internal/notify"
	"github.com/JaimeStill/sgmr/pkg/metrics"
)

// State is a step of the review workflow.
//
// A review moves awaiting_case_id → fetching → displaying →
// awaiting_doctor_input → sending → done. Fetching halts with a *StageError
// for a missing or unknown id; sending returns to awaiting_doctor_input when
// the reply is incomplete or could not be delivered.
type State string

const (
	AwaitingCaseID      State = "awaiting_case_id"
	Fetching            State = "fetching"
	AwaitingDoctorInput State = "awaiting_doctor_input"
	Done                State = "done"
)

// StageError records the state a review halted in.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// HaltedIn returns the state carried by err, if any.
func HaltedIn(err error) (State, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.State, true
	}
	return "", false
}

// WarningIncomplete is shown when the doctor name or verified text is empty.
const WarningIncomplete = "Please fill in all fields before sending."

// Runtime bundles the dependencies the review workflow requires.
type Runtime struct {
	Cases    cases.System
	Notifier notify.Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// Reply is the doctor's verified feedback.
type Reply struct {
	Doctor string `json:"doctor"`
	Text   string `json:"text"`
}

// Result is the outcome of a review step.
type Result struct {
	State     State       `json:"state"`
	Case      *cases.Case `json:"case"`
	Warning   string      `json:"warning,omitempty"`
	Delivered bool        `json:"delivered"`
	Notice    string      `json:"notice,omitempty"`
}

// Fetch loads the case for display. An empty id halts in AwaitingCaseID with
// ErrMissingCaseID and an unknown id halts in Fetching with
// cases.ErrNotFound; neither is retried.
func Fetch(ctx context.Context, rt *Runtime, caseID string) (*Result, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, &StageError{State: AwaitingCaseID, Err: ErrMissingCaseID}
	}

	c, err := rt.Cases.Find(ctx, caseID)
	if err != nil {
		if !errors.Is(err, cases.ErrNotFound) {
			rt.Logger.Error("case lookup failed", "case_id", caseID, "error", err)
		}
		return nil, &StageError{State: Fetching, Err: err}
	}

	return &Result{State: AwaitingDoctorInput, Case: c}, nil
}

// Send delivers reply to the patient of caseID. The first successful reply
// is recorded on the case; later replies are still delivered.
func Send(ctx context.Context, rt *Runtime, caseID string, reply Reply) (*Result, error) {
	result, err := Fetch(ctx, rt, caseID)
	if err != nil {
		return nil, err
	}
	c := result.Case

	reply.Doctor = strings.Join(strings.Fields(reply.Doctor), " ")
	reply.Text = strings.TrimSpace(reply.Text)
	if reply.Doctor == "" || reply.Text == "" {
		result.Warning = WarningIncomplete
		return result, nil
	}

	msg := notify.VerifiedReply(c.PatientEmail, reply.Doctor, reply.Text)
	err = rt.Notifier.Notify(ctx, msg)
	metrics.IncrementNotification(notify.KindVerifiedReply, err)

	if err != nil {
		rt.Logger.Error("verified reply failed", "case_id", c.ID, "error", err)
		result.Notice = fmt.Sprintf("Error sending email: %v", err)
		return result, nil
	}

	record(ctx, rt, c, reply)

	return &Result{
		State:     Done,
		Case:      c,
		Delivered: true,
		Notice:    fmt.Sprintf("Verified report sent to patient (%s) successfully!", c.PatientEmail),
	}, nil
}

func record(ctx context.Context, rt *Runtime, c *cases.Case, reply Reply) {
	now := time.Now
	if rt.Now != nil {
		now = rt.Now
	}

	rv := cases.Review{Doctor: reply.Doctor, Text: reply.Text, SentAt: now().UTC()}
	err := rt.Cases.RecordReview(ctx, c.ID, rv)
	switch {
	case err == nil:
		c.Review = &rv
		rt.Logger.Info("case reviewed", "case_id", c.ID, "doctor", reply.Doctor)
	case errors.Is(err, cases.ErrAlreadyReviewed):
		rt.Logger.Info("additional reply sent for reviewed case", "case_id", c.ID)
	default:
		rt.Logger.Error("review record failed", "case_id", c.ID, "error", err)
	}
}
