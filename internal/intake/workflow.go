// Package intake runs the patient-facing diagnosis workflow: validate the
// form, classify the symptoms, build and persist the report, and notify the
// reviewer.
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/internal/classifier"
	"github.com/JaimeStill/sgmr/internal/diagnosis"
	"github.com/JaimeStill/sgmr/internal/notify"
	"github.com/JaimeStill/sgmr/pkg/metrics"
)

// Result is the outcome of one intake run. State is AwaitingInput with
// Warning set when the submission was rejected, or Done otherwise.
type Result struct {
	State     State            `json:"state"`
	Warning   *ValidationError `json:"warning,omitempty"`
	Case      *cases.Case      `json:"case,omitempty"`
	Delivered bool             `json:"delivered"`
	Notice    string           `json:"notice,omitempty"`
}

// Execute runs the workflow for sub. Classifier and persistence failures are
// returned as a *StageError naming the halted state; a notification failure is reported through
// Result.Delivered and never undoes the persisted case.
func Execute(ctx context.Context, rt *Runtime, sub Submission) (*Result, error) {
	sub = sub.Normalize()

	if warning := sub.Validate(); warning != nil {
		rt.Logger.Debug("submission rejected", "field", warning.Field)
		return &Result{State: AwaitingInput, Warning: warning}, nil
	}

	preds, err := classify(ctx, rt, sub.Symptoms)
	if err != nil {
		return nil, &StageError{State: Classifying, Err: err}
	}

	report, err := buildReport(rt, sub, preds)
	if err != nil {
		return nil, &StageError{State: BuildingReport, Err: err}
	}

	c, err := rt.Cases.Create(ctx, report, sub.Email)
	if err != nil {
		rt.Logger.Error("case persistence failed", "error", err)
		return nil, &StageError{State: Persisting, Err: err}
	}

	delivered := notifyReviewer(ctx, rt, c)

	result := &Result{
		State:     Done,
		Case:      c,
		Delivered: delivered,
		Notice:    NoticeDelivered,
	}
	if !delivered {
		result.Notice = NoticeUndelivered
	}
	return result, nil
}

func classify(ctx context.Context, rt *Runtime, symptoms string) ([]classifier.Prediction, error) {
	info := rt.Classifier.Info()

	start := time.Now()
	preds, err := rt.Classifier.Classify(ctx, symptoms)
	if err == nil && len(preds) == 0 {
		err = fmt.Errorf("%w: %w", classifier.ErrClassifyFailed, diagnosis.ErrNoCandidates)
	}
	if err != nil && !errors.Is(err, classifier.ErrClassifyFailed) {
		err = fmt.Errorf("%w: %w", classifier.ErrClassifyFailed, err)
	}
	metrics.ObserveClassify(info.Name, err, time.Since(start))

	if err != nil {
		rt.Logger.Error("classification failed", "classifier", info.Name, "error", err)
		return nil, err
	}
	return preds, nil
}

func buildReport(rt *Runtime, sub Submission, preds []classifier.Prediction) (*diagnosis.Report, error) {
	report, err := diagnosis.Build(sub.Patient(), preds, rt.Catalog, rt.Classifier.Info().Accuracy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", classifier.ErrClassifyFailed, err)
	}
	return report, nil
}

func notifyReviewer(ctx context.Context, rt *Runtime, c *cases.Case) bool {
	msg, err := rt.Composer.AdminNotification(rt.Reviewer, notify.AdminNotice{
		CaseID:       c.ID,
		PatientEmail: c.PatientEmail,
		ReviewURL:    notify.ReviewURL(rt.ReviewBaseURL, c.ID),
		ReportText:   c.ReportText,
	})
	if err == nil {
		err = rt.Notifier.Notify(ctx, msg)
	}
	metrics.IncrementNotification(notify.KindAdminNotification, err)

	if err != nil {
		rt.Logger.Error("reviewer notification failed", "case_id", c.ID, "error", err)
		return false
	}

	rt.Logger.Info("case submitted", "case_id", c.ID)
	return true
}

// IsClassifierFailure reports whether err came from the classify step.
func IsClassifierFailure(err error) bool {
	return errors.Is(err, classifier.ErrClassifyFailed)
}
