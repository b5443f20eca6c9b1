package intake

import "errors"

// State is a step of the intake workflow.
//
// A run moves awaiting_input → validating → classifying → building_report →
// persisting → notifying → done. Validation and notification never halt the
// run, so only the states a Result or StageError can report are declared.
type State string

const (
	AwaitingInput  State = "awaiting_input"
	Classifying    State = "classifying"
	BuildingReport State = "building_report"
	Persisting     State = "persisting"
	Done           State = "done"
)

// StageError records the state a run halted in.
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

// User-facing notices for the terminal outcomes.
const (
	NoticeDelivered   = "Diagnosis complete. Please wait for a doctor-verified detailed report."
	NoticeUndelivered = "Report generated, but the reviewer could not be notified."
)
