package classifier

import "errors"

var (
	// ErrClassifyFailed indicates the model could not produce predictions.
	ErrClassifyFailed = errors.New("classification failed")
	// ErrInvalidModel indicates a model artifact is malformed or inconsistent.
	ErrInvalidModel = errors.New("invalid model artifact")
)
