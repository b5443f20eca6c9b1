package diagnosis

import "errors"

var (
	// ErrNoCandidates indicates the classifier produced no predictions to rank.
	ErrNoCandidates = errors.New("classifier returned no candidates")
	// ErrInvalidProbability indicates a prediction outside [0, 1].
	ErrInvalidProbability = errors.New("probability outside [0, 1]")
	// ErrMalformedReport indicates report text does not follow the report template.
	ErrMalformedReport = errors.New("malformed report text")
)
