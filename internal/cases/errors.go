package cases

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/sgmr/pkg/storage"
)

// Domain errors for case operations.
var (
	ErrNotFound        = errors.New("case not found")
	ErrAlreadyReviewed = errors.New("case already reviewed")
	ErrIDExhausted     = errors.New("could not allocate a unique case id")
	ErrCorruptRecord   = errors.New("case record is corrupt")
)

// MapHTTPStatus maps case domain errors to HTTP status codes, deferring to
// the storage mapping for anything else.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, ErrIDExhausted), errors.Is(err, ErrCorruptRecord):
		return http.StatusInternalServerError
	}
	return storage.MapHTTPStatus(err)
}
