package review

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/internal/notify"
)

// ErrMissingCaseID indicates a review request without a case id.
var ErrMissingCaseID = errors.New("no case id provided")

// MapHTTPStatus maps review errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingCaseID):
		return http.StatusBadRequest
	case errors.Is(err, notify.ErrDeliveryFailed):
		return http.StatusBadGateway
	}
	return cases.MapHTTPStatus(err)
}
