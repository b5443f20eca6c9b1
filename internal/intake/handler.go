package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/pkg/formatting"
	"github.com/JaimeStill/sgmr/pkg/handlers"
	"github.com/JaimeStill/sgmr/pkg/routes"
)

// ErrInvalidBody indicates a request body that is not a JSON submission.
var ErrInvalidBody = errors.New("invalid submission body")

// Handler provides the JSON endpoint for patient submissions.
type Handler struct {
	rt          *Runtime
	logger      *slog.Logger
	maxBodySize int64
}

// NewHandler creates a Handler over rt. Request bodies larger than
// maxBodySize are rejected.
func NewHandler(rt *Runtime, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		rt:          rt,
		logger:      logger.With("handler", "diagnoses"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for submission endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/diagnoses",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
		},
	}
}

// Submit runs the intake workflow for a JSON submission. A rejected
// submission answers 422 with the validation warning; a persisted case
// answers 201 whether or not the reviewer was notified.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
				fmt.Errorf("%w: larger than %s", ErrInvalidBody, formatting.FormatBytes(tooLarge.Limit, 1)))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	result, err := Execute(r.Context(), h.rt, sub)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if result.State == AwaitingInput {
		handlers.RespondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// MapHTTPStatus maps workflow errors to HTTP status codes. Classifier
// failures are upstream failures; persistence errors map as case errors.
func MapHTTPStatus(err error) int {
	if IsClassifierFailure(err) {
		return http.StatusBadGateway
	}
	return cases.MapHTTPStatus(err)
}
