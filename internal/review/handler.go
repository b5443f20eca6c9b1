package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/sgmr/pkg/formatting"
	"github.com/JaimeStill/sgmr/pkg/handlers"
	"github.com/JaimeStill/sgmr/pkg/routes"
)

// ErrInvalidBody indicates a request body that is not a JSON reply.
var ErrInvalidBody = errors.New("invalid reply body")

// Handler provides JSON endpoints for case lookup and verified replies.
type Handler struct {
	rt          *Runtime
	logger      *slog.Logger
	maxBodySize int64
}

// NewHandler creates a Handler over rt. Reply bodies larger than
// maxBodySize are rejected.
func NewHandler(rt *Runtime, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		rt:          rt,
		logger:      logger.With("handler", "cases"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for case endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/cases",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/reply", Handler: h.Reply},
		},
	}
}

// Find returns the case identified by the id path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	result, err := Fetch(r.Context(), h.rt, r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Case)
}

// Reply sends the doctor's verified text to the patient. An incomplete reply
// answers 422; a delivery failure answers 502 with the result attached. An
// oversized body answers 413.
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var reply Reply
	if err := json.NewDecoder(r.Body).Decode(&reply); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
				fmt.Errorf("%w: larger than %s", ErrInvalidBody, formatting.FormatBytes(tooLarge.Limit, 1)))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	result, err := Send(r.Context(), h.rt, r.PathValue("id"), reply)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	switch {
	case result.Warning != "":
		handlers.RespondJSON(w, http.StatusUnprocessableEntity, result)
	case !result.Delivered:
		handlers.RespondJSON(w, http.StatusBadGateway, result)
	default:
		handlers.RespondJSON(w, http.StatusOK, result)
	}
}
