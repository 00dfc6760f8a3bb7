package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/carverauto/srql/internal/domain"
	"github.com/carverauto/srql/internal/engine"
)

// QueryExecutor is the engine surface the HTTP layer depends on.
type QueryExecutor interface {
	Execute(ctx context.Context, req engine.Request) (domain.Envelope, error)
}

// Handler serves the query endpoint.
type Handler struct {
	engine QueryExecutor
	log    zerolog.Logger
}

// NewHandler creates the query HTTP handler.
func NewHandler(executor QueryExecutor, log zerolog.Logger) *Handler {
	return &Handler{engine: executor, log: log}
}

// ServeHTTP handles POST /api/query.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	envelope, err := h.engine.Execute(r.Context(), req)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		h.log.Error().Err(err).Msg("failed to encode query response")
	}
}

// statusForError maps the engine's failure taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingQuery),
		errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrUnknownEntity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthorizationDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTranslationFailure),
		errors.Is(err, domain.ErrParamDecodeFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
