package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/carverauto/srql/internal/domain"
	"github.com/carverauto/srql/internal/engine"
)

// Handler serves query-result downloads.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHTTPHandler creates the export HTTP handler.
func NewHTTPHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// ServeHTTP handles POST /api/query/export.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	content, filename, err := h.service.Export(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrMissingQuery) || errors.Is(err, domain.ErrInvalidQuery) ||
			errors.Is(err, domain.ErrUnknownEntity) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(content); err != nil {
		h.log.Error().Err(err).Msg("failed to stream export")
	}
}
