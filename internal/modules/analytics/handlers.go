package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles analytics HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// HandleAccuracy handles GET /analytics/accuracy
func (h *Handler) HandleAccuracy(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Accuracy()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute accuracy report")
		http.Error(w, "Failed to compute accuracy report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// HandleTrends handles GET /analytics/trends
func (h *Handler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Trends()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute trend report")
		http.Error(w, "Failed to compute trend report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
