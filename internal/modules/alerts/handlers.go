package alerts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
)

// Handler handles alert HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new alerts handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "alerts").Logger(),
	}
}

// HandleListAlerts handles GET /alerts
func (h *Handler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status:   r.URL.Query().Get("status"),
		Type:     r.URL.Query().Get("type"),
		EntityID: r.URL.Query().Get("entity_id"),
	}

	result, err := h.service.List(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list alerts")
		http.Error(w, "Failed to retrieve alerts", http.StatusInternalServerError)
		return
	}
	if result == nil {
		result = []Alert{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleAcknowledgeAlert handles PUT /alerts/{id}/acknowledge
func (h *Handler) HandleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		AcknowledgedBy string `json:"acknowledged_by"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	if body.AcknowledgedBy == "" {
		http.Error(w, "acknowledged_by is required", http.StatusBadRequest)
		return
	}

	alert, err := h.service.Acknowledge(id, body.AcknowledgedBy)
	if err != nil {
		h.writeTransitionError(w, err, id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alert)
}

// HandleResolveAlert handles PUT /alerts/{id}/resolve
func (h *Handler) HandleResolveAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alert, err := h.service.Resolve(id)
	if err != nil {
		h.writeTransitionError(w, err, id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alert)
}

// HandleDismissAlert handles PUT /alerts/{id}/dismiss
func (h *Handler) HandleDismissAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alert, err := h.service.Dismiss(id)
	if err != nil {
		h.writeTransitionError(w, err, id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alert)
}

func (h *Handler) writeTransitionError(w http.ResponseWriter, err error, id string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error().Err(err).Str("alert_id", id).Msg("Alert transition failed")
		http.Error(w, "Alert update failed", http.StatusInternalServerError)
	}
}
