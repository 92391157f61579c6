package registry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
)

// Handler handles model registry HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new registry handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "registry").Logger(),
	}
}

// HandleRegisterModel handles POST /models
func (h *Handler) HandleRegisterModel(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	model, err := h.service.Register(req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSpec) || errors.Is(err, domain.ErrUnknownAlgorithm) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to register model")
		http.Error(w, "Failed to register model", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(model)
}

// HandleListModels handles GET /models
func (h *Handler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	models, err := h.service.List(activeOnly)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list models")
		http.Error(w, "Failed to retrieve models", http.StatusInternalServerError)
		return
	}
	if models == nil {
		models = []PredictionModel{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models)
}

// HandleGetModel handles GET /models/{id}
func (h *Handler) HandleGetModel(w http.ResponseWriter, r *http.Request) {
	id, err := parseModelID(r)
	if err != nil {
		http.Error(w, "Invalid model id", http.StatusBadRequest)
		return
	}

	model, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Int64("model_id", id).Msg("Failed to get model")
		http.Error(w, "Failed to retrieve model", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model)
}

// HandleDeactivateModel handles POST /models/{id}/deactivate
func (h *Handler) HandleDeactivateModel(w http.ResponseWriter, r *http.Request) {
	id, err := parseModelID(r)
	if err != nil {
		http.Error(w, "Invalid model id", http.StatusBadRequest)
		return
	}

	if err := h.service.Deactivate(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Int64("model_id", id).Msg("Failed to deactivate model")
		http.Error(w, "Failed to deactivate model", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"model_id": id,
		"status":   "deactivated",
	})
}

func parseModelID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
