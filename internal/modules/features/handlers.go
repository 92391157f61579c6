package features

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
	"github.com/progressio/prediction-engine/internal/events"
)

// Handler handles feature registry HTTP requests
type Handler struct {
	repo   *Repository
	events *events.Manager
	log    zerolog.Logger
}

// NewHandler creates a new features handler
func NewHandler(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		events: eventManager,
		log:    log.With().Str("handler", "features").Logger(),
	}
}

// HandleListFeatures handles GET /features
func (h *Handler) HandleListFeatures(w http.ResponseWriter, r *http.Request) {
	descriptors, err := h.repo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list feature descriptors")
		http.Error(w, "Failed to retrieve features", http.StatusInternalServerError)
		return
	}
	if descriptors == nil {
		descriptors = []FeatureDescriptor{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(descriptors)
}

// HandleCreateFeature handles POST /features
func (h *Handler) HandleCreateFeature(w http.ResponseWriter, r *http.Request) {
	var fd FeatureDescriptor
	if err := json.NewDecoder(r.Body).Decode(&fd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(&fd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSpec) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("feature", fd.Name).Msg("Failed to create feature descriptor")
		http.Error(w, "Failed to create feature", http.StatusInternalServerError)
		return
	}

	h.events.Emit(events.FeatureRegistered, "features", map[string]interface{}{
		"feature": created.Name,
		"type":    created.Type,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// HandleGetEntityFeatures handles GET /entity/{id}/features
func (h *Handler) HandleGetEntityFeatures(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")

	values, err := h.repo.EntityValues(entityID)
	if err != nil {
		h.log.Error().Err(err).Str("entity_id", entityID).Msg("Failed to get entity features")
		http.Error(w, "Failed to retrieve entity features", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"entity_id": entityID,
		"features":  values,
	})
}

// HandlePutEntityFeatures handles PUT /entity/{id}/features
func (h *Handler) HandlePutEntityFeatures(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")

	var body struct {
		Features map[string]float64 `json:"features"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpsertEntityValues(entityID, body.Features); err != nil {
		if errors.Is(err, domain.ErrInvalidSpec) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("entity_id", entityID).Msg("Failed to upsert entity features")
		http.Error(w, "Failed to store entity features", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"entity_id": entityID,
		"updated":   len(body.Features),
	})
}
