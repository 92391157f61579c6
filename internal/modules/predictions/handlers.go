package predictions

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
)

// Handler handles prediction HTTP requests
type Handler struct {
	engine *Engine
	repo   *Repository
	log    zerolog.Logger
}

// NewHandler creates a new predictions handler
func NewHandler(engine *Engine, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		repo:   repo,
		log:    log.With().Str("handler", "predictions").Logger(),
	}
}

// HandlePredict handles POST /predict
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.engine.Predict(req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSpec), errors.Is(err, domain.ErrInvalidHorizon):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrModelUnavailable), errors.Is(err, domain.ErrFeaturesUnavailable):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			h.log.Error().Err(err).Int64("model_id", req.ModelID).Msg("Prediction failed")
			http.Error(w, "Prediction failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// HandleGetPrediction handles GET /predictions/{id}
func (h *Handler) HandleGetPrediction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	prediction, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("prediction_id", id).Msg("Failed to get prediction")
		http.Error(w, "Failed to retrieve prediction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prediction)
}

// HandleGetEntityPredictions handles GET /entity/{id}/predictions
func (h *Handler) HandleGetEntityPredictions(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")

	filter := ListFilter{
		PredictionType: r.URL.Query().Get("type"),
		TargetArea:     r.URL.Query().Get("area"),
		Status:         r.URL.Query().Get("status"),
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			http.Error(w, "Invalid from date. Use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			http.Error(w, "Invalid to date. Use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.To = &t
	}

	result, err := h.repo.GetByEntity(entityID, filter)
	if err != nil {
		h.log.Error().Err(err).Str("entity_id", entityID).Msg("Failed to list predictions")
		http.Error(w, "Failed to retrieve predictions", http.StatusInternalServerError)
		return
	}
	if result == nil {
		result = []Prediction{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
