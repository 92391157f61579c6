package training

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
)

// Handler handles training HTTP requests
type Handler struct {
	pipeline *Pipeline
	log      zerolog.Logger
}

// NewHandler creates a new training handler
func NewHandler(pipeline *Pipeline, log zerolog.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		log:      log.With().Str("handler", "training").Logger(),
	}
}

// HandleTrainModel handles POST /models/{id}/train
func (h *Handler) HandleTrainModel(w http.ResponseWriter, r *http.Request) {
	modelID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid model id", http.StatusBadRequest)
		return
	}

	var req TrainRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	result, err := h.pipeline.Train(modelID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrUnknownAlgorithm),
			errors.Is(err, domain.ErrMalformedDataset),
			errors.Is(err, domain.ErrNoTrainingData):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, domain.ErrConcurrentTraining):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.log.Error().Err(err).Int64("model_id", modelID).Msg("Training failed")
			http.Error(w, "Training failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
