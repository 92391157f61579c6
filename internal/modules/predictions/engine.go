package predictions

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/metrics"
	"github.com/progressio/prediction-engine/internal/modules/alerts"
	"github.com/progressio/prediction-engine/internal/modules/registry"
	"github.com/progressio/prediction-engine/internal/modules/training"
	"github.com/progressio/prediction-engine/pkg/formulas"
)

// VectorSource resolves an entity's ordered feature vector from recorded
// feature values. The features repository implements it.
type VectorSource interface {
	Vector(entityID string, featureNames []string) ([]float64, error)
}

// Engine generates predictions from trained model artifacts.
type Engine struct {
	registry          *registry.Repository
	repo              *Repository
	store             *training.ArtifactStore
	vectors           VectorSource
	alerts            *alerts.Service
	events            *events.Manager
	metrics           *metrics.Metrics
	defaultConfidence float64
	now               func() time.Time
	log               zerolog.Logger
}

// NewEngine creates an inference engine. vectors may be nil when no
// feature store is wired; requests must then carry inline feature values.
func NewEngine(
	reg *registry.Repository,
	repo *Repository,
	store *training.ArtifactStore,
	vectors VectorSource,
	alertService *alerts.Service,
	eventManager *events.Manager,
	m *metrics.Metrics,
	defaultConfidence float64,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		registry:          reg,
		repo:              repo,
		store:             store,
		vectors:           vectors,
		alerts:            alertService,
		events:            eventManager,
		metrics:           m,
		defaultConfidence: defaultConfidence,
		now:               time.Now,
		log:               log.With().Str("service", "inference").Logger(),
	}
}

// PredictRequest asks for one prediction for one entity
type PredictRequest struct {
	EntityID       string             `json:"entity_id"`
	ModelID        int64              `json:"model_id"`
	PredictionType string             `json:"prediction_type"`
	TargetArea     string             `json:"target_area,omitempty"`
	TargetDate     time.Time          `json:"target_date"`
	Features       map[string]float64 `json:"features,omitempty"`
}

// PredictResponse carries the persisted prediction and any alerts the
// rule engine derived from it
type PredictResponse struct {
	Prediction *Prediction    `json:"prediction"`
	Alerts     []alerts.Alert `json:"alerts"`
}

// Predict loads the model artifact, builds the entity's feature vector,
// scores it, persists the prediction in active state and hands it to the
// alert engine.
func (e *Engine) Predict(req PredictRequest) (*PredictResponse, error) {
	if req.EntityID == "" {
		return nil, fmt.Errorf("%w: entity_id is required", domain.ErrInvalidSpec)
	}
	if req.PredictionType == "" {
		return nil, fmt.Errorf("%w: prediction_type is required", domain.ErrInvalidSpec)
	}
	if req.TargetDate.IsZero() {
		return nil, fmt.Errorf("%w: target_date is required", domain.ErrInvalidSpec)
	}

	model, err := e.registry.GetByID(req.ModelID)
	if err != nil {
		return nil, err
	}
	if !model.IsActive {
		return nil, fmt.Errorf("%w: model %d is deactivated", domain.ErrModelUnavailable, model.ID)
	}
	if model.ArtifactPath == nil {
		return nil, fmt.Errorf("%w: model %d has never been trained", domain.ErrModelUnavailable, model.ID)
	}

	artifact, err := e.store.Load(*model.ArtifactPath)
	if err != nil {
		return nil, err
	}
	impl, err := artifact.Model()
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	horizonDays := int(req.TargetDate.UTC().Sub(now).Hours() / 24)
	if horizonDays <= 0 {
		return nil, fmt.Errorf("%w: target date %s is not after prediction date",
			domain.ErrInvalidHorizon, req.TargetDate.Format("2006-01-02"))
	}

	vector, err := e.resolveVector(req, model.Features)
	if err != nil {
		return nil, err
	}

	value := impl.Predict(vector)
	category := domain.CategoryFor(formulas.Clamp(value, 0, 1))

	confidence := e.defaultConfidence
	if p, ok := impl.Probability(vector); ok {
		// Top class probability
		confidence = p
		if 1-p > p {
			confidence = 1 - p
		}
	}

	factors, recommendations := narrativeFor(category)

	prediction := &Prediction{
		ID:              uuid.NewString(),
		ModelID:         model.ID,
		ModelVersion:    model.Version,
		EntityID:        req.EntityID,
		PredictionType:  req.PredictionType,
		TargetArea:      req.TargetArea,
		PredictedValue:  value,
		Category:        category,
		Confidence:      confidence,
		PredictionDate:  now,
		TargetDate:      req.TargetDate.UTC(),
		HorizonDays:     horizonDays,
		Factors:         factors,
		Recommendations: recommendations,
		Status:          domain.PredictionActive,
	}

	if _, err := e.repo.Create(prediction); err != nil {
		return nil, err
	}

	triggered, err := e.alerts.EvaluatePrediction(alerts.PredictionSignal{
		PredictionID:   prediction.ID,
		EntityID:       prediction.EntityID,
		PredictedValue: prediction.PredictedValue,
		Confidence:     prediction.Confidence,
		TargetDate:     prediction.TargetDate,
	})
	if err != nil {
		return nil, fmt.Errorf("alert evaluation failed: %w", err)
	}

	e.metrics.PredictionCreated(fmt.Sprintf("%d", model.ID), string(category))
	e.events.Emit(events.PredictionCreated, "predictions", map[string]interface{}{
		"prediction_id": prediction.ID,
		"model_id":      model.ID,
		"entity_id":     prediction.EntityID,
		"category":      string(category),
		"alerts":        len(triggered),
	})
	e.log.Info().
		Str("prediction_id", prediction.ID).
		Int64("model_id", model.ID).
		Str("entity_id", prediction.EntityID).
		Float64("value", value).
		Float64("confidence", confidence).
		Int("alerts", len(triggered)).
		Msg("Prediction generated")

	return &PredictResponse{Prediction: prediction, Alerts: triggered}, nil
}

// resolveVector builds the model's ordered feature vector from inline
// request values, falling back to the feature store. Missing values are
// a typed error, never synthesized.
func (e *Engine) resolveVector(req PredictRequest, featureNames []string) ([]float64, error) {
	if len(req.Features) > 0 {
		vector := make([]float64, len(featureNames))
		for i, name := range featureNames {
			v, ok := req.Features[name]
			if !ok {
				return nil, fmt.Errorf("%w: request is missing feature %q",
					domain.ErrFeaturesUnavailable, name)
			}
			vector[i] = v
		}
		return vector, nil
	}

	if e.vectors == nil {
		return nil, fmt.Errorf("%w: no feature values supplied and no feature store wired",
			domain.ErrFeaturesUnavailable)
	}
	return e.vectors.Vector(req.EntityID, featureNames)
}
