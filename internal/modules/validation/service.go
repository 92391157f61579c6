package validation

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/metrics"
	"github.com/progressio/prediction-engine/internal/modules/predictions"
	"github.com/progressio/prediction-engine/pkg/formulas"
)

// Guards the percentage-error division for near-zero actual outcomes
const divisionEpsilon = 1e-6

// Service closes the loop between predictions and observed outcomes
type Service struct {
	repo             *Repository
	predictions      *predictions.Repository
	events           *events.Manager
	metrics          *metrics.Metrics
	defaultThreshold float64
	now              func() time.Time
	log              zerolog.Logger
}

// NewService creates a new validation service
func NewService(
	repo *Repository,
	predictionRepo *predictions.Repository,
	eventManager *events.Manager,
	m *metrics.Metrics,
	defaultThreshold float64,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:             repo,
		predictions:      predictionRepo,
		events:           eventManager,
		metrics:          m,
		defaultThreshold: defaultThreshold,
		now:              time.Now,
		log:              log.With().Str("service", "validation").Logger(),
	}
}

// Request carries one observed outcome for a prediction
type Request struct {
	ActualValue   *float64 `json:"actual_value"`
	Threshold     *float64 `json:"threshold,omitempty"` // Overrides the configured accuracy threshold
	ErrorAnalysis string   `json:"error_analysis,omitempty"`
	ValidatedBy   string   `json:"validated_by,omitempty"`
}

// Validate records the observed outcome for one prediction, computes
// error metrics and flips the prediction to verified. Verification is a
// one-time transition: a second call fails with ErrAlreadyValidated and
// creates no second record.
func (s *Service) Validate(predictionID string, req Request) (*Validation, error) {
	if req.ActualValue == nil {
		return nil, fmt.Errorf("%w: actual_value is required", domain.ErrInvalidSpec)
	}

	prediction, err := s.predictions.GetByID(predictionID)
	if err != nil {
		return nil, err
	}
	switch prediction.Status {
	case domain.PredictionVerified:
		return nil, fmt.Errorf("%w: prediction %s", domain.ErrAlreadyValidated, predictionID)
	case domain.PredictionExpired:
		return nil, fmt.Errorf("%w: prediction %s has expired", domain.ErrAlreadyValidated, predictionID)
	}

	threshold := s.defaultThreshold
	if req.Threshold != nil {
		if *req.Threshold <= 0 || *req.Threshold > 1 {
			return nil, fmt.Errorf("%w: threshold must be in (0, 1]", domain.ErrInvalidSpec)
		}
		threshold = *req.Threshold
	}

	actual := *req.ActualValue
	absoluteError := math.Abs(actual - prediction.PredictedValue)
	percentageError := absoluteError / math.Max(math.Abs(actual), divisionEpsilon) * 100
	isAccurate := percentageError <= threshold*100
	accuracy := formulas.Clamp(100-percentageError, 0, 100)
	actualCategory := domain.CategoryFor(formulas.Clamp(actual, 0, 1))
	validatedAt := s.now().UTC()

	v := &Validation{
		PredictionID:    predictionID,
		ValidatedAt:     validatedAt,
		ActualValue:     actual,
		PredictedValue:  prediction.PredictedValue,
		AbsoluteError:   absoluteError,
		PercentageError: percentageError,
		IsAccurate:      isAccurate,
		Threshold:       threshold,
		ErrorAnalysis:   req.ErrorAnalysis,
		ValidatedBy:     req.ValidatedBy,
	}

	tx, err := s.predictions.DB().Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	verified, err := s.predictions.MarkVerified(tx, predictionID, actual, actualCategory, accuracy, validatedAt)
	if err != nil {
		return nil, err
	}
	if !verified {
		// Lost a race with a concurrent validation of the same prediction
		return nil, fmt.Errorf("%w: prediction %s", domain.ErrAlreadyValidated, predictionID)
	}
	if err := s.repo.Insert(tx, v); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit validation: %w", err)
	}

	s.metrics.ValidationRecorded(isAccurate)
	s.events.Emit(events.PredictionValidated, "validation", map[string]interface{}{
		"prediction_id":    predictionID,
		"actual_value":     actual,
		"percentage_error": percentageError,
		"is_accurate":      isAccurate,
	})
	s.log.Info().
		Str("prediction_id", predictionID).
		Float64("actual", actual).
		Float64("percentage_error", percentageError).
		Bool("accurate", isAccurate).
		Msg("Prediction validated")

	return v, nil
}
