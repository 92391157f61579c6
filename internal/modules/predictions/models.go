package predictions

import (
	"time"

	"github.com/progressio/prediction-engine/internal/domain"
)

// Prediction is one scored forecast for one target entity, pinned to the
// model version that produced it. Created in active state; verified once
// a ground-truth outcome is recorded, or expired when the target date
// passes unvalidated.
type Prediction struct {
	ID             string                  `json:"id"`
	ModelID        int64                   `json:"model_id"`
	ModelVersion   string                  `json:"model_version"`
	EntityID       string                  `json:"entity_id"`
	PredictionType string                  `json:"prediction_type"`
	TargetArea     string                  `json:"target_area,omitempty"`
	PredictedValue float64                 `json:"predicted_value"`
	Category       domain.Category         `json:"category"`
	Confidence     float64                 `json:"confidence"`
	PredictionDate time.Time               `json:"prediction_date"`
	TargetDate     time.Time               `json:"target_date"`
	HorizonDays    int                     `json:"time_horizon_days"`
	Factors        []string                `json:"contributing_factors,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
	Status         domain.PredictionStatus `json:"status"`

	// Populated by the validation loop
	ActualValue        *float64         `json:"actual_value,omitempty"`
	ActualCategory     *domain.Category `json:"actual_category,omitempty"`
	PredictionAccuracy *float64         `json:"prediction_accuracy,omitempty"`
	VerifiedAt         *time.Time       `json:"verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ListFilter narrows entity prediction listings
type ListFilter struct {
	PredictionType string
	TargetArea     string
	Status         string
	From           *time.Time
	To             *time.Time
}
