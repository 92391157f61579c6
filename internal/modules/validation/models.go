package validation

import "time"

// Validation is the closure record for one prediction: the observed
// outcome measured against the forecast. Created exactly once per
// prediction by the one-time verification transition.
type Validation struct {
	ID              int64     `json:"id,omitempty"`
	PredictionID    string    `json:"prediction_id"`
	ValidatedAt     time.Time `json:"validated_at"`
	ActualValue     float64   `json:"actual_value"`
	PredictedValue  float64   `json:"predicted_value"`
	AbsoluteError   float64   `json:"absolute_error"`
	PercentageError float64   `json:"percentage_error"`
	IsAccurate      bool      `json:"is_accurate"`
	Threshold       float64   `json:"threshold"`
	ErrorAnalysis   string    `json:"error_analysis,omitempty"`
	ValidatedBy     string    `json:"validated_by,omitempty"`
}
