package features

import "time"

// FeatureDescriptor describes one named input signal consumed by models.
// Static reference data: created by operators, rarely mutated.
type FeatureDescriptor struct {
	ID                   int64     `json:"id,omitempty"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`   // numerical, categorical, boolean, text
	Source               string    `json:"source"` // Collaborator subsystem the value comes from
	Category             string    `json:"category,omitempty"`
	Importance           float64   `json:"importance"`
	TargetCorrelation    float64   `json:"target_correlation"`
	PreprocessingMethod  string    `json:"preprocessing_method,omitempty"`
	MissingValueStrategy string    `json:"missing_value_strategy,omitempty"`
	Required             bool      `json:"required"`
	CreatedAt            time.Time `json:"created_at"`
}

var validFeatureTypes = map[string]bool{
	"numerical":   true,
	"categorical": true,
	"boolean":     true,
	"text":        true,
}

// EntityFeature is one observed numeric value of a feature for one entity.
// Collaborator subsystems push these; training and inference read them.
type EntityFeature struct {
	EntityID  string    `json:"entity_id"`
	Feature   string    `json:"feature"`
	Value     float64   `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
