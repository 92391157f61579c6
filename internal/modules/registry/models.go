package registry

import (
	"time"

	"github.com/progressio/prediction-engine/internal/domain"
)

// PredictionModel is a named, versioned model definition plus its trained
// artifact reference and evaluation scores. Created by operator request;
// scores, artifact pointer and training metadata are mutated only by the
// training pipeline. Never deleted, only deactivated.
type PredictionModel struct {
	ID              int64              `json:"id,omitempty"`
	Name            string             `json:"name"`
	ModelKind       domain.ModelKind   `json:"model_kind"`
	TargetVariable  string             `json:"target_variable"`
	Algorithm       string             `json:"algorithm"`
	Hyperparameters map[string]float64 `json:"hyperparameters,omitempty"`
	Features        []string           `json:"features"`

	// Evaluation scores: accuracy/precision/recall/f1 for classification,
	// mae/rmse for regression. Nil until the first training run.
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Precision *float64 `json:"precision,omitempty"`
	Recall    *float64 `json:"recall,omitempty"`
	F1        *float64 `json:"f1,omitempty"`
	MAE       *float64 `json:"mae,omitempty"`
	RMSE      *float64 `json:"rmse,omitempty"`

	TrainingWindowStart *time.Time `json:"training_window_start,omitempty"`
	TrainingWindowEnd   *time.Time `json:"training_window_end,omitempty"`
	TrainingRows        int        `json:"training_rows"`
	LastTrainedAt       *time.Time `json:"last_trained_at,omitempty"`

	IsActive     bool      `json:"is_active"`
	Version      string    `json:"version"`
	ArtifactPath *string   `json:"artifact_path,omitempty"`
	TrainedSeq   int64     `json:"-"` // Optimistic concurrency counter, bumped per training commit
	CreatedAt    time.Time `json:"created_at"`
}

// TrainingUpdate carries the registry mutation of one training commit.
type TrainingUpdate struct {
	Accuracy  *float64
	Precision *float64
	Recall    *float64
	F1        *float64
	MAE       *float64
	RMSE      *float64

	TrainingWindowStart *time.Time
	TrainingWindowEnd   *time.Time
	TrainingRows        int
	TrainedAt           time.Time
	ArtifactPath        string
}
