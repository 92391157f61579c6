package training

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/metrics"
	"github.com/progressio/prediction-engine/internal/modules/registry"
	"github.com/progressio/prediction-engine/internal/modules/training/algorithms"
	"github.com/progressio/prediction-engine/pkg/formulas"
)

// FeatureSource assembles a labeled training matrix from recorded entity
// feature values. The features repository implements it.
type FeatureSource interface {
	TrainingSet(featureNames []string, targetVariable string) ([][]float64, []float64, error)
}

// Config tunes the training pipeline
type Config struct {
	TrainSplit float64
	Seed       int64
}

// Pipeline turns a labeled dataset into a fitted artifact plus evaluation
// scores, and commits them to the model registry.
type Pipeline struct {
	registry *registry.Repository
	features FeatureSource
	store    *ArtifactStore
	events   *events.Manager
	metrics  *metrics.Metrics
	cfg      Config
	log      zerolog.Logger
}

// NewPipeline creates a training pipeline. features may be nil when no
// feature-extraction collaborator is wired; training then requires an
// explicit dataset.
func NewPipeline(
	reg *registry.Repository,
	features FeatureSource,
	store *ArtifactStore,
	eventManager *events.Manager,
	m *metrics.Metrics,
	cfg Config,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		registry: reg,
		features: features,
		store:    store,
		events:   eventManager,
		metrics:  m,
		cfg:      cfg,
		log:      log.With().Str("service", "training").Logger(),
	}
}

// Result summarizes one completed training run
type Result struct {
	ModelID      int64            `json:"model_id"`
	ModelKind    domain.ModelKind `json:"model_kind"`
	Algorithm    string           `json:"algorithm"`
	TrainRows    int              `json:"train_rows"`
	TestRows     int              `json:"test_rows"`
	Accuracy     *float64         `json:"accuracy,omitempty"`
	Precision    *float64         `json:"precision,omitempty"`
	Recall       *float64         `json:"recall,omitempty"`
	F1           *float64         `json:"f1,omitempty"`
	MAE          *float64         `json:"mae,omitempty"`
	RMSE         *float64         `json:"rmse,omitempty"`
	ArtifactPath string           `json:"artifact_path"`
	TrainedAt    time.Time        `json:"trained_at"`
	Duration     time.Duration    `json:"duration_ns"`
}

// TrainRequest carries an optional explicit dataset and training window
type TrainRequest struct {
	Dataset     *Dataset   `json:"dataset,omitempty"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
}

// Train fits the model's declared algorithm on the supplied dataset (or
// one assembled by the feature source), scores it on a held-out
// partition, persists the artifact and commits scores to the registry.
// The registry entry is left unchanged on any failure.
func (p *Pipeline) Train(modelID int64, req TrainRequest) (*Result, error) {
	started := time.Now()

	model, err := p.registry.GetByID(modelID)
	if err != nil {
		return nil, err
	}
	expectedSeq := model.TrainedSeq

	ds, err := p.resolveDataset(model, req.Dataset)
	if err != nil {
		p.recordFailure(model.Algorithm, err)
		return nil, err
	}
	if err := ds.Validate(len(model.Features)); err != nil {
		p.recordFailure(model.Algorithm, err)
		return nil, err
	}

	impl, err := algorithms.New(model.ModelKind, model.Algorithm, model.Hyperparameters)
	if err != nil {
		p.recordFailure(model.Algorithm, err)
		return nil, err
	}

	train, test := ds.Split(p.cfg.TrainSplit, p.cfg.Seed)
	if err := impl.Fit(train.X, train.Y); err != nil {
		p.recordFailure(model.Algorithm, err)
		return nil, fmt.Errorf("fit failed: %w", err)
	}

	result := &Result{
		ModelID:   model.ID,
		ModelKind: model.ModelKind,
		Algorithm: model.Algorithm,
		TrainRows: len(train.X),
		TestRows:  len(test.X),
		TrainedAt: time.Now().UTC(),
	}
	p.score(impl, test, result)

	params, err := json.Marshal(impl)
	if err != nil {
		p.recordFailure(model.Algorithm, err)
		return nil, fmt.Errorf("failed to serialize fitted model: %w", err)
	}

	artifactPath, err := p.store.Save(&Artifact{
		ModelID:   model.ID,
		ModelKind: model.ModelKind,
		Algorithm: model.Algorithm,
		Features:  model.Features,
		TrainedAt: result.TrainedAt,
		Params:    params,
	})
	if err != nil {
		p.recordFailure(model.Algorithm, err)
		return nil, err
	}
	result.ArtifactPath = artifactPath

	update := registry.TrainingUpdate{
		Accuracy:            result.Accuracy,
		Precision:           result.Precision,
		Recall:              result.Recall,
		F1:                  result.F1,
		MAE:                 result.MAE,
		RMSE:                result.RMSE,
		TrainingWindowStart: req.WindowStart,
		TrainingWindowEnd:   req.WindowEnd,
		TrainingRows:        len(ds.X),
		TrainedAt:           result.TrainedAt,
		ArtifactPath:        artifactPath,
	}
	if err := p.registry.ApplyTrainingUpdate(model.ID, expectedSeq, update); err != nil {
		p.recordFailure(model.Algorithm, err)
		return nil, err
	}

	result.Duration = time.Since(started)
	p.metrics.TrainingCompleted(model.Algorithm, "success", result.Duration.Seconds())
	p.events.Emit(events.ModelTrained, "training", map[string]interface{}{
		"model_id":  model.ID,
		"algorithm": model.Algorithm,
		"rows":      len(ds.X),
	})
	p.log.Info().
		Int64("model_id", model.ID).
		Str("algorithm", model.Algorithm).
		Int("rows", len(ds.X)).
		Dur("duration", result.Duration).
		Msg("Model trained")

	return result, nil
}

// resolveDataset returns the explicit dataset or one assembled from the
// feature source. No synthetic fallback: missing data is a typed error.
func (p *Pipeline) resolveDataset(model *registry.PredictionModel, ds *Dataset) (*Dataset, error) {
	if ds != nil && len(ds.X) > 0 {
		return ds, nil
	}
	if p.features == nil {
		return nil, fmt.Errorf("%w: no dataset supplied and no feature source wired", domain.ErrNoTrainingData)
	}

	x, y, err := p.features.TrainingSet(model.Features, model.TargetVariable)
	if err != nil {
		return nil, fmt.Errorf("feature source failed: %w", err)
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no entity has complete values for model %d",
			domain.ErrNoTrainingData, model.ID)
	}
	return &Dataset{X: x, Y: y}, nil
}

func (p *Pipeline) score(impl algorithms.Model, test Dataset, result *Result) {
	predicted := make([]float64, len(test.X))
	for i, row := range test.X {
		predicted[i] = impl.Predict(row)
	}

	if result.ModelKind == domain.KindClassification {
		s := formulas.Classification(predicted, test.Y)
		result.Accuracy = &s.Accuracy
		result.Precision = &s.Precision
		result.Recall = &s.Recall
		result.F1 = &s.F1
		return
	}

	mae := formulas.MAE(predicted, test.Y)
	rmse := formulas.RMSE(predicted, test.Y)
	result.MAE = &mae
	result.RMSE = &rmse
}

func (p *Pipeline) recordFailure(algorithm string, err error) {
	p.metrics.TrainingCompleted(algorithm, "failure", 0)
	p.events.Emit(events.TrainingFailed, "training", map[string]interface{}{
		"algorithm": algorithm,
		"error":     err.Error(),
	})
}
