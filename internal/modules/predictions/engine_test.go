package predictions

import (
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/progressio/prediction-engine/internal/domain"
	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/metrics"
	"github.com/progressio/prediction-engine/internal/modules/alerts"
	"github.com/progressio/prediction-engine/internal/modules/registry"
	"github.com/progressio/prediction-engine/internal/modules/training"
	"github.com/progressio/prediction-engine/internal/modules/training/algorithms"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type engineFixture struct {
	engine   *Engine
	registry *registry.Repository
	repo     *Repository
	alerts   *alerts.Service
	modelID  int64
}

// newEngineFixture wires an engine around a model whose fitted artifact
// is the identity line y = x over a single feature, so the predicted
// value equals the supplied feature value.
func newEngineFixture(t *testing.T, defaultConfidence float64) *engineFixture {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, registry.InitSchema(db))
	require.NoError(t, InitSchema(db))
	require.NoError(t, alerts.InitSchema(db))
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	reg := registry.NewRepository(db, log)
	repo := NewRepository(db, log)
	store, err := training.NewArtifactStore(t.TempDir())
	require.NoError(t, err)
	m, err := metrics.NewWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	eventManager := events.NewManager(log)
	alertService := alerts.NewService(alerts.NewRepository(db, log), eventManager, m, log)

	model, err := reg.Create(&registry.PredictionModel{
		Name:           "progress",
		ModelKind:      domain.KindRegression,
		TargetVariable: "score",
		Algorithm:      algorithms.LinearRegression,
		Features:       []string{"x"},
		IsActive:       true,
		Version:        "1.0",
	})
	require.NoError(t, err)

	impl, err := algorithms.New(domain.KindRegression, algorithms.LinearRegression, nil)
	require.NoError(t, err)
	require.NoError(t, impl.Fit([][]float64{{0}, {0.5}, {1}}, []float64{0, 0.5, 1}))
	params, err := json.Marshal(impl)
	require.NoError(t, err)
	path, err := store.Save(&training.Artifact{
		ModelID:   model.ID,
		ModelKind: model.ModelKind,
		Algorithm: model.Algorithm,
		Features:  model.Features,
		TrainedAt: testNow,
		Params:    params,
	})
	require.NoError(t, err)
	require.NoError(t, reg.ApplyTrainingUpdate(model.ID, 0, registry.TrainingUpdate{
		TrainingRows: 3,
		TrainedAt:    testNow,
		ArtifactPath: path,
	}))

	engine := NewEngine(reg, repo, store, nil, alertService, eventManager, m, defaultConfidence, log)
	engine.now = func() time.Time { return testNow }

	return &engineFixture{engine: engine, registry: reg, repo: repo, alerts: alertService, modelID: model.ID}
}

func (f *engineFixture) request(value float64) PredictRequest {
	return PredictRequest{
		EntityID:       "user-1",
		ModelID:        f.modelID,
		PredictionType: "progress",
		TargetArea:     "strength",
		TargetDate:     testNow.AddDate(0, 0, 90),
		Features:       map[string]float64{"x": value},
	}
}

func TestPredict_PersistsActivePrediction(t *testing.T) {
	f := newEngineFixture(t, 0.8)

	resp, err := f.engine.Predict(f.request(0.7))
	require.NoError(t, err)
	p := resp.Prediction

	assert.InDelta(t, 0.7, p.PredictedValue, 1e-6)
	assert.Equal(t, domain.CategoryGood, p.Category)
	assert.Equal(t, 0.8, p.Confidence)
	assert.Equal(t, 90, p.HorizonDays)
	assert.Equal(t, domain.PredictionActive, p.Status)
	assert.Equal(t, "1.0", p.ModelVersion)
	assert.NotEmpty(t, p.Factors)
	assert.NotEmpty(t, p.Recommendations)

	stored, err := f.repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.EntityID, stored.EntityID)
	assert.Equal(t, domain.PredictionActive, stored.Status)
	assert.Nil(t, stored.VerifiedAt)
}

func TestPredict_Validation(t *testing.T) {
	f := newEngineFixture(t, 0.8)

	req := f.request(0.5)
	req.EntityID = ""
	_, err := f.engine.Predict(req)
	assert.True(t, errors.Is(err, domain.ErrInvalidSpec))

	req = f.request(0.5)
	req.PredictionType = ""
	_, err = f.engine.Predict(req)
	assert.True(t, errors.Is(err, domain.ErrInvalidSpec))

	req = f.request(0.5)
	req.TargetDate = time.Time{}
	_, err = f.engine.Predict(req)
	assert.True(t, errors.Is(err, domain.ErrInvalidSpec))
}

func TestPredict_InvalidHorizon(t *testing.T) {
	f := newEngineFixture(t, 0.8)

	req := f.request(0.5)
	req.TargetDate = testNow.AddDate(0, 0, -1)
	_, err := f.engine.Predict(req)
	assert.True(t, errors.Is(err, domain.ErrInvalidHorizon))

	// same-day targets have a zero-day horizon and are rejected too
	req.TargetDate = testNow.Add(2 * time.Hour)
	_, err = f.engine.Predict(req)
	assert.True(t, errors.Is(err, domain.ErrInvalidHorizon))
}

func TestPredict_ModelUnavailable(t *testing.T) {
	f := newEngineFixture(t, 0.8)

	require.NoError(t, f.registry.Deactivate(f.modelID))
	_, err := f.engine.Predict(f.request(0.5))
	assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
}

func TestPredict_UntrainedModel(t *testing.T) {
	f := newEngineFixture(t, 0.8)

	untrained, err := f.registry.Create(&registry.PredictionModel{
		Name:           "untrained",
		ModelKind:      domain.KindRegression,
		TargetVariable: "score",
		Algorithm:      algorithms.LinearRegression,
		Features:       []string{"x"},
		IsActive:       true,
		Version:        "1.0",
	})
	require.NoError(t, err)

	req := f.request(0.5)
	req.ModelID = untrained.ID
	_, err = f.engine.Predict(req)
	assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
}

func TestPredict_UnknownModel(t *testing.T) {
	f := newEngineFixture(t, 0.8)
	req := f.request(0.5)
	req.ModelID = 9999
	_, err := f.engine.Predict(req)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPredict_MissingFeature(t *testing.T) {
	f := newEngineFixture(t, 0.8)
	req := f.request(0.5)
	req.Features = map[string]float64{"wrong_name": 1}
	_, err := f.engine.Predict(req)
	assert.True(t, errors.Is(err, domain.ErrFeaturesUnavailable))
}

func TestPredict_NoFeatureSource(t *testing.T) {
	f := newEngineFixture(t, 0.8)
	req := f.request(0.5)
	req.Features = nil
	_, err := f.engine.Predict(req)
	assert.True(t, errors.Is(err, domain.ErrFeaturesUnavailable))
}

func TestPredict_AlertScenarios(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		confidence float64
		types      []domain.AlertType
	}{
		{"opportunity", 0.92, 0.8, []domain.AlertType{domain.AlertOpportunity}},
		{"risk warning", 0.25, 0.8, []domain.AlertType{domain.AlertRiskWarning}},
		{"quiet zone", 0.5, 0.8, nil},
		{"low confidence", 0.5, 0.55, []domain.AlertType{domain.AlertLowConfidence}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, tt.confidence)
			resp, err := f.engine.Predict(f.request(tt.value))
			require.NoError(t, err)

			require.Len(t, resp.Alerts, len(tt.types))
			for i, wantType := range tt.types {
				assert.Equal(t, wantType, resp.Alerts[i].Type)
				assert.Equal(t, resp.Prediction.ID, resp.Alerts[i].PredictionID)
			}
		})
	}
}

func TestExpireOverdue(t *testing.T) {
	f := newEngineFixture(t, 0.8)

	resp, err := f.engine.Predict(f.request(0.5))
	require.NoError(t, err)

	// a sweep before the target date leaves the prediction active
	n, err := f.repo.ExpireOverdue(testNow.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Zero(t, n)

	// past the target date it flips to expired
	n, err = f.repo.ExpireOverdue(testNow.AddDate(0, 0, 91))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	expired, err := f.repo.GetByID(resp.Prediction.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PredictionExpired, expired.Status)

	// expiry is idempotent
	n, err = f.repo.ExpireOverdue(testNow.AddDate(0, 0, 92))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetByEntity_Filters(t *testing.T) {
	f := newEngineFixture(t, 0.8)

	_, err := f.engine.Predict(f.request(0.5))
	require.NoError(t, err)
	req := f.request(0.7)
	req.TargetArea = "endurance"
	_, err = f.engine.Predict(req)
	require.NoError(t, err)

	all, err := f.repo.GetByEntity("user-1", ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byArea, err := f.repo.GetByEntity("user-1", ListFilter{TargetArea: "endurance"})
	require.NoError(t, err)
	require.Len(t, byArea, 1)
	assert.InDelta(t, 0.7, byArea[0].PredictedValue, 1e-6)

	none, err := f.repo.GetByEntity("user-2", ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
