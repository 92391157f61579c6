package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progressio/prediction-engine/internal/config"
	"github.com/progressio/prediction-engine/internal/database"
	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/metrics"
	"github.com/progressio/prediction-engine/internal/modules/alerts"
	"github.com/progressio/prediction-engine/internal/modules/features"
	"github.com/progressio/prediction-engine/internal/modules/predictions"
	"github.com/progressio/prediction-engine/internal/modules/registry"
	"github.com/progressio/prediction-engine/internal/modules/training"
	"github.com/progressio/prediction-engine/internal/modules/validation"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	db, err := database.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(
		features.InitSchema,
		registry.InitSchema,
		predictions.InitSchema,
		alerts.InitSchema,
		validation.InitSchema,
	))

	store, err := training.NewArtifactStore(filepath.Join(dir, "artifacts"))
	require.NoError(t, err)
	m, err := metrics.NewWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	cfg := &config.Config{
		Port:              0,
		DatabasePath:      filepath.Join(dir, "test.db"),
		ArtifactsDir:      filepath.Join(dir, "artifacts"),
		AccuracyThreshold: 0.15,
		TrainSplit:        0.8,
		TrainSeed:         42,
		DefaultConfidence: 0.75,
	}

	return New(Config{
		Port:    0,
		Log:     zerolog.Nop(),
		DB:      db,
		Config:  cfg,
		Events:  events.NewManager(zerolog.Nop()),
		Metrics: m,
		Store:   store,
		DevMode: true,
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func identityDataset() map[string]interface{} {
	var x [][]float64
	var y []float64
	for i := 0; i <= 20; i++ {
		v := float64(i) / 20.0
		x = append(x, []float64{v})
		y = append(y, v)
	}
	return map[string]interface{}{"dataset": map[string]interface{}{"x": x, "y": y}}
}

func TestHealthAndStatus(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prediction-engine")

	rec = doJSON(t, srv, http.MethodGet, "/api/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutines")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestPredictionLifecycle drives the whole flow over HTTP: register a
// model, train it on an explicit dataset, generate a prediction with an
// alert, acknowledge the alert and validate the outcome.
func TestPredictionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/models", registry.RegisterRequest{
		Name:           "progress-model",
		ModelKind:      "regression",
		TargetVariable: "progress_score",
		Algorithm:      "linear_regression",
		Features:       []string{"recent_score"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var model registry.PredictionModel
	decode(t, rec, &model)
	require.NotZero(t, model.ID)

	// predicting before the first training is rejected
	targetDate := time.Now().UTC().AddDate(0, 0, 90)
	predictBody := map[string]interface{}{
		"entity_id":       "user-1",
		"model_id":        model.ID,
		"prediction_type": "progress",
		"target_area":     "strength",
		"target_date":     targetDate.Format(time.RFC3339),
		"features":        map[string]float64{"recent_score": 0.92},
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/predict", predictBody)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/models/%d/train", model.ID), identityDataset())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var trained training.Result
	decode(t, rec, &trained)
	require.NotNil(t, trained.MAE)
	assert.NotEmpty(t, trained.ArtifactPath)

	rec = doJSON(t, srv, http.MethodPost, "/api/predict", predictBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp predictions.PredictResponse
	decode(t, rec, &resp)
	require.NotNil(t, resp.Prediction)
	assert.InDelta(t, 0.92, resp.Prediction.PredictedValue, 1e-6)
	assert.Equal(t, "excellent", string(resp.Prediction.Category))
	assert.Equal(t, 0.75, resp.Prediction.Confidence)

	// 0.92 crosses the opportunity threshold
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "opportunity", string(resp.Alerts[0].Type))

	rec = doJSON(t, srv, http.MethodGet, "/api/predictions/"+resp.Prediction.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/entity/user-1/predictions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []predictions.Prediction
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	alertID := resp.Alerts[0].ID
	rec = doJSON(t, srv, http.MethodPut, "/api/alerts/"+alertID+"/acknowledge", map[string]string{
		"acknowledged_by": "coach-7",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var acked alerts.Alert
	decode(t, rec, &acked)
	assert.Equal(t, "acknowledged", string(acked.Status))

	rec = doJSON(t, srv, http.MethodPost, "/api/predictions/"+resp.Prediction.ID+"/validate", map[string]interface{}{
		"actual_value": 0.9,
		"validated_by": "coach-7",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var v validation.Validation
	decode(t, rec, &v)
	assert.True(t, v.IsAccurate)

	// validation is a one-time transition
	rec = doJSON(t, srv, http.MethodPost, "/api/predictions/"+resp.Prediction.ID+"/validate", map[string]interface{}{
		"actual_value": 0.9,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/analytics/accuracy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "per_model")
}

func TestFeatureStoreDrivenPrediction(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/features", map[string]interface{}{
		"name":       "recent_score",
		"type":       "numerical",
		"source":     "activity",
		"importance": 0.9,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPut, "/api/entity/user-1/features", map[string]interface{}{
		"features": map[string]float64{"recent_score": 0.25, "progress_score": 0.3},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/entity/user-1/features", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recent_score")

	rec = doJSON(t, srv, http.MethodPost, "/api/models", registry.RegisterRequest{
		Name:           "progress-model",
		ModelKind:      "regression",
		TargetVariable: "progress_score",
		Algorithm:      "linear_regression",
		Features:       []string{"recent_score"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var model registry.PredictionModel
	decode(t, rec, &model)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/models/%d/train", model.ID), identityDataset())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// no inline features: the engine resolves the vector from the store
	rec = doJSON(t, srv, http.MethodPost, "/api/predict", map[string]interface{}{
		"entity_id":       "user-1",
		"model_id":        model.ID,
		"prediction_type": "progress",
		"target_date":     time.Now().UTC().AddDate(0, 0, 30).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp predictions.PredictResponse
	decode(t, rec, &resp)
	assert.InDelta(t, 0.25, resp.Prediction.PredictedValue, 1e-6)

	// 0.25 crosses the risk threshold
	rec = doJSON(t, srv, http.MethodGet, "/api/alerts?type=risk_warning", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []alerts.Alert
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, resp.Prediction.ID, list[0].PredictionID)
}

func TestRegisterModel_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/models", registry.RegisterRequest{
		Name:           "bad",
		ModelKind:      "regression",
		TargetVariable: "score",
		Algorithm:      "random_forest",
		Features:       []string{"x"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/models/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/models/999/train", identityDataset())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrainWithoutData_Unprocessable(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/models", registry.RegisterRequest{
		Name:           "empty",
		ModelKind:      "regression",
		TargetVariable: "progress_score",
		Algorithm:      "linear_regression",
		Features:       []string{"recent_score"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var model registry.PredictionModel
	decode(t, rec, &model)

	// no explicit dataset and no entity has complete feature values
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/models/%d/train", model.ID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
