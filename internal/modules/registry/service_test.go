package registry

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/progressio/prediction-engine/internal/domain"
	"github.com/progressio/prediction-engine/internal/events"
)

func setupTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, InitSchema(db))
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, zerolog.Nop())
	return NewService(repo, events.NewManager(zerolog.Nop()), zerolog.Nop()), repo
}

func validRequest() RegisterRequest {
	return RegisterRequest{
		Name:           "fitness-progress",
		ModelKind:      domain.KindRegression,
		TargetVariable: "progress_score",
		Algorithm:      "linear_regression",
		Features:       []string{"sessions_per_week", "avg_intensity"},
	}
}

func TestRegister_Defaults(t *testing.T) {
	svc, _ := setupTestService(t)

	model, err := svc.Register(validRequest())
	require.NoError(t, err)

	assert.NotZero(t, model.ID)
	assert.True(t, model.IsActive)
	assert.Equal(t, "1.0", model.Version)
	assert.Nil(t, model.ArtifactPath)
	assert.False(t, model.CreatedAt.IsZero())
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := setupTestService(t)

	tests := []struct {
		name    string
		mutate  func(*RegisterRequest)
		wantErr error
	}{
		{"missing name", func(r *RegisterRequest) { r.Name = "" }, domain.ErrInvalidSpec},
		{"bad kind", func(r *RegisterRequest) { r.ModelKind = "clustering" }, domain.ErrInvalidSpec},
		{"missing target", func(r *RegisterRequest) { r.TargetVariable = "" }, domain.ErrInvalidSpec},
		{"missing algorithm", func(r *RegisterRequest) { r.Algorithm = "" }, domain.ErrInvalidSpec},
		{"unknown algorithm", func(r *RegisterRequest) { r.Algorithm = "random_forest" }, domain.ErrUnknownAlgorithm},
		{"kind mismatch", func(r *RegisterRequest) { r.Algorithm = "logistic_regression" }, domain.ErrUnknownAlgorithm},
		{"no features", func(r *RegisterRequest) { r.Features = nil }, domain.ErrInvalidSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := svc.Register(req)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.Get(42)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRegistry_RoundTrip(t *testing.T) {
	svc, _ := setupTestService(t)

	req := validRequest()
	req.Hyperparameters = map[string]float64{"lambda": 2.5}
	req.Algorithm = "ridge_regression"
	created, err := svc.Register(req)
	require.NoError(t, err)

	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Features, got.Features)
	assert.Equal(t, 2.5, got.Hyperparameters["lambda"])
	assert.Equal(t, domain.KindRegression, got.ModelKind)
}

func TestDeactivate_FiltersFromActiveList(t *testing.T) {
	svc, _ := setupTestService(t)

	first, err := svc.Register(validRequest())
	require.NoError(t, err)
	req := validRequest()
	req.Name = "second"
	second, err := svc.Register(req)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(first.ID))

	active, err := svc.List(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	all, err := svc.List(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// deactivated models remain readable
	got, err := svc.Get(first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestDeactivate_NotFound(t *testing.T) {
	svc, _ := setupTestService(t)
	err := svc.Deactivate(99)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestApplyTrainingUpdate_StaleSeq(t *testing.T) {
	svc, repo := setupTestService(t)
	model, err := svc.Register(validRequest())
	require.NoError(t, err)

	mae := 0.1
	update := TrainingUpdate{MAE: &mae, TrainingRows: 10, TrainedAt: model.CreatedAt, ArtifactPath: "a.json"}
	require.NoError(t, repo.ApplyTrainingUpdate(model.ID, 0, update))

	// a second commit against the original sequence is rejected
	err = repo.ApplyTrainingUpdate(model.ID, 0, update)
	assert.True(t, errors.Is(err, domain.ErrConcurrentTraining))

	// committing against the bumped sequence succeeds
	require.NoError(t, repo.ApplyTrainingUpdate(model.ID, 1, update))
}
