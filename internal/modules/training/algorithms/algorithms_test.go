package algorithms

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progressio/prediction-engine/internal/domain"
)

func TestCatalog_Supported(t *testing.T) {
	assert.True(t, Supported(domain.KindRegression, LinearRegression))
	assert.True(t, Supported(domain.KindRegression, RidgeRegression))
	assert.True(t, Supported(domain.KindClassification, LogisticRegression))
	assert.True(t, Supported(domain.KindClassification, KNN))

	// kind/algorithm pairs outside the catalog are rejected
	assert.False(t, Supported(domain.KindRegression, LogisticRegression))
	assert.False(t, Supported(domain.KindClassification, LinearRegression))
	assert.False(t, Supported(domain.KindRegression, "random_forest"))
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	_, err := New(domain.KindRegression, "gradient_boosting", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownAlgorithm))
}

func TestLinear_RecoversLine(t *testing.T) {
	// y = 2 + 3x, exactly linear so OLS must recover the coefficients
	x := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{2, 5, 8, 11, 14}

	model, err := New(domain.KindRegression, LinearRegression, nil)
	require.NoError(t, err)
	require.NoError(t, model.Fit(x, y))

	assert.InDelta(t, 8.0, model.Predict([]float64{2}), 1e-6)
	assert.InDelta(t, 17.0, model.Predict([]float64{5}), 1e-6)

	_, ok := model.Probability([]float64{2})
	assert.False(t, ok)
}

func TestRidge_ShrinksWeights(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{0, 3, 6, 9, 12}

	ols := newLinear(0)
	require.NoError(t, ols.Fit(x, y))
	ridge := newLinear(10)
	require.NoError(t, ridge.Fit(x, y))

	assert.Less(t, ridge.Weights[1], ols.Weights[1])
	assert.Greater(t, ridge.Weights[1], 0.0)
}

func TestLogistic_SeparatesClasses(t *testing.T) {
	x := [][]float64{{0.1}, {0.2}, {0.3}, {0.7}, {0.8}, {0.9}}
	y := []float64{0, 0, 0, 1, 1, 1}

	model, err := New(domain.KindClassification, LogisticRegression, map[string]float64{
		"learning_rate": 0.5,
		"iterations":    2000,
	})
	require.NoError(t, err)
	require.NoError(t, model.Fit(x, y))

	low, ok := model.Probability([]float64{0.1})
	assert.True(t, ok)
	high, _ := model.Probability([]float64{0.9})
	assert.Less(t, low, 0.5)
	assert.Greater(t, high, 0.5)
}

func TestKNN_PositiveFraction(t *testing.T) {
	x := [][]float64{{0}, {0.1}, {0.2}, {1.0}, {1.1}}
	y := []float64{0, 0, 0, 1, 1}

	model, err := New(domain.KindClassification, KNN, map[string]float64{"k": 3})
	require.NoError(t, err)
	require.NoError(t, model.Fit(x, y))

	// neighbors of 0.05 are the three zero-labelled points
	p, ok := model.Probability([]float64{0.05})
	assert.True(t, ok)
	assert.Equal(t, 0.0, p)

	// neighbors of 1.05 are {1.0, 1.1, 0.2}: two positives of three
	p, _ = model.Probability([]float64{1.05})
	assert.InDelta(t, 2.0/3.0, p, 1e-9)
	assert.InDelta(t, 2.0/3.0, model.Predict([]float64{1.05}), 1e-9)
}

func TestKNN_KLargerThanTrainingSet(t *testing.T) {
	model := newKNN(map[string]float64{"k": 10})
	require.NoError(t, model.Fit([][]float64{{0}, {1}}, []float64{0, 1}))
	assert.InDelta(t, 0.5, model.Predict([]float64{0.5}), 1e-9)
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	fitted := newLinear(0)
	require.NoError(t, fitted.Fit([][]float64{{0}, {1}, {2}}, []float64{1, 2, 3}))

	params, err := json.Marshal(fitted)
	require.NoError(t, err)

	restored, err := Unmarshal(domain.KindRegression, LinearRegression, params)
	require.NoError(t, err)
	assert.InDelta(t, fitted.Predict([]float64{1.5}), restored.Predict([]float64{1.5}), 1e-12)
}

func TestUnmarshal_UnknownAlgorithm(t *testing.T) {
	_, err := Unmarshal(domain.KindRegression, "svm", []byte(`{}`))
	assert.True(t, errors.Is(err, domain.ErrUnknownAlgorithm))
}
