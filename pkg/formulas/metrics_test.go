package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMAE(t *testing.T) {
	assert.InDelta(t, 0.5, MAE([]float64{1, 2, 3}, []float64{1.5, 2.5, 2.5}), 1e-9)
	assert.Equal(t, 0.0, MAE([]float64{1, 2}, []float64{1, 2}))
	assert.Equal(t, 0.0, MAE(nil, nil))
	assert.Equal(t, 0.0, MAE([]float64{1}, []float64{1, 2}))
}

func TestRMSE(t *testing.T) {
	// errors of 3 and 4 give sqrt((9+16)/2)
	assert.InDelta(t, 3.5355339, RMSE([]float64{3, 0}, []float64{0, 4}), 1e-6)
	assert.Equal(t, 0.0, RMSE([]float64{2, 2}, []float64{2, 2}))
	assert.Equal(t, 0.0, RMSE(nil, []float64{1}))
}

func TestClassification(t *testing.T) {
	predicted := []float64{0.9, 0.8, 0.2, 0.1, 0.7, 0.3}
	actual := []float64{1, 1, 0, 0, 0, 1}
	// tp=2 (0.9,0.8), tn=2 (0.2,0.1), fp=1 (0.7), fn=1 (0.3)
	s := Classification(predicted, actual)

	assert.InDelta(t, 4.0/6.0, s.Accuracy, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.F1, 1e-9)
}

func TestClassification_Empty(t *testing.T) {
	s := Classification(nil, nil)
	assert.Equal(t, ClassificationScores{}, s)
}

func TestClassification_NoPositives(t *testing.T) {
	s := Classification([]float64{0.1, 0.2}, []float64{0, 0})
	assert.Equal(t, 1.0, s.Accuracy)
	assert.Equal(t, 0.0, s.Precision)
	assert.Equal(t, 0.0, s.Recall)
	assert.Equal(t, 0.0, s.F1)
}

func TestLinearTrend(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 3, 5, 7}
	alpha, beta := LinearTrend(x, y)
	assert.InDelta(t, 1.0, alpha, 1e-9)
	assert.InDelta(t, 2.0, beta, 1e-9)

	alpha, beta = LinearTrend([]float64{1}, []float64{1})
	assert.Equal(t, 0.0, alpha)
	assert.Equal(t, 0.0, beta)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 100))
	assert.Equal(t, 100.0, Clamp(240, 0, 100))
	assert.Equal(t, 42.0, Clamp(42, 0, 100))
}
