package algorithms

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Linear is an ordinary least squares regressor with an intercept term.
// A positive Lambda adds an L2 penalty on the non-intercept weights
// (ridge regression).
type Linear struct {
	Lambda  float64   `json:"lambda"`
	Weights []float64 `json:"weights"` // index 0 is the intercept
}

func newLinear(lambda float64) *Linear {
	return &Linear{Lambda: lambda}
}

// Fit solves the (optionally regularized) normal equations.
func (l *Linear) Fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 || n != len(y) {
		return fmt.Errorf("linear fit: %d rows vs %d labels", n, len(y))
	}
	d := len(x[0])

	a := mat.NewDense(n, d+1, nil)
	for i, row := range x {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(n, y)

	var ata mat.Dense
	ata.Mul(a.T(), a)
	if l.Lambda > 0 {
		// Intercept is not penalized
		for j := 1; j <= d; j++ {
			ata.Set(j, j, ata.At(j, j)+l.Lambda)
		}
	}

	var atb mat.VecDense
	atb.MulVec(a.T(), b)

	var w mat.VecDense
	if err := w.SolveVec(&ata, &atb); err != nil {
		return fmt.Errorf("linear fit: singular system: %w", err)
	}

	l.Weights = make([]float64, d+1)
	copy(l.Weights, w.RawVector().Data)
	return nil
}

// Predict computes intercept + w·x
func (l *Linear) Predict(x []float64) float64 {
	if len(l.Weights) == 0 {
		return 0
	}
	v := l.Weights[0]
	for i, xi := range x {
		if i+1 >= len(l.Weights) {
			break
		}
		v += l.Weights[i+1] * xi
	}
	return v
}

// Probability is not exposed by least squares regression.
func (l *Linear) Probability(x []float64) (float64, bool) {
	return 0, false
}
