package algorithms

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Logistic is a binary logistic regression classifier trained with batch
// gradient descent. Labels are thresholded at 0.5 into {0, 1}.
type Logistic struct {
	LearningRate float64   `json:"learning_rate"`
	Iterations   int       `json:"iterations"`
	Weights      []float64 `json:"weights"` // index 0 is the intercept
}

func newLogistic(hyper map[string]float64) *Logistic {
	return &Logistic{
		LearningRate: hyperOr(hyper, "learning_rate", 0.1),
		Iterations:   int(hyperOr(hyper, "iterations", 1000)),
	}
}

// Fit runs batch gradient descent on the logistic loss.
func (l *Logistic) Fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 || n != len(y) {
		return fmt.Errorf("logistic fit: %d rows vs %d labels", n, len(y))
	}
	d := len(x[0])

	labels := make([]float64, n)
	for i, v := range y {
		if v >= 0.5 {
			labels[i] = 1
		}
	}

	w := make([]float64, d+1)
	grad := make([]float64, d+1)
	for iter := 0; iter < l.Iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		for i, row := range x {
			p := sigmoid(w[0] + dot(w[1:], row))
			err := p - labels[i]
			grad[0] += err
			for j, xj := range row {
				grad[j+1] += err * xj
			}
		}
		floats.Scale(l.LearningRate/float64(n), grad)
		floats.Sub(w, grad)
	}

	l.Weights = w
	return nil
}

// Predict returns the positive-class probability, which doubles as the
// continuous predicted value.
func (l *Logistic) Predict(x []float64) float64 {
	p, _ := l.Probability(x)
	return p
}

// Probability exposes the sigmoid output as a true class probability.
func (l *Logistic) Probability(x []float64) (float64, bool) {
	if len(l.Weights) == 0 {
		return 0, true
	}
	return sigmoid(l.Weights[0] + dot(l.Weights[1:], x)), true
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(w, x []float64) float64 {
	n := len(w)
	if len(x) < n {
		n = len(x)
	}
	if n == 0 {
		return 0
	}
	return floats.Dot(w[:n], x[:n])
}
