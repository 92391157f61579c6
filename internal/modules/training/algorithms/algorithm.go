// Package algorithms holds the closed catalog of model implementations.
// The catalog is keyed by (model kind, algorithm identifier); unknown keys
// are rejected, never substituted with a default.
package algorithms

import (
	"encoding/json"
	"fmt"

	"github.com/progressio/prediction-engine/internal/domain"
)

// Model is one fitted (or fittable) algorithm implementation.
type Model interface {
	// Fit trains on a feature matrix and aligned labels.
	Fit(x [][]float64, y []float64) error

	// Predict returns the predicted value for one feature vector.
	Predict(x []float64) float64

	// Probability returns the positive-class probability for one feature
	// vector and whether the algorithm exposes one. Algorithms without a
	// probabilistic output return ok=false.
	Probability(x []float64) (float64, bool)
}

// Algorithm identifiers.
const (
	LinearRegression   = "linear_regression"
	RidgeRegression    = "ridge_regression"
	LogisticRegression = "logistic_regression"
	KNN                = "knn"
)

type catalogKey struct {
	kind      domain.ModelKind
	algorithm string
}

var catalog = map[catalogKey]func(hyper map[string]float64) Model{
	{domain.KindRegression, LinearRegression}:       func(h map[string]float64) Model { return newLinear(0) },
	{domain.KindRegression, RidgeRegression}:        func(h map[string]float64) Model { return newLinear(hyperOr(h, "lambda", 1.0)) },
	{domain.KindClassification, LogisticRegression}: func(h map[string]float64) Model { return newLogistic(h) },
	{domain.KindClassification, KNN}:                func(h map[string]float64) Model { return newKNN(h) },
}

// Supported reports whether the (kind, algorithm) pair is in the catalog.
func Supported(kind domain.ModelKind, algorithm string) bool {
	_, ok := catalog[catalogKey{kind, algorithm}]
	return ok
}

// New constructs an unfitted model for the given (kind, algorithm) pair.
func New(kind domain.ModelKind, algorithm string, hyper map[string]float64) (Model, error) {
	construct, ok := catalog[catalogKey{kind, algorithm}]
	if !ok {
		return nil, fmt.Errorf("%w: %q for kind %q", domain.ErrUnknownAlgorithm, algorithm, kind)
	}
	return construct(hyper), nil
}

// Unmarshal reconstructs a fitted model from its serialized parameters.
func Unmarshal(kind domain.ModelKind, algorithm string, params []byte) (Model, error) {
	model, err := New(kind, algorithm, nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s parameters: %w", algorithm, err)
	}
	return model, nil
}

func hyperOr(hyper map[string]float64, key string, fallback float64) float64 {
	if v, ok := hyper[key]; ok {
		return v
	}
	return fallback
}
