package training

import (
	"fmt"
	"math/rand"

	"github.com/progressio/prediction-engine/internal/domain"
)

// Dataset is a labeled feature matrix: one row of X per entity, aligned
// with one label in Y.
type Dataset struct {
	X [][]float64 `json:"x"`
	Y []float64   `json:"y"`
}

// Validate checks the dataset against the model's declared feature width.
// Empty datasets, ragged rows and misaligned labels all fail with
// domain.ErrMalformedDataset.
func (d *Dataset) Validate(featureWidth int) error {
	if len(d.X) == 0 {
		return fmt.Errorf("%w: empty dataset", domain.ErrMalformedDataset)
	}
	if len(d.X) != len(d.Y) {
		return fmt.Errorf("%w: %d rows vs %d labels", domain.ErrMalformedDataset, len(d.X), len(d.Y))
	}
	for i, row := range d.X {
		if len(row) != featureWidth {
			return fmt.Errorf("%w: row %d has %d values, model declares %d features",
				domain.ErrMalformedDataset, i, len(row), featureWidth)
		}
	}
	return nil
}

// Split partitions the dataset into train/test with a deterministic
// shuffle. ratio is the train fraction. With fewer than two rows both
// partitions are the full dataset; otherwise each partition keeps at
// least one row.
func (d *Dataset) Split(ratio float64, seed int64) (train, test Dataset) {
	n := len(d.X)
	if n < 2 {
		return *d, *d
	}

	indices := rand.New(rand.NewSource(seed)).Perm(n)

	trainN := int(float64(n) * ratio)
	if trainN < 1 {
		trainN = 1
	}
	if trainN >= n {
		trainN = n - 1
	}

	train = Dataset{X: make([][]float64, 0, trainN), Y: make([]float64, 0, trainN)}
	test = Dataset{X: make([][]float64, 0, n-trainN), Y: make([]float64, 0, n-trainN)}
	for i, idx := range indices {
		if i < trainN {
			train.X = append(train.X, d.X[idx])
			train.Y = append(train.Y, d.Y[idx])
		} else {
			test.X = append(test.X, d.X[idx])
			test.Y = append(test.Y, d.Y[idx])
		}
	}
	return train, test
}
