package training

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progressio/prediction-engine/internal/domain"
)

func TestDataset_Validate(t *testing.T) {
	valid := Dataset{X: [][]float64{{1, 2}, {3, 4}}, Y: []float64{0, 1}}
	assert.NoError(t, valid.Validate(2))

	tests := []struct {
		name string
		ds   Dataset
	}{
		{"empty", Dataset{}},
		{"misaligned labels", Dataset{X: [][]float64{{1, 2}}, Y: []float64{0, 1}}},
		{"ragged row", Dataset{X: [][]float64{{1, 2}, {3}}, Y: []float64{0, 1}}},
		{"wrong width", Dataset{X: [][]float64{{1, 2, 3}}, Y: []float64{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate(2)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedDataset))
		})
	}
}

func TestDataset_Split_Deterministic(t *testing.T) {
	ds := Dataset{
		X: [][]float64{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}, {9}},
		Y: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	}

	train1, test1 := ds.Split(0.8, 42)
	train2, test2 := ds.Split(0.8, 42)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
	assert.Len(t, train1.X, 8)
	assert.Len(t, test1.X, 2)

	// rows stay aligned with their labels through the shuffle
	for i, row := range train1.X {
		assert.Equal(t, row[0], train1.Y[i])
	}
	for i, row := range test1.X {
		assert.Equal(t, row[0], test1.Y[i])
	}
}

func TestDataset_Split_TinyDataset(t *testing.T) {
	ds := Dataset{X: [][]float64{{1}}, Y: []float64{1}}
	train, test := ds.Split(0.8, 1)
	assert.Equal(t, ds, train)
	assert.Equal(t, ds, test)
}

func TestDataset_Split_KeepsOneTestRow(t *testing.T) {
	ds := Dataset{X: [][]float64{{0}, {1}}, Y: []float64{0, 1}}
	train, test := ds.Split(0.99, 7)
	assert.Len(t, train.X, 1)
	assert.Len(t, test.X, 1)
}
