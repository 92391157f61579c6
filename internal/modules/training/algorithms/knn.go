package algorithms

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KNNClassifier is a k-nearest-neighbors classifier over Euclidean
// distance. The fitted artifact stores the training set itself.
type KNNClassifier struct {
	K      int         `json:"k"`
	Points [][]float64 `json:"points"`
	Labels []float64   `json:"labels"`
}

func newKNN(hyper map[string]float64) *KNNClassifier {
	k := int(hyperOr(hyper, "k", 5))
	if k < 1 {
		k = 1
	}
	return &KNNClassifier{K: k}
}

// Fit stores the training set.
func (m *KNNClassifier) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("knn fit: %d rows vs %d labels", len(x), len(y))
	}
	m.Points = x
	m.Labels = y
	return nil
}

// Predict returns the mean label of the k nearest neighbors.
func (m *KNNClassifier) Predict(x []float64) float64 {
	neighbors := m.nearest(x)
	if len(neighbors) == 0 {
		return 0
	}
	sum := 0.0
	for _, idx := range neighbors {
		sum += m.Labels[idx]
	}
	return sum / float64(len(neighbors))
}

// Probability returns the positive-class fraction among the k nearest
// neighbors. KNN always exposes one.
func (m *KNNClassifier) Probability(x []float64) (float64, bool) {
	neighbors := m.nearest(x)
	if len(neighbors) == 0 {
		return 0, true
	}
	positive := 0
	for _, idx := range neighbors {
		if m.Labels[idx] >= 0.5 {
			positive++
		}
	}
	return float64(positive) / float64(len(neighbors)), true
}

func (m *KNNClassifier) nearest(x []float64) []int {
	n := len(m.Points)
	if n == 0 {
		return nil
	}

	type candidate struct {
		idx  int
		dist float64
	}
	candidates := make([]candidate, n)
	for i, p := range m.Points {
		candidates[i] = candidate{idx: i, dist: floats.Distance(p, x, 2)}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist == candidates[j].dist {
			return candidates[i].idx < candidates[j].idx
		}
		return candidates[i].dist < candidates[j].dist
	})

	k := m.K
	if k > n {
		k = n
	}
	result := make([]int, k)
	for i := 0; i < k; i++ {
		result[i] = candidates[i].idx
	}
	return result
}
