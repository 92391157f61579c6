package formulas

import "math"

// MAE calculates the mean absolute error between predictions and actuals
func MAE(predicted, actual []float64) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return 0
	}
	sum := 0.0
	for i := range predicted {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(len(predicted))
}

// RMSE calculates the root mean squared error between predictions and actuals
func RMSE(predicted, actual []float64) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return 0
	}
	sum := 0.0
	for i := range predicted {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(predicted)))
}

// ClassificationScores holds binary classification evaluation metrics.
// Predictions and labels are thresholded at 0.5; the positive class is
// a label >= 0.5.
type ClassificationScores struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

// Classification computes accuracy, precision, recall and F1 for binary
// predictions against binary labels
func Classification(predicted, actual []float64) ClassificationScores {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return ClassificationScores{}
	}

	var tp, tn, fp, fn float64
	for i := range predicted {
		p := predicted[i] >= 0.5
		a := actual[i] >= 0.5
		switch {
		case p && a:
			tp++
		case !p && !a:
			tn++
		case p && !a:
			fp++
		default:
			fn++
		}
	}

	s := ClassificationScores{
		Accuracy: (tp + tn) / float64(len(predicted)),
	}
	if tp+fp > 0 {
		s.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		s.Recall = tp / (tp + fn)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}
