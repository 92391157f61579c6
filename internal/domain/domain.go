package domain

// ModelKind identifies what a model predicts: a continuous outcome or a class.
type ModelKind string

const (
	KindRegression     ModelKind = "regression"
	KindClassification ModelKind = "classification"
)

// Valid reports whether the kind is one of the two supported kinds.
func (k ModelKind) Valid() bool {
	return k == KindRegression || k == KindClassification
}

// Category is one of four fixed ordinal bands derived from a predicted value.
type Category string

const (
	CategoryExcellent        Category = "excellent"
	CategoryGood             Category = "good"
	CategoryAverage          Category = "average"
	CategoryNeedsImprovement Category = "needs_improvement"
)

// CategoryFor derives the ordinal band for a predicted value.
// The bands are fixed: >=0.8 excellent, >=0.6 good, >=0.4 average,
// everything below needs_improvement. Every place that derives a
// category must go through this function.
func CategoryFor(value float64) Category {
	switch {
	case value >= 0.8:
		return CategoryExcellent
	case value >= 0.6:
		return CategoryGood
	case value >= 0.4:
		return CategoryAverage
	default:
		return CategoryNeedsImprovement
	}
}

// PredictionStatus is the lifecycle state of a Prediction.
type PredictionStatus string

const (
	PredictionActive   PredictionStatus = "active"
	PredictionVerified PredictionStatus = "verified"
	PredictionExpired  PredictionStatus = "expired"
)

// AlertStatus is the operator-driven lifecycle state of an Alert.
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
	AlertDismissed    AlertStatus = "dismissed"
)

// AlertType classifies the signal an Alert carries.
type AlertType string

const (
	AlertLowConfidence AlertType = "low_confidence"
	AlertRiskWarning   AlertType = "risk_warning"
	AlertOpportunity   AlertType = "opportunity"
)
