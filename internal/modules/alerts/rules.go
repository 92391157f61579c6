package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/progressio/prediction-engine/internal/domain"
)

// Rule thresholds. Each rule is independent: a single prediction can
// trigger zero, one or several alerts.
const (
	lowConfidenceThreshold = 0.65
	riskValueThreshold     = 0.35
	opportunityThreshold   = 0.85
)

// PredictionSignal is the slice of a prediction the rule engine inspects.
type PredictionSignal struct {
	PredictionID   string
	EntityID       string
	PredictedValue float64
	Confidence     float64
	TargetDate     time.Time
}

// evaluateRules runs the ordered rule list against one prediction and
// returns the alerts to persist, all in active state.
func evaluateRules(sig PredictionSignal, now time.Time) []Alert {
	var triggered []Alert
	expires := sig.TargetDate

	if sig.Confidence < lowConfidenceThreshold {
		triggered = append(triggered, Alert{
			ID:           uuid.NewString(),
			PredictionID: sig.PredictionID,
			EntityID:     sig.EntityID,
			Type:         domain.AlertLowConfidence,
			Severity:     "medium",
			Title:        "Low-confidence prediction",
			Message: fmt.Sprintf("Prediction confidence %.2f is below the %.2f threshold; treat the forecast as indicative only.",
				sig.Confidence, lowConfidenceThreshold),
			Actions: []string{
				"Collect additional feature observations for this entity",
				"Retrain the model with a larger dataset",
			},
			Priority:    5,
			Status:      domain.AlertActive,
			TriggeredAt: now,
			ExpiresAt:   &expires,
		})
	}

	if sig.PredictedValue < riskValueThreshold {
		triggered = append(triggered, Alert{
			ID:           uuid.NewString(),
			PredictionID: sig.PredictionID,
			EntityID:     sig.EntityID,
			Type:         domain.AlertRiskWarning,
			Severity:     "high",
			Title:        "Negative outcome risk",
			Message: fmt.Sprintf("Predicted outcome %.2f is below the %.2f risk threshold. Early intervention advised.",
				sig.PredictedValue, riskValueThreshold),
			Actions: []string{
				"Notify the responsible specialist",
				"Review the intervention plan before the target date",
			},
			Priority:    8,
			Status:      domain.AlertActive,
			TriggeredAt: now,
			ExpiresAt:   &expires,
		})
	}

	if sig.PredictedValue > opportunityThreshold {
		triggered = append(triggered, Alert{
			ID:           uuid.NewString(),
			PredictionID: sig.PredictionID,
			EntityID:     sig.EntityID,
			Type:         domain.AlertOpportunity,
			Severity:     "low",
			Title:        "Outcome opportunity",
			Message: fmt.Sprintf("Predicted outcome %.2f exceeds the %.2f opportunity threshold; the entity may be ready for harder objectives.",
				sig.PredictedValue, opportunityThreshold),
			Actions: []string{
				"Consider advancing the objectives for this entity",
			},
			Priority:    3,
			Status:      domain.AlertActive,
			TriggeredAt: now,
			ExpiresAt:   &expires,
		})
	}

	return triggered
}
