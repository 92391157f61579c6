package alerts

import (
	"time"

	"github.com/progressio/prediction-engine/internal/domain"
)

// Alert is a derived signal tied to exactly one prediction and one
// target entity. Created in active state by the rule engine; transitions
// are operator-driven only.
type Alert struct {
	ID           string             `json:"id"`
	PredictionID string             `json:"prediction_id"`
	EntityID     string             `json:"entity_id"`
	Type         domain.AlertType   `json:"type"`
	Severity     string             `json:"severity"` // low, medium, high
	Title        string             `json:"title"`
	Message      string             `json:"message"`
	Actions      []string           `json:"suggested_actions,omitempty"`
	Priority     int                `json:"priority"` // 1-10
	Status       domain.AlertStatus `json:"status"`
	TriggeredAt  time.Time          `json:"triggered_at"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"`

	AcknowledgedBy *string    `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	DismissedAt    *time.Time `json:"dismissed_at,omitempty"`
}

// ListFilter narrows alert listings
type ListFilter struct {
	Status   string
	Type     string
	EntityID string
}
