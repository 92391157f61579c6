package alerts

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/metrics"
)

// Service runs the alert rule engine and drives the alert lifecycle
type Service struct {
	repo    *Repository
	events  *events.Manager
	metrics *metrics.Metrics
	now     func() time.Time
	log     zerolog.Logger
}

// NewService creates a new alerts service
func NewService(repo *Repository, eventManager *events.Manager, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		events:  eventManager,
		metrics: m,
		now:     time.Now,
		log:     log.With().Str("service", "alerts").Logger(),
	}
}

// EvaluatePrediction runs the rule list against one new prediction and
// persists all matching alerts in one batch.
func (s *Service) EvaluatePrediction(sig PredictionSignal) ([]Alert, error) {
	triggered := evaluateRules(sig, s.now().UTC())
	if len(triggered) == 0 {
		return nil, nil
	}

	if err := s.repo.CreateBatch(triggered); err != nil {
		return nil, err
	}

	for _, a := range triggered {
		s.metrics.AlertTriggered(string(a.Type), a.Severity)
		s.events.Emit(events.AlertTriggered, "alerts", map[string]interface{}{
			"alert_id":      a.ID,
			"prediction_id": a.PredictionID,
			"entity_id":     a.EntityID,
			"type":          string(a.Type),
			"severity":      a.Severity,
		})
	}

	s.log.Info().
		Str("prediction_id", sig.PredictionID).
		Int("alerts", len(triggered)).
		Msg("Alerts triggered")

	return triggered, nil
}

// Acknowledge transitions an alert to acknowledged and records the actor
func (s *Service) Acknowledge(id, actor string) (*Alert, error) {
	if err := s.repo.Acknowledge(id, actor, s.now()); err != nil {
		return nil, err
	}
	s.events.Emit(events.AlertAcknowledged, "alerts", map[string]interface{}{
		"alert_id": id,
		"actor":    actor,
	})
	return s.repo.GetByID(id)
}

// Resolve transitions an alert to resolved
func (s *Service) Resolve(id string) (*Alert, error) {
	if err := s.repo.Resolve(id, s.now()); err != nil {
		return nil, err
	}
	s.events.Emit(events.AlertResolved, "alerts", map[string]interface{}{
		"alert_id": id,
	})
	return s.repo.GetByID(id)
}

// Dismiss transitions an alert to dismissed
func (s *Service) Dismiss(id string) (*Alert, error) {
	if err := s.repo.Dismiss(id, s.now()); err != nil {
		return nil, err
	}
	s.events.Emit(events.AlertDismissed, "alerts", map[string]interface{}{
		"alert_id": id,
	})
	return s.repo.GetByID(id)
}

// List retrieves alerts with optional filters
func (s *Service) List(filter ListFilter) ([]Alert, error) {
	return s.repo.GetAll(filter)
}
