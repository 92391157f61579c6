package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/events"
	"github.com/progressio/prediction-engine/internal/modules/predictions"
)

// ExpirySweep flips active predictions whose target date has passed to
// expired. Expiry is handled by this periodic sweep, never lazily on
// read.
type ExpirySweep struct {
	repo   *predictions.Repository
	events *events.Manager
	log    zerolog.Logger
}

// NewExpirySweep creates the prediction expiry job
func NewExpirySweep(repo *predictions.Repository, eventManager *events.Manager, log zerolog.Logger) *ExpirySweep {
	return &ExpirySweep{
		repo:   repo,
		events: eventManager,
		log:    log.With().Str("job", "prediction_expiry").Logger(),
	}
}

// Name implements Job
func (j *ExpirySweep) Name() string {
	return "prediction_expiry_sweep"
}

// Run implements Job
func (j *ExpirySweep) Run() error {
	expired, err := j.repo.ExpireOverdue(time.Now())
	if err != nil {
		return err
	}
	if expired > 0 {
		j.log.Info().Int64("expired", expired).Msg("Expired overdue predictions")
		j.events.Emit(events.PredictionExpired, "scheduler", map[string]interface{}{
			"expired": expired,
		})
	}
	return nil
}
