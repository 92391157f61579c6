package analytics

import (
	"database/sql"
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/pkg/formulas"
)

// Smoothing window for the accuracy trend EMA
const emaPeriod = 5

// Service aggregates validation outcomes for dashboards. Read-only: it
// never mutates predictions or validations.
type Service struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewService creates a new analytics service
func NewService(db *sql.DB, log zerolog.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With().Str("service", "analytics").Logger(),
	}
}

// ModelAccuracy is the per-model slice of the accuracy report
type ModelAccuracy struct {
	ModelID      int64   `json:"model_id"`
	ModelName    string  `json:"model_name"`
	MeanAccuracy float64 `json:"mean_accuracy"`
	Validations  int     `json:"validations"`
}

// AccuracyReport summarizes validation outcomes
type AccuracyReport struct {
	Validations  int             `json:"validations"`
	MeanAccuracy float64         `json:"mean_accuracy"`
	AccurateRate float64         `json:"accurate_rate"`
	PerModel     []ModelAccuracy `json:"per_model"`
}

// Accuracy computes mean prediction accuracy and the accurate fraction,
// overall and per model
func (s *Service) Accuracy() (*AccuracyReport, error) {
	report := &AccuracyReport{PerModel: []ModelAccuracy{}}

	var accurate sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT COUNT(*), AVG(is_accurate) FROM validations`,
	).Scan(&report.Validations, &accurate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate validations: %w", err)
	}
	report.AccurateRate = accurate.Float64

	var mean sql.NullFloat64
	err = s.db.QueryRow(
		`SELECT AVG(prediction_accuracy) FROM predictions WHERE status = 'verified'`,
	).Scan(&mean)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate prediction accuracy: %w", err)
	}
	report.MeanAccuracy = mean.Float64

	rows, err := s.db.Query(`
		SELECT p.model_id, m.name, AVG(p.prediction_accuracy), COUNT(*)
		FROM predictions p
		JOIN prediction_models m ON m.id = p.model_id
		WHERE p.status = 'verified'
		GROUP BY p.model_id, m.name
		ORDER BY p.model_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate per-model accuracy: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ma ModelAccuracy
		if err := rows.Scan(&ma.ModelID, &ma.ModelName, &ma.MeanAccuracy, &ma.Validations); err != nil {
			return nil, fmt.Errorf("failed to scan per-model accuracy: %w", err)
		}
		report.PerModel = append(report.PerModel, ma)
	}
	return report, rows.Err()
}

// TrendPoint is one day of the accuracy trend
type TrendPoint struct {
	Date         string  `json:"date"`
	MeanAccuracy float64 `json:"mean_accuracy"`
	Validations  int     `json:"validations"`
}

// TrendReport is the time-bucketed accuracy series plus its fitted trend
type TrendReport struct {
	Points    []TrendPoint `json:"points"`
	Smoothed  []float64    `json:"smoothed,omitempty"` // EMA over the daily means
	Slope     float64      `json:"slope"`              // Accuracy points per day
	Direction string       `json:"direction"`          // improving, declining, flat
}

// Trends buckets verified predictions by day and fits a linear trend
// over the daily mean accuracy
func (s *Service) Trends() (*TrendReport, error) {
	rows, err := s.db.Query(`
		SELECT date(verified_at), AVG(prediction_accuracy), COUNT(*)
		FROM predictions
		WHERE status = 'verified'
		GROUP BY date(verified_at)
		ORDER BY date(verified_at)`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accuracy trend: %w", err)
	}
	defer rows.Close()

	report := &TrendReport{Points: []TrendPoint{}, Direction: "flat"}
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Date, &p.MeanAccuracy, &p.Validations); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		report.Points = append(report.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(report.Points) < 2 {
		return report, nil
	}

	xs := make([]float64, len(report.Points))
	ys := make([]float64, len(report.Points))
	for i, p := range report.Points {
		xs[i] = float64(i)
		ys[i] = p.MeanAccuracy
	}

	_, report.Slope = formulas.LinearTrend(xs, ys)
	switch {
	case report.Slope > 0.1:
		report.Direction = "improving"
	case report.Slope < -0.1:
		report.Direction = "declining"
	}

	if len(ys) >= emaPeriod {
		report.Smoothed = talib.Ema(ys, emaPeriod)
	}

	return report, nil
}
