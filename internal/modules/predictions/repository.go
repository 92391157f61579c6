package predictions

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
)

const timeFormat = "2006-01-02 15:04:05"

// Repository handles prediction persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new predictions repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "predictions").Logger(),
	}
}

// DB exposes the underlying connection for cross-table transactions
// (the validation loop mutates predictions and inserts its own record
// in one commit).
func (r *Repository) DB() *sql.DB {
	return r.db
}

const predictionColumns = `id, model_id, model_version, entity_id, prediction_type,
	target_area, predicted_value, category, confidence, prediction_date, target_date,
	time_horizon_days, contributing_factors_json, recommendations_json, status,
	actual_value, actual_category, prediction_accuracy, verified_at, created_at`

// Create inserts a new prediction
func (r *Repository) Create(p *Prediction) (*Prediction, error) {
	factors, err := json.Marshal(p.Factors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contributing factors: %w", err)
	}
	recommendations, err := json.Marshal(p.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	p.CreatedAt = time.Now().UTC()
	_, err = r.db.Exec(`
		INSERT INTO predictions (
			id, model_id, model_version, entity_id, prediction_type, target_area,
			predicted_value, category, confidence, prediction_date, target_date,
			time_horizon_days, contributing_factors_json, recommendations_json,
			status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ModelID, p.ModelVersion, p.EntityID, p.PredictionType, p.TargetArea,
		p.PredictedValue, string(p.Category), p.Confidence,
		p.PredictionDate.UTC().Format(timeFormat), p.TargetDate.UTC().Format(timeFormat),
		p.HorizonDays, string(factors), string(recommendations),
		string(p.Status), p.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert prediction: %w", err)
	}
	return p, nil
}

// GetByID retrieves one prediction; domain.ErrNotFound if absent
func (r *Repository) GetByID(id string) (*Prediction, error) {
	row := r.db.QueryRow(`SELECT `+predictionColumns+` FROM predictions WHERE id = ?`, id)
	p, err := scanPrediction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: prediction %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// GetByEntity lists an entity's predictions, newest first, with filters
func (r *Repository) GetByEntity(entityID string, filter ListFilter) ([]Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE entity_id = ?`
	args := []interface{}{entityID}

	if filter.PredictionType != "" {
		query += ` AND prediction_type = ?`
		args = append(args, filter.PredictionType)
	}
	if filter.TargetArea != "" {
		query += ` AND target_area = ?`
		args = append(args, filter.TargetArea)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		query += ` AND prediction_date >= ?`
		args = append(args, filter.From.UTC().Format(timeFormat))
	}
	if filter.To != nil {
		query += ` AND prediction_date <= ?`
		args = append(args, filter.To.UTC().Format(timeFormat))
	}
	query += ` ORDER BY prediction_date DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var result []Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// MarkVerified records the observed outcome inside the caller's
// transaction. The conditional status check makes verification a
// one-time transition: a second attempt affects zero rows.
func (r *Repository) MarkVerified(tx *sql.Tx, id string, actual float64, actualCategory domain.Category, accuracy float64, verifiedAt time.Time) (bool, error) {
	result, err := tx.Exec(`
		UPDATE predictions SET
			actual_value = ?, actual_category = ?, prediction_accuracy = ?,
			verified_at = ?, status = ?
		WHERE id = ? AND status = ?`,
		actual, string(actualCategory), accuracy,
		verifiedAt.UTC().Format(timeFormat), string(domain.PredictionVerified),
		id, string(domain.PredictionActive),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark prediction verified: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// ExpireOverdue flips active predictions whose target date has passed to
// expired. Returns the number of expired predictions.
func (r *Repository) ExpireOverdue(now time.Time) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE predictions SET status = ?
		WHERE status = ? AND target_date < ?`,
		string(domain.PredictionExpired), string(domain.PredictionActive),
		now.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire predictions: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPrediction(row scanner) (*Prediction, error) {
	var p Prediction
	var category, status string
	var targetArea, factors, recommendations, actualCategory, verifiedAt sql.NullString
	var predictionDate, targetDate, createdAt string

	err := row.Scan(
		&p.ID, &p.ModelID, &p.ModelVersion, &p.EntityID, &p.PredictionType,
		&targetArea, &p.PredictedValue, &category, &p.Confidence,
		&predictionDate, &targetDate, &p.HorizonDays,
		&factors, &recommendations, &status,
		&p.ActualValue, &actualCategory, &p.PredictionAccuracy, &verifiedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.TargetArea = targetArea.String
	p.Category = domain.Category(category)
	p.Status = domain.PredictionStatus(status)
	p.PredictionDate, _ = time.Parse(timeFormat, predictionDate)
	p.TargetDate, _ = time.Parse(timeFormat, targetDate)
	p.CreatedAt, _ = time.Parse(timeFormat, createdAt)

	if factors.Valid && factors.String != "" && factors.String != "null" {
		if err := json.Unmarshal([]byte(factors.String), &p.Factors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contributing factors: %w", err)
		}
	}
	if recommendations.Valid && recommendations.String != "" && recommendations.String != "null" {
		if err := json.Unmarshal([]byte(recommendations.String), &p.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
		}
	}
	if actualCategory.Valid {
		c := domain.Category(actualCategory.String)
		p.ActualCategory = &c
	}
	if verifiedAt.Valid {
		t, _ := time.Parse(timeFormat, verifiedAt.String)
		p.VerifiedAt = &t
	}

	return &p, nil
}
