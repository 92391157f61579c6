package validation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05"

// Repository handles validation record persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new validation repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "validation").Logger(),
	}
}

// Insert writes one validation record inside the caller's transaction
func (r *Repository) Insert(tx *sql.Tx, v *Validation) error {
	result, err := tx.Exec(`
		INSERT INTO validations (
			prediction_id, validated_at, actual_value, predicted_value,
			absolute_error, percentage_error, is_accurate, threshold,
			error_analysis, validated_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.PredictionID, v.ValidatedAt.UTC().Format(timeFormat),
		v.ActualValue, v.PredictedValue, v.AbsoluteError, v.PercentageError,
		v.IsAccurate, v.Threshold, v.ErrorAnalysis, v.ValidatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert validation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	v.ID = id
	return nil
}

// GetByPredictionID retrieves the validation for one prediction, nil if absent
func (r *Repository) GetByPredictionID(predictionID string) (*Validation, error) {
	var v Validation
	var validatedAt string
	var errorAnalysis, validatedBy sql.NullString

	err := r.db.QueryRow(`
		SELECT id, prediction_id, validated_at, actual_value, predicted_value,
		       absolute_error, percentage_error, is_accurate, threshold,
		       error_analysis, validated_by
		FROM validations WHERE prediction_id = ?`, predictionID).Scan(
		&v.ID, &v.PredictionID, &validatedAt, &v.ActualValue, &v.PredictedValue,
		&v.AbsoluteError, &v.PercentageError, &v.IsAccurate, &v.Threshold,
		&errorAnalysis, &validatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get validation: %w", err)
	}

	v.ValidatedAt, _ = time.Parse(timeFormat, validatedAt)
	v.ErrorAnalysis = errorAnalysis.String
	v.ValidatedBy = validatedBy.String
	return &v, nil
}
