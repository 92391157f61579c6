package registry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
)

const timeFormat = "2006-01-02 15:04:05"

// Repository handles prediction model persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new model registry repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "registry").Logger(),
	}
}

const modelColumns = `id, name, model_kind, target_variable, algorithm,
	hyperparameters_json, features_json,
	accuracy, precision, recall, f1, mae, rmse,
	training_window_start, training_window_end, training_rows, last_trained_at,
	is_active, version, artifact_path, trained_seq, created_at`

// Create inserts a new prediction model
func (r *Repository) Create(m *PredictionModel) (*PredictionModel, error) {
	hyperparams, err := json.Marshal(m.Hyperparameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal hyperparameters: %w", err)
	}
	featureList, err := json.Marshal(m.Features)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feature list: %w", err)
	}

	createdAt := time.Now().UTC()
	result, err := r.db.Exec(`
		INSERT INTO prediction_models (
			name, model_kind, target_variable, algorithm,
			hyperparameters_json, features_json, is_active, version, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, string(m.ModelKind), m.TargetVariable, m.Algorithm,
		string(hyperparams), string(featureList), m.IsActive, m.Version,
		createdAt.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert prediction model: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	m.ID = id
	m.CreatedAt = createdAt
	return m, nil
}

// GetByID retrieves one model; domain.ErrNotFound if absent
func (r *Repository) GetByID(id int64) (*PredictionModel, error) {
	row := r.db.QueryRow(
		`SELECT `+modelColumns+` FROM prediction_models WHERE id = ?`, id)

	m, err := scanModel(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: model %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction model: %w", err)
	}
	return m, nil
}

// GetAll retrieves all models, optionally restricted to active ones
func (r *Repository) GetAll(activeOnly bool) ([]PredictionModel, error) {
	query := `SELECT ` + modelColumns + ` FROM prediction_models`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction models: %w", err)
	}
	defer rows.Close()

	var models []PredictionModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction model: %w", err)
		}
		models = append(models, *m)
	}
	return models, rows.Err()
}

// Deactivate flips the active flag. Models are never deleted so that
// historical predictions keep a valid model reference.
func (r *Repository) Deactivate(id int64) error {
	result, err := r.db.Exec(
		`UPDATE prediction_models SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate model: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: model %d", domain.ErrNotFound, id)
	}
	return nil
}

// ApplyTrainingUpdate commits one training run's scores, artifact pointer
// and metadata. The update is conditional on trained_seq still matching
// expectedSeq: a concurrent training that committed first makes this one
// fail with domain.ErrConcurrentTraining, leaving the row unchanged.
func (r *Repository) ApplyTrainingUpdate(id, expectedSeq int64, u TrainingUpdate) error {
	var windowStart, windowEnd interface{}
	if u.TrainingWindowStart != nil {
		windowStart = u.TrainingWindowStart.UTC().Format(timeFormat)
	}
	if u.TrainingWindowEnd != nil {
		windowEnd = u.TrainingWindowEnd.UTC().Format(timeFormat)
	}

	result, err := r.db.Exec(`
		UPDATE prediction_models SET
			accuracy = ?, precision = ?, recall = ?, f1 = ?, mae = ?, rmse = ?,
			training_window_start = ?, training_window_end = ?, training_rows = ?,
			last_trained_at = ?, artifact_path = ?, trained_seq = trained_seq + 1
		WHERE id = ? AND trained_seq = ?`,
		u.Accuracy, u.Precision, u.Recall, u.F1, u.MAE, u.RMSE,
		windowStart, windowEnd, u.TrainingRows,
		u.TrainedAt.UTC().Format(timeFormat), u.ArtifactPath,
		id, expectedSeq,
	)
	if err != nil {
		return fmt.Errorf("failed to apply training update: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// Either the model vanished or another training landed first.
		if _, getErr := r.GetByID(id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: model %d", domain.ErrConcurrentTraining, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanModel(row scanner) (*PredictionModel, error) {
	var m PredictionModel
	var kind string
	var hyperparams, featureList sql.NullString
	var windowStart, windowEnd, lastTrained, artifactPath sql.NullString
	var createdAt string

	err := row.Scan(
		&m.ID, &m.Name, &kind, &m.TargetVariable, &m.Algorithm,
		&hyperparams, &featureList,
		&m.Accuracy, &m.Precision, &m.Recall, &m.F1, &m.MAE, &m.RMSE,
		&windowStart, &windowEnd, &m.TrainingRows, &lastTrained,
		&m.IsActive, &m.Version, &artifactPath, &m.TrainedSeq, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	m.ModelKind = domain.ModelKind(kind)
	if hyperparams.Valid && hyperparams.String != "" && hyperparams.String != "null" {
		if err := json.Unmarshal([]byte(hyperparams.String), &m.Hyperparameters); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hyperparameters: %w", err)
		}
	}
	if featureList.Valid && featureList.String != "" {
		if err := json.Unmarshal([]byte(featureList.String), &m.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feature list: %w", err)
		}
	}
	if windowStart.Valid {
		t, _ := time.Parse(timeFormat, windowStart.String)
		m.TrainingWindowStart = &t
	}
	if windowEnd.Valid {
		t, _ := time.Parse(timeFormat, windowEnd.String)
		m.TrainingWindowEnd = &t
	}
	if lastTrained.Valid {
		t, _ := time.Parse(timeFormat, lastTrained.String)
		m.LastTrainedAt = &t
	}
	if artifactPath.Valid {
		m.ArtifactPath = &artifactPath.String
	}
	m.CreatedAt, _ = time.Parse(timeFormat, createdAt)

	return &m, nil
}
