package features

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
)

const timeFormat = "2006-01-02 15:04:05"

// Repository handles feature descriptor and entity feature persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new features repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "features").Logger(),
	}
}

// Create inserts a new feature descriptor
func (r *Repository) Create(fd *FeatureDescriptor) (*FeatureDescriptor, error) {
	if fd.Name == "" {
		return nil, fmt.Errorf("%w: feature name is required", domain.ErrInvalidSpec)
	}
	if !validFeatureTypes[fd.Type] {
		return nil, fmt.Errorf("%w: unknown feature type %q", domain.ErrInvalidSpec, fd.Type)
	}

	createdAt := time.Now().UTC()
	result, err := r.db.Exec(`
		INSERT INTO feature_descriptors (
			name, type, source, category, importance, target_correlation,
			preprocessing_method, missing_value_strategy, required, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fd.Name, fd.Type, fd.Source, fd.Category, fd.Importance, fd.TargetCorrelation,
		fd.PreprocessingMethod, fd.MissingValueStrategy, fd.Required, createdAt.Format(timeFormat),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("%w: feature %q already registered", domain.ErrInvalidSpec, fd.Name)
		}
		return nil, fmt.Errorf("failed to insert feature descriptor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	fd.ID = id
	fd.CreatedAt = createdAt
	return fd, nil
}

// GetAll retrieves all feature descriptors ordered by importance
func (r *Repository) GetAll() ([]FeatureDescriptor, error) {
	rows, err := r.db.Query(`
		SELECT id, name, type, source, category, importance, target_correlation,
		       preprocessing_method, missing_value_strategy, required, created_at
		FROM feature_descriptors
		ORDER BY importance DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feature descriptors: %w", err)
	}
	defer rows.Close()

	var descriptors []FeatureDescriptor
	for rows.Next() {
		var fd FeatureDescriptor
		var category, preprocessing, missing sql.NullString
		var createdAt string
		if err := rows.Scan(
			&fd.ID, &fd.Name, &fd.Type, &fd.Source, &category, &fd.Importance,
			&fd.TargetCorrelation, &preprocessing, &missing, &fd.Required, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feature descriptor: %w", err)
		}
		fd.Category = category.String
		fd.PreprocessingMethod = preprocessing.String
		fd.MissingValueStrategy = missing.String
		fd.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		descriptors = append(descriptors, fd)
	}
	return descriptors, rows.Err()
}

// GetByName retrieves one feature descriptor, nil if absent
func (r *Repository) GetByName(name string) (*FeatureDescriptor, error) {
	var fd FeatureDescriptor
	var category, preprocessing, missing sql.NullString
	var createdAt string
	err := r.db.QueryRow(`
		SELECT id, name, type, source, category, importance, target_correlation,
		       preprocessing_method, missing_value_strategy, required, created_at
		FROM feature_descriptors WHERE name = ?`, name).Scan(
		&fd.ID, &fd.Name, &fd.Type, &fd.Source, &category, &fd.Importance,
		&fd.TargetCorrelation, &preprocessing, &missing, &fd.Required, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature descriptor: %w", err)
	}
	fd.Category = category.String
	fd.PreprocessingMethod = preprocessing.String
	fd.MissingValueStrategy = missing.String
	fd.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return &fd, nil
}

// UpsertEntityValues records observed feature values for one entity
func (r *Repository) UpsertEntityValues(entityID string, values map[string]float64) error {
	if entityID == "" {
		return fmt.Errorf("%w: entity id is required", domain.ErrInvalidSpec)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: at least one feature value is required", domain.ErrInvalidSpec)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeFormat)
	for feature, value := range values {
		if _, err := tx.Exec(`
			INSERT INTO entity_features (entity_id, feature, value, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(entity_id, feature) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			entityID, feature, value, now,
		); err != nil {
			return fmt.Errorf("failed to upsert entity feature %q: %w", feature, err)
		}
	}

	return tx.Commit()
}

// EntityValues retrieves all recorded feature values for one entity
func (r *Repository) EntityValues(entityID string) (map[string]float64, error) {
	rows, err := r.db.Query(
		`SELECT feature, value FROM entity_features WHERE entity_id = ?`, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity features: %w", err)
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var feature string
		var value float64
		if err := rows.Scan(&feature, &value); err != nil {
			return nil, fmt.Errorf("failed to scan entity feature: %w", err)
		}
		values[feature] = value
	}
	return values, rows.Err()
}

// Vector assembles an ordered feature vector for one entity.
// Every requested feature must have a recorded value.
func (r *Repository) Vector(entityID string, featureNames []string) ([]float64, error) {
	values, err := r.EntityValues(entityID)
	if err != nil {
		return nil, err
	}

	vector := make([]float64, len(featureNames))
	for i, name := range featureNames {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("%w: entity %s has no value for feature %q",
				domain.ErrFeaturesUnavailable, entityID, name)
		}
		vector[i] = v
	}
	return vector, nil
}

// TrainingSet assembles a labeled matrix over every entity that has a
// recorded value for each feature and for the target variable.
// Rows are ordered by entity id for determinism.
func (r *Repository) TrainingSet(featureNames []string, targetVariable string) ([][]float64, []float64, error) {
	rows, err := r.db.Query(
		`SELECT DISTINCT entity_id FROM entity_features ORDER BY entity_id`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entityIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, nil, fmt.Errorf("failed to scan entity id: %w", err)
		}
		entityIDs = append(entityIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var x [][]float64
	var y []float64
	for _, entityID := range entityIDs {
		values, err := r.EntityValues(entityID)
		if err != nil {
			return nil, nil, err
		}

		label, ok := values[targetVariable]
		if !ok {
			continue
		}

		row := make([]float64, len(featureNames))
		complete := true
		for i, name := range featureNames {
			v, found := values[name]
			if !found {
				complete = false
				break
			}
			row[i] = v
		}
		if !complete {
			continue
		}

		x = append(x, row)
		y = append(y, label)
	}

	return x, y, nil
}
