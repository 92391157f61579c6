package alerts

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/progressio/prediction-engine/internal/domain"
)

const timeFormat = "2006-01-02 15:04:05"

// Repository handles alert persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new alerts repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "alerts").Logger(),
	}
}

const alertColumns = `id, prediction_id, entity_id, type, severity, title, message,
	actions_json, priority, status, triggered_at, expires_at,
	acknowledged_by, acknowledged_at, resolved_at, dismissed_at`

// CreateBatch inserts all alerts in one transaction
func (r *Repository) CreateBatch(batch []Alert) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range batch {
		actions, err := json.Marshal(a.Actions)
		if err != nil {
			return fmt.Errorf("failed to marshal alert actions: %w", err)
		}
		var expiresAt interface{}
		if a.ExpiresAt != nil {
			expiresAt = a.ExpiresAt.UTC().Format(timeFormat)
		}
		if _, err := tx.Exec(`
			INSERT INTO alerts (
				id, prediction_id, entity_id, type, severity, title, message,
				actions_json, priority, status, triggered_at, expires_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.PredictionID, a.EntityID, string(a.Type), a.Severity, a.Title,
			a.Message, string(actions), a.Priority, string(a.Status),
			a.TriggeredAt.UTC().Format(timeFormat), expiresAt,
		); err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves one alert; domain.ErrNotFound if absent
func (r *Repository) GetByID(id string) (*Alert, error) {
	row := r.db.QueryRow(`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: alert %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return a, nil
}

// GetAll lists alerts, newest first, with optional filters
func (r *Repository) GetAll(filter ListFilter) ([]Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.EntityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, filter.EntityID)
	}
	query += ` ORDER BY triggered_at DESC, priority DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var result []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

// Acknowledge transitions active -> acknowledged and records the actor
func (r *Repository) Acknowledge(id, actor string, at time.Time) error {
	return r.transition(id, `
		UPDATE alerts SET status = ?, acknowledged_by = ?, acknowledged_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.AlertAcknowledged), actor, at.UTC().Format(timeFormat),
		id, string(domain.AlertActive))
}

// Resolve transitions active|acknowledged -> resolved
func (r *Repository) Resolve(id string, at time.Time) error {
	return r.transition(id, `
		UPDATE alerts SET status = ?, resolved_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		string(domain.AlertResolved), at.UTC().Format(timeFormat),
		id, string(domain.AlertActive), string(domain.AlertAcknowledged))
}

// Dismiss transitions active -> dismissed
func (r *Repository) Dismiss(id string, at time.Time) error {
	return r.transition(id, `
		UPDATE alerts SET status = ?, dismissed_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.AlertDismissed), at.UTC().Format(timeFormat),
		id, string(domain.AlertActive))
}

// transition runs a conditional status update; zero affected rows means
// either an unknown alert or a transition the current state forbids.
func (r *Repository) transition(id, query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.GetByID(id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: alert %s", domain.ErrInvalidTransition, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row scanner) (*Alert, error) {
	var a Alert
	var alertType, status string
	var actions, expiresAt, acknowledgedBy, acknowledgedAt, resolvedAt, dismissedAt sql.NullString
	var triggeredAt string

	err := row.Scan(
		&a.ID, &a.PredictionID, &a.EntityID, &alertType, &a.Severity, &a.Title,
		&a.Message, &actions, &a.Priority, &status, &triggeredAt, &expiresAt,
		&acknowledgedBy, &acknowledgedAt, &resolvedAt, &dismissedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Type = domain.AlertType(alertType)
	a.Status = domain.AlertStatus(status)
	a.TriggeredAt, _ = time.Parse(timeFormat, triggeredAt)

	if actions.Valid && actions.String != "" && actions.String != "null" {
		if err := json.Unmarshal([]byte(actions.String), &a.Actions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alert actions: %w", err)
		}
	}
	if expiresAt.Valid {
		t, _ := time.Parse(timeFormat, expiresAt.String)
		a.ExpiresAt = &t
	}
	if acknowledgedBy.Valid {
		a.AcknowledgedBy = &acknowledgedBy.String
	}
	if acknowledgedAt.Valid {
		t, _ := time.Parse(timeFormat, acknowledgedAt.String)
		a.AcknowledgedAt = &t
	}
	if resolvedAt.Valid {
		t, _ := time.Parse(timeFormat, resolvedAt.String)
		a.ResolvedAt = &t
	}
	if dismissedAt.Valid {
		t, _ := time.Parse(timeFormat, dismissedAt.String)
		a.DismissedAt = &t
	}

	return &a, nil
}
