package validation

import "database/sql"

const validationsSchema = `
CREATE TABLE IF NOT EXISTS validations (
    id INTEGER PRIMARY KEY,
    prediction_id TEXT UNIQUE NOT NULL,
    validated_at TEXT NOT NULL,
    actual_value REAL NOT NULL,
    predicted_value REAL NOT NULL,
    absolute_error REAL NOT NULL,
    percentage_error REAL NOT NULL,
    is_accurate INTEGER NOT NULL,
    threshold REAL NOT NULL,
    error_analysis TEXT,
    validated_by TEXT
);

CREATE INDEX IF NOT EXISTS idx_validations_accurate ON validations(is_accurate);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(validationsSchema)
	return err
}
