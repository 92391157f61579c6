package predictions

import "database/sql"

const predictionsSchema = `
CREATE TABLE IF NOT EXISTS predictions (
    id TEXT PRIMARY KEY,
    model_id INTEGER NOT NULL,
    model_version TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    prediction_type TEXT NOT NULL,
    target_area TEXT,
    predicted_value REAL NOT NULL,
    category TEXT NOT NULL,
    confidence REAL NOT NULL,
    prediction_date TEXT NOT NULL,
    target_date TEXT NOT NULL,
    time_horizon_days INTEGER NOT NULL,
    contributing_factors_json TEXT,
    recommendations_json TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    actual_value REAL,
    actual_category TEXT,
    prediction_accuracy REAL,
    verified_at TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_entity ON predictions(entity_id);
CREATE INDEX IF NOT EXISTS idx_predictions_model ON predictions(model_id);
CREATE INDEX IF NOT EXISTS idx_predictions_status ON predictions(status);
CREATE INDEX IF NOT EXISTS idx_predictions_target_date ON predictions(target_date);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(predictionsSchema)
	return err
}
