package registry

import "database/sql"

const registrySchema = `
CREATE TABLE IF NOT EXISTS prediction_models (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    model_kind TEXT NOT NULL,
    target_variable TEXT NOT NULL,
    algorithm TEXT NOT NULL,
    hyperparameters_json TEXT,
    features_json TEXT NOT NULL,
    accuracy REAL,
    precision REAL,
    recall REAL,
    f1 REAL,
    mae REAL,
    rmse REAL,
    training_window_start TEXT,
    training_window_end TEXT,
    training_rows INTEGER NOT NULL DEFAULT 0,
    last_trained_at TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    version TEXT NOT NULL,
    artifact_path TEXT,
    trained_seq INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prediction_models_active ON prediction_models(is_active);
CREATE INDEX IF NOT EXISTS idx_prediction_models_target ON prediction_models(target_variable);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(registrySchema)
	return err
}
