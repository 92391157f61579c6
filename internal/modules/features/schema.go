package features

import "database/sql"

const featuresSchema = `
CREATE TABLE IF NOT EXISTS feature_descriptors (
    id INTEGER PRIMARY KEY,
    name TEXT UNIQUE NOT NULL,
    type TEXT NOT NULL,
    source TEXT NOT NULL,
    category TEXT,
    importance REAL NOT NULL DEFAULT 0,
    target_correlation REAL NOT NULL DEFAULT 0,
    preprocessing_method TEXT,
    missing_value_strategy TEXT,
    required INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entity_features (
    entity_id TEXT NOT NULL,
    feature TEXT NOT NULL,
    value REAL NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (entity_id, feature)
);

CREATE INDEX IF NOT EXISTS idx_entity_features_feature ON entity_features(feature);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(featuresSchema)
	return err
}
