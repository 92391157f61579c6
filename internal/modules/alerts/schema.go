package alerts

import "database/sql"

const alertsSchema = `
CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    prediction_id TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    type TEXT NOT NULL,
    severity TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    actions_json TEXT,
    priority INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    triggered_at TEXT NOT NULL,
    expires_at TEXT,
    acknowledged_by TEXT,
    acknowledged_at TEXT,
    resolved_at TEXT,
    dismissed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_alerts_prediction ON alerts(prediction_id);
CREATE INDEX IF NOT EXISTS idx_alerts_entity ON alerts(entity_id);
CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(alertsSchema)
	return err
}
