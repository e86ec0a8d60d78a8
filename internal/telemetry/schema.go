package telemetry

import (
	"database/sql"

	"github.com/hwmond/hwmond/internal/errors"
)

// initSchema initializes the database schema. Fields that can be unavailable
// are nullable so a sentinel value is never written as a real reading.
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            timestamp INTEGER PRIMARY KEY,
            session_id TEXT NOT NULL,
            cpu_usage REAL,
            cpu_temperature REAL,
            gpu_usage REAL,
            gpu_temperature REAL,
            ram_usage REAL,
            cpu_fan_rpm INTEGER,
            gpu_fan_rpm INTEGER,
            battery_percent INTEGER,
            battery_status TEXT,
            battery_hours REAL
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInit, err)
	}

	return nil
}
