package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/hwmond/hwmond/internal/errors"
	"github.com/hwmond/hwmond/internal/logger"
	"github.com/hwmond/hwmond/internal/probe"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, sessionID string, snapshot *probe.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := rowFromSnapshot(snapshot)

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO samples (
            timestamp, session_id,
            cpu_usage, cpu_temperature,
            gpu_usage, gpu_temperature,
            ram_usage,
            cpu_fan_rpm, gpu_fan_rpm,
            battery_percent, battery_status, battery_hours
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            session_id = excluded.session_id,
            cpu_usage = excluded.cpu_usage,
            cpu_temperature = excluded.cpu_temperature,
            gpu_usage = excluded.gpu_usage,
            gpu_temperature = excluded.gpu_temperature,
            ram_usage = excluded.ram_usage,
            cpu_fan_rpm = excluded.cpu_fan_rpm,
            gpu_fan_rpm = excluded.gpu_fan_rpm,
            battery_percent = excluded.battery_percent,
            battery_status = excluded.battery_status,
            battery_hours = excluded.battery_hours
    `,
		snapshot.Time.Unix(),
		sessionID,
		row.cpuUsage,
		row.cpuTemperature,
		row.gpuUsage,
		row.gpuTemperature,
		row.ramUsage,
		row.cpuFanRPM,
		row.gpuFanRPM,
		row.batteryPercent,
		row.batteryStatus,
		row.batteryHours,
	)
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

// sampleRow holds the nullable column values for one snapshot.
type sampleRow struct {
	cpuUsage       sql.NullFloat64
	cpuTemperature sql.NullFloat64
	gpuUsage       sql.NullFloat64
	gpuTemperature sql.NullFloat64
	ramUsage       sql.NullFloat64
	cpuFanRPM      sql.NullInt64
	gpuFanRPM      sql.NullInt64
	batteryPercent sql.NullInt64
	batteryStatus  sql.NullString
	batteryHours   sql.NullFloat64
}

// rowFromSnapshot maps measured values to columns and everything else to
// NULL.
func rowFromSnapshot(snapshot *probe.Snapshot) sampleRow {
	var row sampleRow

	row.cpuUsage = nullFloat(snapshot.CPUUsage)
	row.cpuTemperature = nullFloat(snapshot.CPUTemperature)
	row.ramUsage = nullFloat(snapshot.RAMUsage)

	if gpu, ok := snapshot.GPU.Value(); ok {
		row.gpuUsage = sql.NullFloat64{Float64: gpu.UsagePercent, Valid: true}
		row.gpuTemperature = sql.NullFloat64{Float64: gpu.TemperatureCelsius, Valid: true}
	}

	if fans, ok := snapshot.Fans.Value(); ok {
		row.cpuFanRPM = sql.NullInt64{Int64: int64(fans.CPUFanRPM), Valid: true}
		row.gpuFanRPM = sql.NullInt64{Int64: int64(fans.GPUFanRPM), Valid: true}
	}

	if battery, ok := snapshot.Battery.Value(); ok {
		row.batteryPercent = sql.NullInt64{Int64: int64(battery.Percentage), Valid: true}
		row.batteryStatus = sql.NullString{String: battery.Status.String(), Valid: true}
		row.batteryHours = sql.NullFloat64{Float64: battery.EstimatedHours, Valid: true}
	}

	return row
}

func nullFloat(res probe.Result[float64]) sql.NullFloat64 {
	if v, ok := res.Value(); ok {
		return sql.NullFloat64{Float64: v, Valid: true}
	}

	return sql.NullFloat64{}
}
