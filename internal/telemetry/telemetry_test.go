package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/hwmond/hwmond/internal/probe"
	"github.com/hwmond/hwmond/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(ts time.Time) probe.Snapshot {
	return probe.Snapshot{
		Time:           ts,
		CPUUsage:       probe.Ok(45.0),
		CPUTemperature: probe.Ok(62.3),
		GPU:            probe.Unavailable[probe.GPUMetrics](),
		RAMUsage:       probe.Ok(38.2),
		Fans:           probe.Ok(probe.FanReading{CPUFanRPM: 3200, GPUFanRPM: 0}),
		Battery: probe.Ok(probe.BatteryState{
			Percentage:     78,
			Status:         probe.BatteryStatusCharging,
			EstimatedHours: 4.08,
		}),
	}
}

func TestRecordAndReadBack(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")

	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)

	ts := time.Unix(1700000000, 0)
	snap := testSnapshot(ts)
	require.NoError(t, collector.Record(context.Background(), &snap))
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var (
		cpuUsage  float64
		gpuUsage  sql.NullFloat64
		cpuFan    sql.NullInt64
		status    sql.NullString
		hours     sql.NullFloat64
		sessionID string
	)
	row := db.QueryRow(`
        SELECT cpu_usage, gpu_usage, cpu_fan_rpm, battery_status, battery_hours, session_id
        FROM samples WHERE timestamp = ?`, ts.Unix())
	require.NoError(t, row.Scan(&cpuUsage, &gpuUsage, &cpuFan, &status, &hours, &sessionID))

	assert.InDelta(t, 45.0, cpuUsage, 0.001)
	assert.False(t, gpuUsage.Valid, "unavailable GPU stores as NULL, never zero")
	require.True(t, cpuFan.Valid)
	assert.Equal(t, int64(3200), cpuFan.Int64)
	require.True(t, status.Valid)
	assert.Equal(t, "Charging", status.String)
	require.True(t, hours.Valid)
	assert.InDelta(t, 4.08, hours.Float64, 0.001)
	assert.NotEmpty(t, sessionID)
}

func TestRecordUpsertsOnSameTimestamp(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")

	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)
	defer collector.Close()

	ts := time.Unix(1700000000, 0)
	first := testSnapshot(ts)
	require.NoError(t, collector.Record(context.Background(), &first))

	second := testSnapshot(ts)
	second.CPUUsage = probe.Ok(99.0)
	require.NoError(t, collector.Record(context.Background(), &second))

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&count))
	assert.Equal(t, 1, count)

	var cpuUsage float64
	require.NoError(t, db.QueryRow("SELECT cpu_usage FROM samples WHERE timestamp = ?", ts.Unix()).Scan(&cpuUsage))
	assert.InDelta(t, 99.0, cpuUsage, 0.001)
}

func TestDisabledCollectorIsNoop(t *testing.T) {
	collector, err := telemetry.NewService(telemetry.Config{Enabled: false})
	require.NoError(t, err)

	snap := testSnapshot(time.Now())
	assert.NoError(t, collector.Record(context.Background(), &snap))
	assert.NoError(t, collector.Close())
}

func TestEnabledWithoutPathFails(t *testing.T) {
	_, err := telemetry.NewService(telemetry.Config{Enabled: true})
	assert.Error(t, err)
}

func TestRecordNilSnapshot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")

	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)
	defer collector.Close()

	assert.Error(t, collector.Record(context.Background(), nil))
}
