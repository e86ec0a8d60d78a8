package telemetry

import (
	"context"

	"github.com/hwmond/hwmond/internal/probe"
)

// Collector records sampled snapshots for later analysis.
type Collector interface {
	Record(ctx context.Context, snapshot *probe.Snapshot) error
	Close() error
}

// Repository is the storage backend behind a Collector.
type Repository interface {
	Store(ctx context.Context, sessionID string, snapshot *probe.Snapshot) error
	Close() error
}
