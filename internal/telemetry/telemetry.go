package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/hwmond/hwmond/internal/errors"
	"github.com/hwmond/hwmond/internal/logger"
	"github.com/hwmond/hwmond/internal/probe"
)

type service struct {
	repo      Repository
	sessionID string
}

// No-op implementation
type noopCollector struct{}

// NewService builds a Collector. When recording is disabled a no-op
// collector is returned so callers never branch. Each daemon run gets its
// own session id so rows from one run group together.
func NewService(cfg Config) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Telemetry recording disabled, using no-op collector")
		return &noopCollector{}, nil
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err // Already wrapped with appropriate error
	}

	sessionID := uuid.NewString()
	logger.Debug().
		Str("db_path", cfg.DBPath).
		Str("session_id", sessionID).
		Msg("Telemetry service initialized")

	return &service{
		repo:      repo,
		sessionID: sessionID,
	}, nil
}

func (s *service) Record(ctx context.Context, snapshot *probe.Snapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidSnapshot)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Store(ctx, s.sessionID, snapshot); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrServiceShutdown, err)
	}

	return nil
}

func (*noopCollector) Record(_ context.Context, _ *probe.Snapshot) error {
	return nil
}

func (*noopCollector) Close() error {
	return nil
}
