// Package scheduler drives the periodic sampling loop. One cycle runs all
// registered probes, assembles a snapshot and hands it to the consumer
// channel; cycles never overlap and the loop only stops on context
// cancellation.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hwmond/hwmond/internal/errors"
	"github.com/hwmond/hwmond/internal/logger"
	"github.com/hwmond/hwmond/internal/probe"
)

const snapshotBuffer = 4

type Scheduler struct {
	registry *probe.Registry
	interval time.Duration
	out      chan probe.Snapshot
	inFlight atomic.Bool
	skipped  atomic.Uint64
}

func New(registry *probe.Registry, interval time.Duration) (*Scheduler, error) {
	errFactory := errors.New()

	if registry == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "registry is required")
	}
	if interval <= 0 {
		return nil, errFactory.WithData(errors.ErrInvalidInterval, interval)
	}

	return &Scheduler{
		registry: registry,
		interval: interval,
		out:      make(chan probe.Snapshot, snapshotBuffer),
	}, nil
}

// Snapshots returns the consumer side of the snapshot handoff. Exactly one
// consumer should drain it; delivery never blocks the sampling loop.
func (s *Scheduler) Snapshots() <-chan probe.Snapshot {
	return s.out
}

// SkippedCycles reports how many ticks were dropped because the previous
// cycle was still running.
func (s *Scheduler) SkippedCycles() uint64 {
	return s.skipped.Load()
}

// Run samples until the context is canceled. An immediate cycle primes
// consumers before the first tick.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Info().Dur("interval", s.interval).Msg("sampling started")

	s.cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			close(s.out)
			logger.Info().Msg("sampling stopped")
			return ctx.Err()
		case <-ticker.C:
			if !s.inFlight.CompareAndSwap(false, true) {
				// Previous cycle still running; never overlap probe work.
				s.skipped.Add(1)
				logger.Debug().Msg("sampling cycle still in flight, tick skipped")
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer s.inFlight.Store(false)
				s.cycle(ctx)
			}()
		}
	}
}

// cycle runs one full sampling pass. A failure inside assembly or delivery
// is logged and the next tick proceeds; the loop itself must never die.
func (s *Scheduler) cycle(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.New().WithData(errors.ErrSamplingCycle, rec)
			logger.ErrorWithCode(err).Msg("sampling cycle failed")
		}
	}()

	if ctx.Err() != nil {
		return
	}

	snapshot := s.registry.Collect(ctx)
	s.deliver(snapshot)
}

// deliver pushes the snapshot without ever blocking: when the consumer lags,
// the oldest queued snapshot is dropped to make room.
func (s *Scheduler) deliver(snapshot probe.Snapshot) {
	select {
	case s.out <- snapshot:
		return
	default:
	}

	select {
	case <-s.out:
	default:
	}

	select {
	case s.out <- snapshot:
	default:
	}
}
