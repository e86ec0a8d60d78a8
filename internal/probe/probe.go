package probe

import (
	"context"
	"time"

	"github.com/hwmond/hwmond/internal/errors"
	"github.com/hwmond/hwmond/internal/logger"
)

// Sampler is the single capability every probe implements. A probe samples
// exactly one metric family from an external data source and resolves to a
// Result; it must not panic or block past the supplied context.
type Sampler[T any] interface {
	Name() string
	Sample(ctx context.Context) Result[T]
}

// Registry holds the ordered probe set for one sampling cycle. A nil slot
// reads as Unavailable, so tests can wire only the probes they exercise.
type Registry struct {
	CPUUsage       Sampler[float64]
	CPUTemperature Sampler[float64]
	GPU            Sampler[GPUMetrics]
	RAM            Sampler[float64]
	Fans           Sampler[FanReading]
	Battery        Sampler[BatteryState]

	// Timeout bounds each individual probe query. Zero disables the bound.
	Timeout time.Duration
}

// NewRegistry wires the default probe set. Strategy discovery inside the
// probes is lazy; construction does not touch the hardware.
func NewRegistry(timeout time.Duration, nvidiaSMIPath string) *Registry {
	return &Registry{
		CPUUsage:       NewCPUUsageProbe(),
		CPUTemperature: NewCPUTemperatureProbe(),
		GPU:            NewGPUProbe(nvidiaSMIPath),
		RAM:            NewRAMUsageProbe(),
		Fans:           NewFanProbe(),
		Battery:        NewBatteryProbe(),
		Timeout:        timeout,
	}
}

// Collect runs every probe once and assembles a complete snapshot. A probe
// failure degrades only its own field; Collect itself always returns a
// well-typed snapshot.
func (r *Registry) Collect(ctx context.Context) Snapshot {
	return Snapshot{
		Time:           time.Now(),
		CPUUsage:       sample(ctx, r.Timeout, r.CPUUsage),
		CPUTemperature: sample(ctx, r.Timeout, r.CPUTemperature),
		GPU:            sample(ctx, r.Timeout, r.GPU),
		RAMUsage:       sample(ctx, r.Timeout, r.RAM),
		Fans:           sample(ctx, r.Timeout, r.Fans),
		Battery:        sample(ctx, r.Timeout, r.Battery),
	}
}

// sample runs one probe with a bounded context and a panic guard. A probe
// that outlives its timeout is abandoned; its goroutine finishes into a
// buffered channel.
func sample[T any](ctx context.Context, timeout time.Duration, s Sampler[T]) Result[T] {
	if s == nil {
		return Unavailable[T]()
	}

	errFactory := errors.New()

	sctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan Result[T], 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- Failed[T](errFactory.WithData(ErrProbePanicked, rec))
			}
		}()
		done <- s.Sample(sctx)
	}()

	var res Result[T]
	select {
	case res = <-done:
	case <-sctx.Done():
		res = Failed[T](errFactory.Wrap(ErrProbeTimeout, sctx.Err()))
	}

	if res.IsError() {
		logger.Warn().Str("probe", s.Name()).Err(res.Err()).Msg("probe query failed")
	}

	return res
}
