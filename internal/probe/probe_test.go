package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSampler[T any] struct {
	name   string
	result Result[T]
	delay  time.Duration
	panics bool
	calls  int
}

func (f *fakeSampler[T]) Name() string {
	return f.name
}

func (f *fakeSampler[T]) Sample(ctx context.Context) Result[T] {
	f.calls++
	if f.panics {
		panic("probe exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}

	return f.result
}

func TestCollectAllOk(t *testing.T) {
	registry := &Registry{
		CPUUsage:       &fakeSampler[float64]{name: "cpu_usage", result: Ok(45.0)},
		CPUTemperature: &fakeSampler[float64]{name: "cpu_temperature", result: Ok(62.3)},
		GPU:            &fakeSampler[GPUMetrics]{name: "gpu", result: Ok(GPUMetrics{TemperatureCelsius: 70, UsagePercent: 55})},
		RAM:            &fakeSampler[float64]{name: "ram_usage", result: Ok(38.2)},
		Fans:           &fakeSampler[FanReading]{name: "fan_speed", result: Ok(FanReading{CPUFanRPM: 3200, GPUFanRPM: 0})},
		Battery:        &fakeSampler[BatteryState]{name: "battery", result: Ok(BatteryState{Percentage: 78, Status: BatteryStatusCharging, EstimatedHours: 4.08})},
	}

	snap := registry.Collect(context.Background())

	usage, ok := snap.CPUUsage.Value()
	require.True(t, ok)
	assert.InDelta(t, 45.0, usage, 0.001)

	fans, ok := snap.Fans.Value()
	require.True(t, ok)
	assert.Equal(t, 3200, fans.CPUFanRPM)
	assert.Equal(t, 0, fans.GPUFanRPM)

	battery, ok := snap.Battery.Value()
	require.True(t, ok)
	assert.Equal(t, BatteryStatusCharging, battery.Status)
	assert.False(t, snap.Time.IsZero())
}

// A snapshot is always complete regardless of how individual probes resolve.
func TestCollectTotality(t *testing.T) {
	cases := []struct {
		name     string
		registry *Registry
	}{
		{
			name:     "all probes missing",
			registry: &Registry{},
		},
		{
			name: "all unavailable",
			registry: &Registry{
				CPUUsage:       &fakeSampler[float64]{name: "cpu_usage", result: Unavailable[float64]()},
				CPUTemperature: &fakeSampler[float64]{name: "cpu_temperature", result: Unavailable[float64]()},
				GPU:            &fakeSampler[GPUMetrics]{name: "gpu", result: Unavailable[GPUMetrics]()},
				RAM:            &fakeSampler[float64]{name: "ram_usage", result: Unavailable[float64]()},
				Fans:           &fakeSampler[FanReading]{name: "fan_speed", result: Unavailable[FanReading]()},
				Battery:        &fakeSampler[BatteryState]{name: "battery", result: Unavailable[BatteryState]()},
			},
		},
		{
			name: "mixed outcomes",
			registry: &Registry{
				CPUUsage: &fakeSampler[float64]{name: "cpu_usage", result: Ok(12.0)},
				GPU:      &fakeSampler[GPUMetrics]{name: "gpu", result: Failed[GPUMetrics](assert.AnError)},
				Fans:     &fakeSampler[FanReading]{name: "fan_speed", result: Unavailable[FanReading]()},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := tc.registry.Collect(context.Background())

			for _, complete := range []bool{
				snap.CPUUsage.IsOk() || snap.CPUUsage.IsUnavailable() || snap.CPUUsage.IsError(),
				snap.CPUTemperature.IsOk() || snap.CPUTemperature.IsUnavailable() || snap.CPUTemperature.IsError(),
				snap.GPU.IsOk() || snap.GPU.IsUnavailable() || snap.GPU.IsError(),
				snap.RAMUsage.IsOk() || snap.RAMUsage.IsUnavailable() || snap.RAMUsage.IsError(),
				snap.Fans.IsOk() || snap.Fans.IsUnavailable() || snap.Fans.IsError(),
				snap.Battery.IsOk() || snap.Battery.IsUnavailable() || snap.Battery.IsError(),
			} {
				assert.True(t, complete, "every snapshot field must carry an explicit state")
			}
		})
	}
}

func TestCollectProbePanicDegradesField(t *testing.T) {
	registry := &Registry{
		CPUUsage: &fakeSampler[float64]{name: "cpu_usage", panics: true},
		RAM:      &fakeSampler[float64]{name: "ram_usage", result: Ok(50.0)},
	}

	snap := registry.Collect(context.Background())

	assert.True(t, snap.CPUUsage.IsError(), "panicking probe degrades to Error")
	ram, ok := snap.RAMUsage.Value()
	require.True(t, ok, "other probes are unaffected")
	assert.InDelta(t, 50.0, ram, 0.001)
}

func TestCollectProbeTimeout(t *testing.T) {
	slow := &fakeSampler[float64]{name: "cpu_usage", result: Ok(1.0), delay: time.Second}
	registry := &Registry{
		CPUUsage: slow,
		Timeout:  10 * time.Millisecond,
	}

	start := time.Now()
	snap := registry.Collect(context.Background())

	assert.True(t, snap.CPUUsage.IsError(), "slow probe degrades to Error")
	assert.Less(t, time.Since(start), 500*time.Millisecond, "timeout bounds the cycle")
}

func TestResultStates(t *testing.T) {
	ok := Ok(42.0)
	v, present := ok.Value()
	assert.True(t, present)
	assert.InDelta(t, 42.0, v, 0.001)
	assert.True(t, ok.IsOk())

	unavailable := Unavailable[float64]()
	_, present = unavailable.Value()
	assert.False(t, present)
	assert.True(t, unavailable.IsUnavailable())
	assert.InDelta(t, 7.0, unavailable.ValueOr(7.0), 0.001)

	failed := Failed[float64](assert.AnError)
	assert.True(t, failed.IsError())
	assert.ErrorIs(t, failed.Err(), assert.AnError)
}
