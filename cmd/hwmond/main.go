package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hwmond/hwmond/internal/config"
	"github.com/hwmond/hwmond/internal/errors"
	"github.com/hwmond/hwmond/internal/fananim"
	"github.com/hwmond/hwmond/internal/httpserver"
	"github.com/hwmond/hwmond/internal/logger"
	"github.com/hwmond/hwmond/internal/pid"
	"github.com/hwmond/hwmond/internal/power"
	"github.com/hwmond/hwmond/internal/probe"
	"github.com/hwmond/hwmond/internal/scheduler"
	"github.com/hwmond/hwmond/internal/telemetry"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context) error {
	registry := probe.NewRegistry(cfg.ProbeTimeoutDuration(), cfg.NvidiaSMI)
	sched, err := scheduler.New(registry, cfg.SampleInterval())
	if err != nil {
		return err
	}

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry collector")
		}
	}()

	hub := httpserver.NewHub()
	if cfg.HTTP {
		srv := httpserver.New(cfg.Listen, hub)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				logger.Error().Err(err).Msg("http server failed")
			}
		}()
	}

	schedErr := make(chan error, 1)
	go func() {
		schedErr <- sched.Run(ctx)
	}()

	consume(ctx, sched, collector, hub)

	return <-schedErr
}

// consume drains the snapshot stream until the scheduler closes it, feeding
// each cycle through the fan animators, the power monitor, telemetry, and the
// HTTP hub.
func consume(ctx context.Context, sched *scheduler.Scheduler, collector telemetry.Collector, hub *httpserver.Hub) {
	cpuFan := fananim.New()
	gpuFan := fananim.New()
	powerMon := power.NewMonitor(nil)

	for snapshot := range sched.Snapshots() {
		cpuRPM, gpuRPM := 0, 0
		if fans, ok := snapshot.Fans.Value(); ok {
			cpuRPM, gpuRPM = fans.CPUFanRPM, fans.GPUFanRPM
		}
		cpuDuration, _ := cpuFan.Observe(cpuRPM)
		gpuDuration, _ := gpuFan.Observe(gpuRPM)

		source := powerMon.Update(snapshot.Battery)

		if ctx.Err() == nil {
			if err := collector.Record(ctx, &snapshot); err != nil {
				logger.Error().Err(err).Msg("failed to record telemetry sample")
			}
		}

		hub.Publish(httpserver.Status{
			Snapshot:    snapshot,
			CPUFan:      httpserver.FanState{RPM: cpuRPM, Duration: cpuDuration},
			GPUFan:      httpserver.FanState{RPM: gpuRPM, Duration: gpuDuration},
			PowerSource: source,
		})

		logSnapshot(&snapshot, cpuRPM, gpuRPM, source)
	}
}

func logSnapshot(snapshot *probe.Snapshot, cpuRPM, gpuRPM int, source power.Source) {
	event := logger.Debug().
		Time("sampled_at", snapshot.Time).
		Str("power_source", source.String()).
		Int("cpu_fan_rpm", cpuRPM).
		Int("gpu_fan_rpm", gpuRPM)

	if v, ok := snapshot.CPUUsage.Value(); ok {
		event = event.Float64("cpu_usage", v)
	}
	if v, ok := snapshot.CPUTemperature.Value(); ok {
		event = event.Float64("cpu_temperature", v)
	}
	if gpu, ok := snapshot.GPU.Value(); ok {
		event = event.Float64("gpu_usage", gpu.UsagePercent).
			Float64("gpu_temperature", gpu.TemperatureCelsius)
	}
	if v, ok := snapshot.RAMUsage.Value(); ok {
		event = event.Float64("ram_usage", v)
	}
	if battery, ok := snapshot.Battery.Value(); ok {
		event = event.Int("battery_percent", battery.Percentage).
			Str("battery_status", battery.Status.String())
	}

	event.Msg("")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
