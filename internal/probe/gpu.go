package probe

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/cenkalti/backoff/v4"
	"github.com/hwmond/hwmond/internal/cmdexec"
	"github.com/hwmond/hwmond/internal/errors"
	"github.com/hwmond/hwmond/internal/logger"
)

const (
	defaultNvidiaSMI   = "nvidia-smi"
	nvmlInitMaxElapsed = 2 * time.Second
)

var nvidiaSMIArgs = []string{
	"--query-gpu=temperature.gpu,utilization.gpu",
	"--format=csv,noheader,nounits",
}

type gpuStrategy interface {
	name() string
	sample(ctx context.Context) (GPUMetrics, error)
}

// GPUProbe reports GPU temperature and usage together. It tries NVML first
// and falls back to the nvidia-smi helper; the winning source is discovered
// on the first sample and cached for the process lifetime.
type GPUProbe struct {
	smiPath  string
	discover sync.Once
	strategy gpuStrategy // nil when no source is available
}

func NewGPUProbe(smiPath string) *GPUProbe {
	if smiPath == "" {
		smiPath = defaultNvidiaSMI
	}

	return &GPUProbe{smiPath: smiPath}
}

func (*GPUProbe) Name() string {
	return "gpu"
}

func (p *GPUProbe) Sample(ctx context.Context) Result[GPUMetrics] {
	p.discover.Do(func() {
		p.strategy = discoverGPUSource(ctx, p.smiPath)
	})

	if p.strategy == nil {
		return Unavailable[GPUMetrics]()
	}

	metrics, err := p.strategy.sample(ctx)
	if err != nil {
		return Failed[GPUMetrics](errors.New().Wrap(ErrQueryFailed, err))
	}

	return Ok(metrics)
}

func discoverGPUSource(ctx context.Context, smiPath string) gpuStrategy {
	if s, err := newNVMLStrategy(); err == nil {
		logger.Info().Str("source", s.name()).Msg("GPU metrics source selected")
		return s
	} else {
		logger.Debug().Err(err).Msg("NVML unavailable")
	}

	if s := probeNvidiaSMI(ctx, smiPath); s != nil {
		logger.Info().Str("source", s.name()).Msg("GPU metrics source selected")
		return s
	}

	logger.Debug().Msg("no GPU metrics source found")

	return nil
}

type nvmlStrategy struct {
	device nvml.Device
}

// newNVMLStrategy initializes NVML and grabs the first device handle. The
// driver may still be coming up when the service starts, so initialization
// is retried briefly with exponential backoff.
func newNVMLStrategy() (*nvmlStrategy, error) {
	errFactory := errors.New()

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = nvmlInitMaxElapsed
	if err := backoff.Retry(func() error {
		if ret := nvml.Init(); ret != nvml.SUCCESS {
			return errFactory.WithData(ErrNVMLFailure, nvml.ErrorString(ret))
		}
		return nil
	}, bo); err != nil {
		return nil, err
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		_ = nvml.Shutdown()
		return nil, errFactory.WithData(ErrNVMLFailure, nvml.ErrorString(ret))
	}
	if count == 0 {
		_ = nvml.Shutdown()
		return nil, errFactory.New(ErrNoGPUDetected)
	}

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		_ = nvml.Shutdown()
		return nil, errFactory.WithData(ErrNVMLFailure, nvml.ErrorString(ret))
	}

	if name, ret := device.GetName(); ret == nvml.SUCCESS {
		logger.Debug().Msgf("Detected GPU: %v", name)
	}

	return &nvmlStrategy{device: device}, nil
}

func (*nvmlStrategy) name() string {
	return "nvml"
}

func (s *nvmlStrategy) sample(_ context.Context) (GPUMetrics, error) {
	errFactory := errors.New()

	temp, ret := s.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		return GPUMetrics{}, errFactory.WithData(ErrNVMLFailure, nvml.ErrorString(ret))
	}

	util, ret := s.device.GetUtilizationRates()
	if ret != nvml.SUCCESS {
		return GPUMetrics{}, errFactory.WithData(ErrNVMLFailure, nvml.ErrorString(ret))
	}

	return GPUMetrics{
		TemperatureCelsius: float64(temp),
		UsagePercent:       clampPercent(float64(util.Gpu)),
	}, nil
}

type smiStrategy struct {
	path string
}

// probeNvidiaSMI checks whether the vendor helper is present and produces
// parseable output.
func probeNvidiaSMI(ctx context.Context, path string) *smiStrategy {
	resolved, ok := cmdexec.LookPath(path)
	if !ok {
		return nil
	}

	s := &smiStrategy{path: resolved}
	if _, err := s.sample(ctx); err != nil {
		return nil
	}

	return s
}

func (*smiStrategy) name() string {
	return "nvidia-smi"
}

func (s *smiStrategy) sample(ctx context.Context) (GPUMetrics, error) {
	errFactory := errors.New()

	out := cmdexec.Output(ctx, s.path, nvidiaSMIArgs...)
	if out == "" {
		return GPUMetrics{}, errFactory.WithMessage(ErrEmptyReading, "nvidia-smi produced no output")
	}

	return parseNvidiaSMIOutput(out)
}

// parseNvidiaSMIOutput reads the first line of csv,noheader,nounits output,
// e.g. "62, 45".
func parseNvidiaSMIOutput(out string) (GPUMetrics, error) {
	errFactory := errors.New()

	line, _, _ := strings.Cut(out, "\n")
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return GPUMetrics{}, errFactory.WithData(ErrParseFailed, line)
	}

	temp, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return GPUMetrics{}, errFactory.Wrap(ErrParseFailed, err)
	}

	usage, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return GPUMetrics{}, errFactory.Wrap(ErrParseFailed, err)
	}

	return GPUMetrics{
		TemperatureCelsius: temp,
		UsagePercent:       clampPercent(usage),
	}, nil
}
