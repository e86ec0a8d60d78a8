package probe

import (
	"context"
	"strings"
	"sync"

	"github.com/hwmond/hwmond/internal/errors"
	"github.com/hwmond/hwmond/internal/logger"
	"github.com/yusufpapurcu/wmi"
)

// FanProbe reads CPU and GPU fan RPM. Sources are tried in priority order:
// the vendor gaming WMI class first, then the LibreHardwareMonitor and
// OpenHardwareMonitor sensor namespaces. The first source that yields data
// is cached for the process lifetime.
type FanProbe struct {
	discover sync.Once
	strategy *fanStrategy // nil when no source is available
}

type fanStrategy struct {
	label string
	query func() (FanReading, error)
}

func NewFanProbe() *FanProbe {
	return &FanProbe{}
}

func (*FanProbe) Name() string {
	return "fan_speed"
}

func (p *FanProbe) Sample(_ context.Context) Result[FanReading] {
	p.discover.Do(func() {
		p.strategy = discoverFanSource()
	})

	if p.strategy == nil {
		return Unavailable[FanReading]()
	}

	reading, err := p.strategy.query()
	if err != nil {
		return Failed[FanReading](errors.New().Wrap(ErrQueryFailed, err))
	}

	return Ok(reading)
}

func discoverFanSource() *fanStrategy {
	strategies := []*fanStrategy{
		{label: "vendor_wmi", query: queryVendorFans},
		{label: "librehardwaremonitor", query: monitorFanQuery(`root\LibreHardwareMonitor`)},
		{label: "openhardwaremonitor", query: monitorFanQuery(`root\OpenHardwareMonitor`)},
	}

	for _, s := range strategies {
		if _, err := s.query(); err == nil {
			logger.Info().Str("source", s.label).Msg("fan speed source selected")
			return s
		}
	}

	logger.Debug().Msg("no fan speed source found")

	return nil
}

// acerGamingFanSpeed maps the AcerGaming_FanSpeed WMI class exposed by the
// vendor driver on Predator and Nitro machines.
type acerGamingFanSpeed struct {
	CpuFanSpeed *uint32
	GpuFanSpeed *uint32
}

func queryVendorFans() (FanReading, error) {
	errFactory := errors.New()

	var rows []acerGamingFanSpeed
	err := wmi.QueryNamespace(
		"SELECT CpuFanSpeed, GpuFanSpeed FROM AcerGaming_FanSpeed",
		&rows,
		`root\WMI`,
	)
	if err != nil {
		return FanReading{}, errFactory.Wrap(ErrQueryFailed, err)
	}
	if len(rows) == 0 {
		return FanReading{}, errFactory.New(ErrEmptyReading)
	}

	var reading FanReading
	for _, row := range rows {
		if row.CpuFanSpeed != nil && reading.CPUFanRPM == 0 {
			reading.CPUFanRPM = int(*row.CpuFanSpeed)
		}
		if row.GpuFanSpeed != nil && reading.GPUFanRPM == 0 {
			reading.GPUFanRPM = int(*row.GpuFanSpeed)
		}
	}

	return reading, nil
}

// fanSensor maps Sensor rows from the hardware-monitor WMI namespaces.
type fanSensor struct {
	Name  string
	Value float64
}

func monitorFanQuery(namespace string) func() (FanReading, error) {
	return func() (FanReading, error) {
		errFactory := errors.New()

		var sensors []fanSensor
		err := wmi.QueryNamespace(
			"SELECT Name, Value FROM Sensor WHERE SensorType = 'Fan'",
			&sensors,
			namespace,
		)
		if err != nil {
			return FanReading{}, errFactory.Wrap(ErrQueryFailed, err)
		}
		if len(sensors) == 0 {
			return FanReading{}, errFactory.New(ErrEmptyReading)
		}

		return classifyFanSensors(sensors), nil
	}
}

// classifyFanSensors assigns named fan sensors to the CPU and GPU slots.
// Monitor tools label fans either by component or by index ("Fan #1" is the
// CPU fan on laptops, "Fan #2" the GPU fan).
func classifyFanSensors(sensors []fanSensor) FanReading {
	var reading FanReading
	for _, sensor := range sensors {
		name := strings.ToLower(sensor.Name)
		rpm := int(sensor.Value)
		if rpm < 0 {
			continue
		}

		switch {
		case strings.Contains(name, "cpu") || strings.Contains(name, "#1"):
			reading.CPUFanRPM = rpm
		case strings.Contains(name, "gpu") || strings.Contains(name, "#2"):
			reading.GPUFanRPM = rpm
		}
	}

	return reading
}
