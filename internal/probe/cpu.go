package probe

import (
	"context"

	"github.com/hwmond/hwmond/internal/errors"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/yusufpapurcu/wmi"
)

// CPUUsageProbe reports aggregate CPU load since the previous sample.
type CPUUsageProbe struct{}

func NewCPUUsageProbe() *CPUUsageProbe {
	// First call primes the usage counters; it reports zero and every
	// subsequent call reports load since the call before it.
	_, _ = cpu.Percent(0, false)

	return &CPUUsageProbe{}
}

func (*CPUUsageProbe) Name() string {
	return "cpu_usage"
}

func (*CPUUsageProbe) Sample(ctx context.Context) Result[float64] {
	errFactory := errors.New()

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Failed[float64](errFactory.Wrap(ErrQueryFailed, err))
	}
	if len(percents) == 0 {
		return Failed[float64](errFactory.New(ErrEmptyReading))
	}

	return Ok(clampPercent(percents[0]))
}

// thermalZone maps WMI MSAcpi_ThermalZoneTemperature rows. The value is in
// tenths of Kelvin.
type thermalZone struct {
	CurrentTemperature uint32
}

// CPUTemperatureProbe reads the ACPI thermal zone temperature. The query is
// privileged on most machines and frequently unsupported, so failures
// resolve to Unavailable rather than Error.
type CPUTemperatureProbe struct{}

func NewCPUTemperatureProbe() *CPUTemperatureProbe {
	return &CPUTemperatureProbe{}
}

func (*CPUTemperatureProbe) Name() string {
	return "cpu_temperature"
}

func (*CPUTemperatureProbe) Sample(_ context.Context) Result[float64] {
	var zones []thermalZone
	err := wmi.QueryNamespace(
		"SELECT CurrentTemperature FROM MSAcpi_ThermalZoneTemperature",
		&zones,
		`root\WMI`,
	)
	if err != nil || len(zones) == 0 {
		return Unavailable[float64]()
	}

	temp, ok := hottestZone(zones)
	if !ok {
		return Unavailable[float64]()
	}

	return Ok(temp)
}

// hottestZone converts zone readings to Celsius and picks the highest
// plausible one. Zones outside (0, 150) °C are firmware noise.
func hottestZone(zones []thermalZone) (float64, bool) {
	best := 0.0
	found := false
	for _, z := range zones {
		celsius := float64(z.CurrentTemperature)/10.0 - 273.15
		if celsius <= 0 || celsius >= 150 {
			continue
		}
		if !found || celsius > best {
			best = celsius
			found = true
		}
	}

	return best, found
}
