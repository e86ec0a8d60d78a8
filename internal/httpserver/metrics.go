package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hwmond/hwmond/internal/power"
)

const metricNamespace = "hwmond"

// statusCollector exports the hub's latest status as Prometheus gauges.
// Metrics whose probe reported Unavailable or Error for the cycle are simply
// absent from the scrape.
type statusCollector struct {
	hub *Hub

	cpuUsage     *prometheus.Desc
	cpuTemp      *prometheus.Desc
	gpuUsage     *prometheus.Desc
	gpuTemp      *prometheus.Desc
	ramUsage     *prometheus.Desc
	fanRPM       *prometheus.Desc
	fanAnimation *prometheus.Desc
	batteryPct   *prometheus.Desc
	batteryHours *prometheus.Desc
	onBattery    *prometheus.Desc
}

func newStatusCollector(hub *Hub) *statusCollector {
	return &statusCollector{
		hub: hub,
		cpuUsage: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "cpu", "usage_percent"),
			"CPU utilization over the last sampling interval.",
			nil, nil,
		),
		cpuTemp: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "cpu", "temperature_celsius"),
			"Hottest ACPI thermal zone temperature.",
			nil, nil,
		),
		gpuUsage: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "gpu", "usage_percent"),
			"GPU utilization.",
			nil, nil,
		),
		gpuTemp: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "gpu", "temperature_celsius"),
			"GPU core temperature.",
			nil, nil,
		),
		ramUsage: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "ram", "usage_percent"),
			"Physical memory in use.",
			nil, nil,
		),
		fanRPM: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "fan", "rpm"),
			"Fan speed in revolutions per minute.",
			[]string{"fan"}, nil,
		),
		fanAnimation: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "fan", "animation_seconds"),
			"Derived spinner rotation period for the fan.",
			[]string{"fan"}, nil,
		),
		batteryPct: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "battery", "charge_percent"),
			"Remaining battery charge.",
			nil, nil,
		),
		batteryHours: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "battery", "estimated_hours"),
			"Estimated battery runtime in hours.",
			nil, nil,
		),
		onBattery: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "power", "on_battery"),
			"1 when the system is discharging its battery, 0 otherwise.",
			nil, nil,
		),
	}
}

func (c *statusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpuUsage
	ch <- c.cpuTemp
	ch <- c.gpuUsage
	ch <- c.gpuTemp
	ch <- c.ramUsage
	ch <- c.fanRPM
	ch <- c.fanAnimation
	ch <- c.batteryPct
	ch <- c.batteryHours
	ch <- c.onBattery
}

func (c *statusCollector) Collect(ch chan<- prometheus.Metric) {
	status, ok := c.hub.Latest()
	if !ok {
		return
	}

	gauge := func(desc *prometheus.Desc, value float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value, labels...)
	}

	if v, ok := status.Snapshot.CPUUsage.Value(); ok {
		gauge(c.cpuUsage, v)
	}
	if v, ok := status.Snapshot.CPUTemperature.Value(); ok {
		gauge(c.cpuTemp, v)
	}
	if gpu, ok := status.Snapshot.GPU.Value(); ok {
		gauge(c.gpuUsage, gpu.UsagePercent)
		gauge(c.gpuTemp, gpu.TemperatureCelsius)
	}
	if v, ok := status.Snapshot.RAMUsage.Value(); ok {
		gauge(c.ramUsage, v)
	}
	if _, ok := status.Snapshot.Fans.Value(); ok {
		gauge(c.fanRPM, float64(status.CPUFan.RPM), "cpu")
		gauge(c.fanRPM, float64(status.GPUFan.RPM), "gpu")
		gauge(c.fanAnimation, status.CPUFan.Duration.Seconds(), "cpu")
		gauge(c.fanAnimation, status.GPUFan.Duration.Seconds(), "gpu")
	}
	if battery, ok := status.Snapshot.Battery.Value(); ok {
		gauge(c.batteryPct, float64(battery.Percentage))
		gauge(c.batteryHours, battery.EstimatedHours)
	}

	if status.PowerSource != power.SourceUnknown {
		onBattery := 0.0
		if status.PowerSource == power.SourceBattery {
			onBattery = 1.0
		}
		gauge(c.onBattery, onBattery)
	}
}
