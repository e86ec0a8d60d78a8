package httpserver

import (
	"time"
)

// StatusPayload is the JSON shape served on /api/status and pushed over the
// websocket stream. Unavailable metrics serialize as null so clients never
// mistake a sentinel for a reading.
type StatusPayload struct {
	Timestamp   time.Time       `json:"timestamp"`
	CPU         CPUPayload      `json:"cpu"`
	GPU         *GPUPayload     `json:"gpu"`
	RAM         *float64        `json:"ram_usage_percent"`
	Fans        FansPayload     `json:"fans"`
	Battery     *BatteryPayload `json:"battery"`
	PowerSource string          `json:"power_source"`
}

type CPUPayload struct {
	UsagePercent       *float64 `json:"usage_percent"`
	TemperatureCelsius *float64 `json:"temperature_celsius"`
}

type GPUPayload struct {
	UsagePercent       float64 `json:"usage_percent"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
}

type FansPayload struct {
	CPU *FanPayload `json:"cpu"`
	GPU *FanPayload `json:"gpu"`
}

// FanPayload pairs the raw reading with the derived animation period the
// presentation layer should use for its spinner.
type FanPayload struct {
	RPM                      int     `json:"rpm"`
	AnimationDurationSeconds float64 `json:"animation_duration_seconds"`
}

type BatteryPayload struct {
	Percentage     int     `json:"percentage"`
	Status         string  `json:"status"`
	EstimatedHours float64 `json:"estimated_hours"`
}

func statusPayload(status Status) StatusPayload {
	payload := StatusPayload{
		Timestamp:   status.Snapshot.Time,
		PowerSource: status.PowerSource.String(),
	}

	if v, ok := status.Snapshot.CPUUsage.Value(); ok {
		payload.CPU.UsagePercent = &v
	}
	if v, ok := status.Snapshot.CPUTemperature.Value(); ok {
		payload.CPU.TemperatureCelsius = &v
	}
	if gpu, ok := status.Snapshot.GPU.Value(); ok {
		payload.GPU = &GPUPayload{
			UsagePercent:       gpu.UsagePercent,
			TemperatureCelsius: gpu.TemperatureCelsius,
		}
	}
	if v, ok := status.Snapshot.RAMUsage.Value(); ok {
		payload.RAM = &v
	}
	if _, ok := status.Snapshot.Fans.Value(); ok {
		payload.Fans.CPU = &FanPayload{
			RPM:                      status.CPUFan.RPM,
			AnimationDurationSeconds: status.CPUFan.Duration.Seconds(),
		}
		payload.Fans.GPU = &FanPayload{
			RPM:                      status.GPUFan.RPM,
			AnimationDurationSeconds: status.GPUFan.Duration.Seconds(),
		}
	}
	if battery, ok := status.Snapshot.Battery.Value(); ok {
		payload.Battery = &BatteryPayload{
			Percentage:     battery.Percentage,
			Status:         battery.Status.String(),
			EstimatedHours: battery.EstimatedHours,
		}
	}

	return payload
}
