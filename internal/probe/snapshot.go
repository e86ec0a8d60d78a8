package probe

import "time"

// Snapshot is one immutable, complete set of metric values captured during a
// single sampling cycle. Every field is either a measured value or an
// explicit Unavailable/Error marker; assembly never produces a partial
// snapshot.
type Snapshot struct {
	Time           time.Time
	CPUUsage       Result[float64] // percent, 0-100
	CPUTemperature Result[float64] // Celsius
	GPU            Result[GPUMetrics]
	RAMUsage       Result[float64] // percent, 0-100
	Fans           Result[FanReading]
	Battery        Result[BatteryState]
}

// GPUMetrics carries temperature and usage together since both NVML and
// nvidia-smi report them in one query.
type GPUMetrics struct {
	TemperatureCelsius float64
	UsagePercent       float64
}

// FanReading holds both fan RPMs; the underlying sources report them as a
// pair.
type FanReading struct {
	CPUFanRPM int
	GPUFanRPM int
}

// BatteryState mirrors the Win32_Battery status model.
type BatteryState struct {
	Percentage     int // 0-100
	Status         BatteryStatus
	EstimatedHours float64 // 0 when indeterminate
}

type BatteryStatus int

// Status codes 1-11 follow the Win32_Battery BatteryStatus values.
const (
	BatteryStatusUnknown          BatteryStatus = 0
	BatteryStatusDischarging      BatteryStatus = 1
	BatteryStatusACPower          BatteryStatus = 2
	BatteryStatusFullyCharged     BatteryStatus = 3
	BatteryStatusLow              BatteryStatus = 4
	BatteryStatusCritical         BatteryStatus = 5
	BatteryStatusCharging         BatteryStatus = 6
	BatteryStatusChargingHigh     BatteryStatus = 7
	BatteryStatusChargingLow      BatteryStatus = 8
	BatteryStatusChargingCritical BatteryStatus = 9
	BatteryStatusUndefined        BatteryStatus = 10
	BatteryStatusPartiallyCharged BatteryStatus = 11
	BatteryStatusNoBattery        BatteryStatus = 12
	BatteryStatusError            BatteryStatus = 13
)

var batteryStatusNames = map[BatteryStatus]string{
	BatteryStatusUnknown:          "Unknown",
	BatteryStatusDischarging:      "Discharging",
	BatteryStatusACPower:          "AcPower",
	BatteryStatusFullyCharged:     "FullyCharged",
	BatteryStatusLow:              "Low",
	BatteryStatusCritical:         "Critical",
	BatteryStatusCharging:         "Charging",
	BatteryStatusChargingHigh:     "ChargingHigh",
	BatteryStatusChargingLow:      "ChargingLow",
	BatteryStatusChargingCritical: "ChargingCritical",
	BatteryStatusUndefined:        "Undefined",
	BatteryStatusPartiallyCharged: "PartiallyCharged",
	BatteryStatusNoBattery:        "NoBattery",
	BatteryStatusError:            "Error",
}

func (s BatteryStatus) String() string {
	if name, ok := batteryStatusNames[s]; ok {
		return name
	}

	return "Unknown"
}

// Discharging reports whether the machine is running on battery power.
func (s BatteryStatus) Discharging() bool {
	return s == BatteryStatusDischarging
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}

	return v
}
