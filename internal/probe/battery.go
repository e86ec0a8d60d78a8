package probe

import (
	"context"

	"github.com/hwmond/hwmond/internal/errors"
	"github.com/yusufpapurcu/wmi"
)

// runtimeSentinelMinutes is the Win32_Battery value for "runtime unknown".
// It must be filtered out, not converted to hours.
const runtimeSentinelMinutes = 71582788

const minutesPerHour = 60.0

// win32Battery maps Win32_Battery rows. Runtime and charge are nullable on
// some firmware.
type win32Battery struct {
	BatteryStatus            uint16
	EstimatedChargeRemaining *uint16
	EstimatedRunTime         *uint32
}

// BatteryProbe reads charge, status and estimated runtime from the system
// battery. Machines without a battery resolve to Unavailable.
type BatteryProbe struct{}

func NewBatteryProbe() *BatteryProbe {
	return &BatteryProbe{}
}

func (*BatteryProbe) Name() string {
	return "battery"
}

func (*BatteryProbe) Sample(_ context.Context) Result[BatteryState] {
	errFactory := errors.New()

	var rows []win32Battery
	err := wmi.Query(
		"SELECT BatteryStatus, EstimatedChargeRemaining, EstimatedRunTime FROM Win32_Battery",
		&rows,
	)
	if err != nil {
		return Failed[BatteryState](errFactory.Wrap(ErrQueryFailed, err))
	}

	return batteryFromRows(rows)
}

func batteryFromRows(rows []win32Battery) Result[BatteryState] {
	if len(rows) == 0 {
		// No battery present; desktops land here.
		return Unavailable[BatteryState]()
	}

	row := rows[0]
	state := BatteryState{
		Status: batteryStatusFromCode(int(row.BatteryStatus)),
	}

	if row.EstimatedChargeRemaining != nil {
		state.Percentage = clampChargePercent(int(*row.EstimatedChargeRemaining))
	}

	if row.EstimatedRunTime != nil {
		state.EstimatedHours = runtimeHours(*row.EstimatedRunTime)
	}

	return Ok(state)
}

// batteryStatusFromCode maps the raw Win32_Battery status code. Codes
// outside the documented 1-11 range read as Unknown.
func batteryStatusFromCode(code int) BatteryStatus {
	if code >= int(BatteryStatusDischarging) && code <= int(BatteryStatusPartiallyCharged) {
		return BatteryStatus(code)
	}

	return BatteryStatusUnknown
}

// runtimeHours converts the estimated runtime to hours, treating the
// firmware sentinel as indeterminate.
func runtimeHours(minutes uint32) float64 {
	if minutes == runtimeSentinelMinutes {
		return 0
	}

	return float64(minutes) / minutesPerHour
}

func clampChargePercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}

	return v
}
