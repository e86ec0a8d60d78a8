package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uint16p(v uint16) *uint16 { return &v }
func uint32p(v uint32) *uint32 { return &v }

func TestBatteryFromRows(t *testing.T) {
	res := batteryFromRows([]win32Battery{{
		BatteryStatus:            6,
		EstimatedChargeRemaining: uint16p(78),
		EstimatedRunTime:         uint32p(245),
	}})

	state, ok := res.Value()
	require.True(t, ok)
	assert.Equal(t, 78, state.Percentage)
	assert.Equal(t, BatteryStatusCharging, state.Status)
	assert.InDelta(t, 4.0833, state.EstimatedHours, 0.001)
}

func TestBatteryRuntimeSentinel(t *testing.T) {
	res := batteryFromRows([]win32Battery{{
		BatteryStatus:            2,
		EstimatedChargeRemaining: uint16p(100),
		EstimatedRunTime:         uint32p(71582788),
	}})

	state, ok := res.Value()
	require.True(t, ok)
	assert.Zero(t, state.EstimatedHours, "sentinel runtime reads as indeterminate")
}

func TestBatteryAbsent(t *testing.T) {
	res := batteryFromRows(nil)
	assert.True(t, res.IsUnavailable(), "no battery rows means no battery")
}

func TestBatteryNullFields(t *testing.T) {
	res := batteryFromRows([]win32Battery{{BatteryStatus: 1}})

	state, ok := res.Value()
	require.True(t, ok)
	assert.Equal(t, BatteryStatusDischarging, state.Status)
	assert.Zero(t, state.Percentage)
	assert.Zero(t, state.EstimatedHours)
}

func TestBatteryStatusFromCode(t *testing.T) {
	cases := []struct {
		code int
		want BatteryStatus
	}{
		{1, BatteryStatusDischarging},
		{2, BatteryStatusACPower},
		{3, BatteryStatusFullyCharged},
		{6, BatteryStatusCharging},
		{11, BatteryStatusPartiallyCharged},
		{0, BatteryStatusUnknown},
		{42, BatteryStatusUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, batteryStatusFromCode(tc.code), "code %d", tc.code)
	}
}

func TestBatteryStatusString(t *testing.T) {
	assert.Equal(t, "Charging", BatteryStatusCharging.String())
	assert.Equal(t, "NoBattery", BatteryStatusNoBattery.String())
	assert.Equal(t, "Unknown", BatteryStatus(99).String())
	assert.True(t, BatteryStatusDischarging.Discharging())
	assert.False(t, BatteryStatusACPower.Discharging())
}
