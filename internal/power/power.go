// Package power derives the active power source from battery snapshots and
// reports transitions between AC and battery.
package power

import (
	"github.com/hwmond/hwmond/internal/logger"
	"github.com/hwmond/hwmond/internal/probe"
)

type Source int

const (
	SourceUnknown Source = iota
	SourceAC
	SourceBattery
)

func (s Source) String() string {
	switch s {
	case SourceAC:
		return "ac"
	case SourceBattery:
		return "battery"
	default:
		return "unknown"
	}
}

// Monitor tracks the power source across snapshots and fires a callback on
// transitions only, never on every tick.
type Monitor struct {
	current  Source
	onChange func(Source)
}

// NewMonitor creates a Monitor. onChange may be nil.
func NewMonitor(onChange func(Source)) *Monitor {
	return &Monitor{onChange: onChange}
}

// Current returns the last derived power source.
func (m *Monitor) Current() Source {
	return m.current
}

// Update derives the power source from a battery reading and fires the
// change callback when it differs from the previous one.
func (m *Monitor) Update(battery probe.Result[probe.BatteryState]) Source {
	source := deriveSource(battery)
	if source == m.current {
		return source
	}

	if m.current != SourceUnknown {
		logger.Info().
			Str("from", m.current.String()).
			Str("to", source.String()).
			Msg("power source changed")
	}
	m.current = source

	if m.onChange != nil {
		m.onChange(source)
	}

	return source
}

// deriveSource applies the Win32_Battery convention: a discharging status
// means battery power, anything else means AC. A machine with no battery is
// assumed to be a desktop on AC. A failed reading leaves the source unknown.
func deriveSource(battery probe.Result[probe.BatteryState]) Source {
	if battery.IsUnavailable() {
		return SourceAC
	}

	state, ok := battery.Value()
	if !ok {
		return SourceUnknown
	}

	if state.Status.Discharging() {
		return SourceBattery
	}

	return SourceAC
}
