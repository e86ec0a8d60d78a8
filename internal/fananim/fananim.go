// Package fananim converts fan RPM readings into rotation-animation
// durations for the presentation layer. Hysteresis keeps sensor jitter from
// churning the animation.
package fananim

import "time"

const (
	// MinRPMForAnimation is the reading below which a fan is treated as
	// effectively stopped and shown as a slow idle spin.
	MinRPMForAnimation = 100

	// RPMChangeThreshold is the delta required before the animation
	// duration is recomputed.
	RPMChangeThreshold = 500

	MinDuration = 50 * time.Millisecond
	MaxDuration = 5 * time.Second
)

// DurationForRPM maps an RPM reading to one full rotation period. Faster
// fans spin the visual faster; the result is clamped to a safe range.
func DurationForRPM(rpm int) time.Duration {
	if rpm < MinRPMForAnimation {
		return MaxDuration
	}

	seconds := 2000.0 / float64(rpm)
	d := time.Duration(seconds * float64(time.Second))
	if d < MinDuration {
		return MinDuration
	}
	if d > MaxDuration {
		return MaxDuration
	}

	return d
}

// Animator tracks one fan's animation state for the process lifetime.
// It starts in a neutral idle spin and updates only on qualifying RPM
// changes.
type Animator struct {
	initialized bool
	lastRPM     int
	duration    time.Duration
}

func New() *Animator {
	return &Animator{duration: MaxDuration}
}

// Observe feeds one RPM reading. It returns the current duration and
// whether this reading changed it. Readings within RPMChangeThreshold of the
// last applied one are ignored; the first reading, a reading below
// MinRPMForAnimation, and a spin-up from the stopped state always apply.
func (a *Animator) Observe(rpm int) (time.Duration, bool) {
	if rpm < 0 {
		rpm = 0
	}

	if rpm < MinRPMForAnimation {
		changed := a.duration != MaxDuration
		a.initialized = true
		a.lastRPM = rpm
		a.duration = MaxDuration
		return a.duration, changed
	}

	// Hysteresis only damps changes between two spinning readings.
	if a.initialized && a.lastRPM >= MinRPMForAnimation && abs(rpm-a.lastRPM) < RPMChangeThreshold {
		return a.duration, false
	}

	a.initialized = true
	a.lastRPM = rpm
	a.duration = DurationForRPM(rpm)

	return a.duration, true
}

// Duration returns the current animation duration.
func (a *Animator) Duration() time.Duration {
	return a.duration
}

// LastRPM returns the reading that produced the current duration.
func (a *Animator) LastRPM() int {
	return a.lastRPM
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
