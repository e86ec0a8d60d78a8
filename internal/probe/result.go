package probe

type state uint8

const (
	stateOk state = iota
	stateUnavailable
	stateError
)

// Result is the outcome of a single probe query. A probe resolves to exactly
// one of three states: a measured value, Unavailable (the data source is
// absent or unsupported on this hardware), or Error (the query itself
// failed). Probes never panic past this boundary, so a zero reading is
// always a genuine measurement.
type Result[T any] struct {
	st    state
	value T
	err   error
}

// Ok wraps a measured value.
func Ok[T any](v T) Result[T] {
	return Result[T]{st: stateOk, value: v}
}

// Unavailable marks the data source as absent on this machine.
func Unavailable[T any]() Result[T] {
	return Result[T]{st: stateUnavailable}
}

// Failed marks an unexpected query failure.
func Failed[T any](err error) Result[T] {
	return Result[T]{st: stateError, err: err}
}

func (r Result[T]) IsOk() bool {
	return r.st == stateOk
}

func (r Result[T]) IsUnavailable() bool {
	return r.st == stateUnavailable
}

func (r Result[T]) IsError() bool {
	return r.st == stateError
}

// Value returns the measured value and whether one is present.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.st == stateOk
}

// ValueOr returns the measured value, or def when none is present.
func (r Result[T]) ValueOr(def T) T {
	if r.st == stateOk {
		return r.value
	}

	return def
}

func (r Result[T]) Err() error {
	return r.err
}
