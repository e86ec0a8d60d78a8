package errors

// ErrorCode identifies one failure class. Codes are stable strings so probe
// and cycle failures can be matched in logs and tests without comparing
// messages.
type ErrorCode string

// Error is a coded error carrying optional context data, such as the raw
// reading or WMI row that failed to parse.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory builds coded errors. Call sites create a local factory so the
// construction style stays uniform across packages.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
