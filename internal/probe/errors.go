package probe

import "github.com/hwmond/hwmond/internal/errors"

const (
	ErrQueryFailed    = errors.ErrorCode("probe_query_failed")
	ErrParseFailed    = errors.ErrorCode("probe_parse_failed")
	ErrProbePanicked  = errors.ErrorCode("probe_panicked")
	ErrProbeTimeout   = errors.ErrProbeTimeout
	ErrDiscoveryFail  = errors.ErrProbeDiscovery
	ErrNVMLFailure    = errors.ErrorCode("probe_nvml_failed")
	ErrEmptyReading   = errors.ErrorCode("probe_empty_reading")
	ErrNoGPUDetected  = errors.ErrorCode("probe_no_gpu_detected")
	ErrInvalidReading = errors.ErrorCode("probe_invalid_reading")
)
