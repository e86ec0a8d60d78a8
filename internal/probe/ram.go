package probe

import (
	"context"

	"github.com/hwmond/hwmond/internal/errors"
	"github.com/shirou/gopsutil/v4/mem"
)

// RAMUsageProbe reports physical memory usage as a percentage.
type RAMUsageProbe struct{}

func NewRAMUsageProbe() *RAMUsageProbe {
	return &RAMUsageProbe{}
}

func (*RAMUsageProbe) Name() string {
	return "ram_usage"
}

func (*RAMUsageProbe) Sample(ctx context.Context) Result[float64] {
	errFactory := errors.New()

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Failed[float64](errFactory.Wrap(ErrQueryFailed, err))
	}

	return Ok(clampPercent(vm.UsedPercent))
}
