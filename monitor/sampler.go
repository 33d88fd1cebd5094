package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/hupe1980/evonet/core"
)

// Sampler captures one host resource reading. Implementations should return
// quickly; the monitor loop provides pacing.
type Sampler interface {
	Sample(ctx context.Context) (core.ResourceSample, error)
}

// SystemSamplerOptions configures a SystemSampler.
type SystemSamplerOptions struct {
	// DiskPath is the mount point whose usage is reported. Defaults to "/".
	DiskPath string
}

// SystemSampler reads real host utilization via gopsutil. CPU usage is the
// percentage since the previous call, so the first reading of a fresh
// sampler reports zero CPU.
type SystemSampler struct {
	diskPath string
}

var _ Sampler = (*SystemSampler)(nil)

// NewSystemSampler constructs a gopsutil-backed sampler.
func NewSystemSampler(optFns ...func(o *SystemSamplerOptions)) *SystemSampler {
	opts := SystemSamplerOptions{DiskPath: "/"}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &SystemSampler{diskPath: opts.DiskPath}
}

// Sample captures CPU, memory and disk utilization percentages.
func (s *SystemSampler) Sample(ctx context.Context) (core.ResourceSample, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return core.ResourceSample{}, fmt.Errorf("sample cpu: %w", err)
	}

	var cpuUsage float64
	if len(cpuPercents) > 0 {
		cpuUsage = cpuPercents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return core.ResourceSample{}, fmt.Errorf("sample memory: %w", err)
	}

	du, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return core.ResourceSample{}, fmt.Errorf("sample disk %s: %w", s.diskPath, err)
	}

	return core.ResourceSample{
		CPUUsage:    cpuUsage,
		MemoryUsage: vm.UsedPercent,
		DiskUsage:   du.UsedPercent,
		Timestamp:   time.Now().UTC(),
	}, nil
}
