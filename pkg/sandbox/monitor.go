package sandbox

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/axisworks/axis/pkg/models"
)

const monitorInterval = 500 * time.Millisecond

// watchResources polls a tier-1 sandbox process and kills it when it breaches
// its manifest limits. Memory kills on the first breach; CPU needs two
// consecutive breaches so a startup spike doesn't count. Tier 3 limits are
// enforced by the container runtime and tier 2 shares the host process, so
// neither is watched.
func watchResources(ctx context.Context, pid int, res models.GearResources, kill func(reason string)) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return
	}

	maxRSS := uint64(res.MaxMemoryMb) * 1024 * 1024
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	cpuStrikes := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if res.MaxMemoryMb > 0 {
			if mem, err := proc.MemoryInfo(); err == nil && mem.RSS > maxRSS {
				kill("memory")
				return
			}
		}

		if res.MaxCpuPercent > 0 {
			pct, err := proc.Percent(0)
			if err == nil && pct > float64(res.MaxCpuPercent) {
				cpuStrikes++
				if cpuStrikes >= 2 {
					kill("cpu")
					return
				}
			} else {
				cpuStrikes = 0
			}
		}
	}
}
