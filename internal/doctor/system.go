package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/livemon/internal/monitor"
)

// sampleWindow keeps the CPU check quick.
const sampleWindow = 100 * time.Millisecond

// CPUCheck verifies per-core utilisation and core counts can be read.
type CPUCheck struct {
	Probe monitor.Probe
}

func (c *CPUCheck) Name() string     { return "cpu" }
func (c *CPUCheck) Category() string { return "SYSTEM" }

func (c *CPUCheck) Run(ctx context.Context) CheckResult {
	perCore, err := c.Probe.PerCorePercent(ctx, sampleWindow)
	if err != nil || len(perCore) == 0 {
		return CheckResult{
			Status:     StatusFail,
			Message:    "Per-core CPU usage isn't readable",
			Suggestion: "The CPU Utilization table will be empty; check /proc is mounted",
		}
	}

	physical, logical, err := c.Probe.CoreCounts(ctx)
	if err != nil || physical == 0 {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%d cores sampled, but core counts are incomplete", len(perCore)),
			Suggestion: "Physical or total core counts will show as 0",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%d physical / %d logical cores", physical, logical),
	}
}

// MemoryCheck verifies system and process memory can be read.
type MemoryCheck struct {
	Probe monitor.Probe
}

func (c *MemoryCheck) Name() string     { return "memory" }
func (c *MemoryCheck) Category() string { return "SYSTEM" }

func (c *MemoryCheck) Run(ctx context.Context) CheckResult {
	vm, err := c.Probe.VirtualMemory(ctx)
	if err != nil || vm.TotalBytes == 0 {
		return CheckResult{
			Status:     StatusFail,
			Message:    "System memory isn't readable",
			Suggestion: "The Memory Utilization section will show zeros",
		}
	}

	rss, err := c.Probe.ProcessRSS(ctx)
	if err != nil {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s total, but this process's memory isn't readable", humanize.IBytes(vm.TotalBytes)),
			Suggestion: "The Notebook Utilization section will show zeros",
		}
	}

	proc := monitor.DeriveProcess(rss, vm.AvailableBytes)
	if proc.Degenerate {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("This process (%s) uses more than the available memory (%s)", humanize.IBytes(rss), humanize.IBytes(vm.AvailableBytes)),
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s total, %s available", humanize.IBytes(vm.TotalBytes), humanize.IBytes(vm.AvailableBytes)),
	}
}
