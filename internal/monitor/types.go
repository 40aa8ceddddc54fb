package monitor

import (
	"time"

	"github.com/rileyhilliard/livemon/internal/gpu"
)

// Snapshot is one read of system state. It is never mutated after Sample
// returns it.
type Snapshot struct {
	Taken   time.Time
	Host    HostInfo
	CPU     CPUMetrics
	Memory  MemoryMetrics
	GPU     *gpu.MemoryStats // nil if no GPU data
	Process ProcessMetrics
}

// HostInfo contains uname-equivalent identity fields and boot time.
// Fields the platform does not expose are empty.
type HostInfo struct {
	System    string
	Node      string
	Release   string
	Version   string // kernel build string, as uname -v
	Machine   string
	Processor string // CPU model name
	BootTime  time.Time
}

// CPUFreq is a frequency triple in MHz.
type CPUFreq struct {
	MaxMHz     float64
	MinMHz     float64
	CurrentMHz float64
}

// CPUMetrics contains CPU frequency, core counts and utilisation.
type CPUMetrics struct {
	Freq          CPUFreq
	PhysicalCores int
	LogicalCores  int
	PerCore       []float64 // index = core id
	Percent       float64
}

// MemoryMetrics contains system virtual memory usage.
type MemoryMetrics struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedBytes      uint64
	Percent        float64
}

// ProcessMetrics is the host process's share of available memory. Only
// RSSBytes is measured; the rest is derived from the system's available
// memory.
type ProcessMetrics struct {
	RSSBytes            uint64
	TotalAvailableBytes uint64
	FreeBytes           uint64
	Percent             float64
	Degenerate          bool // a derived value was clamped
}
