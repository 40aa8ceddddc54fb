package monitor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Probe reads raw statistics from the operating system.
type Probe interface {
	Host(ctx context.Context) (HostInfo, error)
	CPUFreq(ctx context.Context) (CPUFreq, error)
	CoreCounts(ctx context.Context) (physical, logical int, err error)
	// PerCorePercent blocks for window and returns per-core utilisation
	// over it. A zero window compares against the previous call.
	PerCorePercent(ctx context.Context, window time.Duration) ([]float64, error)
	VirtualMemory(ctx context.Context) (MemoryMetrics, error)
	ProcessRSS(ctx context.Context) (uint64, error)
}

// DefaultSysfsCPU is where Linux exposes cpufreq for the first core.
const DefaultSysfsCPU = "/sys/devices/system/cpu/cpu0/cpufreq"

// SystemProbe implements Probe with gopsutil.
type SystemProbe struct {
	pid      int32
	sysfsCPU string
}

// NewProbe returns a Probe for the current process and host.
func NewProbe() *SystemProbe {
	return &SystemProbe{
		pid:      int32(os.Getpid()),
		sysfsCPU: DefaultSysfsCPU,
	}
}

// Host returns identity fields. Partial results are returned alongside
// the first error.
func (p *SystemProbe) Host(ctx context.Context) (HostInfo, error) {
	var info HostInfo
	var firstErr error

	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		firstErr = err
	}
	if hi != nil {
		info.System = systemName(hi.OS)
		info.Node = hi.Hostname
		info.Release = hi.KernelVersion
		info.Version = kernelVersion()
		if info.Version == "" {
			info.Version = strings.TrimSpace(hi.Platform + " " + hi.PlatformVersion)
		}
		info.Machine = hi.KernelArch
		if hi.BootTime > 0 {
			info.BootTime = time.Unix(int64(hi.BootTime), 0)
		}
	}
	if info.System == "" {
		info.System = systemName(runtime.GOOS)
	}

	cpus, err := cpu.InfoWithContext(ctx)
	if err != nil && firstErr == nil {
		firstErr = err
	}
	if len(cpus) > 0 {
		info.Processor = strings.TrimSpace(cpus[0].ModelName)
	}

	return info, firstErr
}

// systemName turns a GOOS-style name into uname's capitalisation.
func systemName(goos string) string {
	if goos == "" {
		return ""
	}
	return strings.ToUpper(goos[:1]) + goos[1:]
}

// CPUFreq reads cpufreq from sysfs on Linux and falls back to the nominal
// frequency gopsutil reports.
func (p *SystemProbe) CPUFreq(ctx context.Context) (CPUFreq, error) {
	if runtime.GOOS == "linux" {
		if freq, ok := readSysfsFreq(p.sysfsCPU); ok {
			return freq, nil
		}
	}

	cpus, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return CPUFreq{}, err
	}
	if len(cpus) == 0 {
		return CPUFreq{}, nil
	}
	return CPUFreq{MaxMHz: cpus[0].Mhz, CurrentMHz: cpus[0].Mhz}, nil
}

// readSysfsFreq reads the kHz values under dir. ok is false when the
// current frequency is unavailable.
func readSysfsFreq(dir string) (CPUFreq, bool) {
	read := func(name string) (float64, bool) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return 0, false
		}
		khz, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		if err != nil {
			return 0, false
		}
		return khz / 1000, true
	}

	cur, ok := read("scaling_cur_freq")
	if !ok {
		return CPUFreq{}, false
	}
	minMHz, _ := read("cpuinfo_min_freq")
	maxMHz, _ := read("cpuinfo_max_freq")
	return CPUFreq{MaxMHz: maxMHz, MinMHz: minMHz, CurrentMHz: cur}, true
}

// CoreCounts returns physical and logical core counts separately.
func (p *SystemProbe) CoreCounts(ctx context.Context) (int, int, error) {
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		return 0, 0, err
	}
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return physical, 0, err
	}
	return physical, logical, nil
}

// PerCorePercent implements Probe.
func (p *SystemProbe) PerCorePercent(ctx context.Context, window time.Duration) ([]float64, error) {
	return cpu.PercentWithContext(ctx, window, true)
}

// VirtualMemory implements Probe.
func (p *SystemProbe) VirtualMemory(ctx context.Context) (MemoryMetrics, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryMetrics{}, err
	}
	return MemoryMetrics{
		TotalBytes:     vm.Total,
		AvailableBytes: vm.Available,
		UsedBytes:      vm.Used,
		Percent:        vm.UsedPercent,
	}, nil
}

// ProcessRSS returns the resident set size of this process.
func (p *SystemProbe) ProcessRSS(ctx context.Context) (uint64, error) {
	proc, err := process.NewProcessWithContext(ctx, p.pid)
	if err != nil {
		return 0, err
	}
	mi, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return mi.RSS, nil
}
