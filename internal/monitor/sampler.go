package monitor

import (
	"context"
	"time"

	"github.com/rileyhilliard/livemon/internal/gpu"
	"github.com/rileyhilliard/livemon/internal/logger"
)

// DefaultWindow is the per-core CPU measurement window.
const DefaultWindow = 200 * time.Millisecond

// Sampler produces Snapshots. A failed sub-reading leaves its section at
// zero values and is logged; Sample itself never fails.
type Sampler struct {
	probe  Probe
	gpu    gpu.Querier // nil disables GPU sampling
	window time.Duration
	now    func() time.Time
	log    logger.Logger
}

// NewSampler creates a Sampler. Pass a nil querier for cpu-only sessions.
func NewSampler(probe Probe, querier gpu.Querier, window time.Duration, log logger.Logger) *Sampler {
	if log == nil {
		log = logger.Noop()
	}
	return &Sampler{
		probe:  probe,
		gpu:    querier,
		window: window,
		now:    time.Now,
		log:    log,
	}
}

// GPUEnabled reports whether this sampler queries the GPU.
func (s *Sampler) GPUEnabled() bool {
	return s.gpu != nil
}

// Sample reads the current state. The per-core reading blocks for the
// configured window.
func (s *Sampler) Sample(ctx context.Context) Snapshot {
	snap := Snapshot{Taken: s.now()}

	snap.Host = s.sampleHost(ctx)
	snap.CPU = s.sampleCPU(ctx)

	var available uint64
	snap.Memory, available = s.sampleMemory(ctx)
	snap.Process = s.sampleProcess(ctx, available)

	if s.gpu != nil {
		snap.GPU = s.sampleGPU(ctx)
	}

	return snap
}

func (s *Sampler) sampleHost(ctx context.Context) HostInfo {
	info, err := s.probe.Host(ctx)
	if err != nil {
		s.log.Debug("host info incomplete: %v", err)
	}
	return info
}

func (s *Sampler) sampleCPU(ctx context.Context) CPUMetrics {
	var m CPUMetrics

	freq, err := s.probe.CPUFreq(ctx)
	if err != nil {
		s.log.Debug("cpu frequency unavailable: %v", err)
	}
	m.Freq = freq

	physical, logical, err := s.probe.CoreCounts(ctx)
	if err != nil {
		s.log.Debug("core counts unavailable: %v", err)
	}
	m.PhysicalCores = physical
	m.LogicalCores = logical

	perCore, err := s.probe.PerCorePercent(ctx, s.window)
	if err != nil {
		s.log.Debug("per-core usage unavailable: %v", err)
		return m
	}
	m.PerCore = perCore
	m.Percent = mean(perCore)

	return m
}

// sampleMemory also returns available bytes, which process sampling needs.
func (s *Sampler) sampleMemory(ctx context.Context) (MemoryMetrics, uint64) {
	m, err := s.probe.VirtualMemory(ctx)
	if err != nil {
		s.log.Debug("virtual memory unavailable: %v", err)
		return MemoryMetrics{}, 0
	}
	return m, m.AvailableBytes
}

func (s *Sampler) sampleProcess(ctx context.Context, available uint64) ProcessMetrics {
	rss, err := s.probe.ProcessRSS(ctx)
	if err != nil {
		s.log.Debug("process memory unavailable: %v", err)
		return ProcessMetrics{}
	}
	pm := DeriveProcess(rss, available)
	if pm.Degenerate {
		s.log.Debug("process memory clamped: rss=%d available=%d", rss, available)
	}
	return pm
}

func (s *Sampler) sampleGPU(ctx context.Context) *gpu.MemoryStats {
	stats, err := s.gpu.Query(ctx)
	if err != nil {
		s.log.Warn("gpu query failed: %v", err)
		return nil
	}
	return stats
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
