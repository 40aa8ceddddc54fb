package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/livemon/internal/gpu"
)

// fakeProbe returns fixed readings without touching the OS.
type fakeProbe struct {
	host           HostInfo
	hostErr        error
	freq           CPUFreq
	physical       int
	logical        int
	perCore        []float64
	perErr         error
	mem            MemoryMetrics
	memErr         error
	rss            uint64
	rssErr         error
	windows        []time.Duration
	mu             sync.Mutex
	panicOnPerCore bool
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{
		host: HostInfo{
			System:    "Linux",
			Node:      "nb-worker-1",
			Release:   "6.1.0-18-amd64",
			Version:   "debian 12.5",
			Machine:   "x86_64",
			Processor: "Intel(R) Xeon(R) CPU @ 2.20GHz",
			BootTime:  time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC),
		},
		freq:     CPUFreq{MaxMHz: 3400, MinMHz: 800, CurrentMHz: 2200},
		physical: 2,
		logical:  4,
		perCore:  []float64{10, 20, 30, 40},
		mem: MemoryMetrics{
			TotalBytes:     16 << 30,
			AvailableBytes: 8 << 30,
			UsedBytes:      7 << 30,
			Percent:        50,
		},
		rss: 256 << 20,
	}
}

func (p *fakeProbe) Host(context.Context) (HostInfo, error)   { return p.host, p.hostErr }
func (p *fakeProbe) CPUFreq(context.Context) (CPUFreq, error) { return p.freq, nil }
func (p *fakeProbe) CoreCounts(context.Context) (int, int, error) {
	return p.physical, p.logical, nil
}

func (p *fakeProbe) PerCorePercent(_ context.Context, window time.Duration) ([]float64, error) {
	p.mu.Lock()
	p.windows = append(p.windows, window)
	p.mu.Unlock()
	if p.panicOnPerCore {
		panic("per-core reader exploded")
	}
	return p.perCore, p.perErr
}

func (p *fakeProbe) VirtualMemory(context.Context) (MemoryMetrics, error) { return p.mem, p.memErr }
func (p *fakeProbe) ProcessRSS(context.Context) (uint64, error)        { return p.rss, p.rssErr }

// countingQuerier counts Query calls.
type countingQuerier struct {
	calls atomic.Int64
	stats *gpu.MemoryStats
	err   error
}

func (q *countingQuerier) Query(context.Context) (*gpu.MemoryStats, error) {
	q.calls.Add(1)
	return q.stats, q.err
}

// recordingSurface keeps every fragment it receives.
type recordingSurface struct {
	mu      sync.Mutex
	frames  []string
	err     error
	updates chan struct{}
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{updates: make(chan struct{}, 1024)}
}

func (s *recordingSurface) Replace(html string) error {
	s.mu.Lock()
	s.frames = append(s.frames, html)
	s.mu.Unlock()
	select {
	case s.updates <- struct{}{}:
	default:
	}
	return s.err
}

func (s *recordingSurface) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *recordingSurface) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.frames...)
}

var errBoom = errors.New("boom")
