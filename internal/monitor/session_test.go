package monitor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/livemon/internal/errors"
	"github.com/rileyhilliard/livemon/internal/gpu"
	"github.com/rileyhilliard/livemon/internal/logger"
)

const testInterval = 10 * time.Millisecond

func testOptions(surface Surface, probe Probe) Options {
	return Options{
		Mode:     ModeCPU,
		Surface:  surface,
		Probe:    probe,
		Interval: testInterval,
		Logger:   logger.NewBufferLogger(),
	}
}

// waitUpdates blocks until the surface has seen n more updates.
func waitUpdates(t *testing.T, s *recordingSurface, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.updates:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for update %d of %d", i+1, n)
		}
	}
}

func waitStopped(t *testing.T, s *Session) error {
	t.Helper()
	select {
	case <-s.Done():
		return s.Err()
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
		return nil
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		token  string
		want   Mode
		wantOK bool
	}{
		{"cpu", ModeCPU, true},
		{"gpu", ModeGPU, true},
		{"GPU", ModeGPU, true},
		{" Cpu ", ModeCPU, true},
		{"", ModeCPU, true},
		{"tpu", ModeCPU, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			mode, ok := ParseMode(tt.token)
			assert.Equal(t, tt.want, mode)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestStart_RequiresSurface(t *testing.T) {
	_, err := Start(context.Background(), Options{Probe: newFakeProbe()})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSession))
}

func TestStart_ValidatesOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"window longer than interval", func(o *Options) {
			o.Interval = 100 * time.Millisecond
			o.Window = 200 * time.Millisecond
		}},
		{"negative window", func(o *Options) { o.Window = -time.Millisecond }},
		{"unknown mode", func(o *Options) { o.Mode = "tpu" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(newRecordingSurface(), newFakeProbe())
			tt.mutate(&opts)

			s, err := Start(context.Background(), opts)

			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestSession_SplashThenReports(t *testing.T) {
	surface := newRecordingSurface()
	opts := testOptions(surface, newFakeProbe())
	opts.Splash = []SplashFrame{
		{HTML: "<h1>one</h1>", Hold: time.Millisecond},
		{HTML: "<h1>two</h1>", Hold: time.Millisecond},
	}

	s, err := Start(context.Background(), opts)
	require.NoError(t, err)
	waitUpdates(t, surface, 4)
	s.Stop()
	require.NoError(t, waitStopped(t, s))

	frames := surface.all()
	require.GreaterOrEqual(t, len(frames), 4)
	assert.Equal(t, "<h1>one</h1>", frames[0])
	assert.Equal(t, "<h1>two</h1>", frames[1])
	for _, f := range frames[2:] {
		assert.Contains(t, f, SectionSystem)
	}
	assert.NotEmpty(t, s.ID)
}

func TestSession_StopEndsUpdates(t *testing.T) {
	surface := newRecordingSurface()
	s, err := Start(context.Background(), testOptions(surface, newFakeProbe()))
	require.NoError(t, err)
	assert.Equal(t, StateRunning, s.State())

	waitUpdates(t, surface, 2)
	s.Stop()
	require.NoError(t, s.Wait())
	assert.Equal(t, StateStopped, s.State())

	stoppedAt := surface.count()
	time.Sleep(5 * testInterval)
	assert.Equal(t, stoppedAt, surface.count())
	assert.Equal(t, int64(stoppedAt), s.Ticks())

	s.Stop()
	assert.Equal(t, StateStopped, s.State())
}

func TestSession_StopDuringSplash(t *testing.T) {
	surface := newRecordingSurface()
	opts := testOptions(surface, newFakeProbe())
	opts.Splash = []SplashFrame{
		{HTML: "<h1>hold</h1>", Hold: time.Hour},
		{HTML: "<h1>never</h1>", Hold: time.Hour},
	}

	s, err := Start(context.Background(), opts)
	require.NoError(t, err)
	waitUpdates(t, surface, 1)

	s.Stop()
	require.NoError(t, waitStopped(t, s))
	assert.Equal(t, []string{"<h1>hold</h1>"}, surface.all())
	assert.Zero(t, s.Ticks())
}

func TestSession_ParentCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	surface := newRecordingSurface()

	s, err := Start(ctx, testOptions(surface, newFakeProbe()))
	require.NoError(t, err)
	waitUpdates(t, surface, 1)

	cancel()
	require.NoError(t, waitStopped(t, s))
}

func TestSession_PanicStopsWithError(t *testing.T) {
	probe := newFakeProbe()
	probe.panicOnPerCore = true
	surface := newRecordingSurface()
	log := logger.NewBufferLogger()
	opts := testOptions(surface, probe)
	opts.Logger = log

	s, err := Start(context.Background(), opts)
	require.NoError(t, err)

	werr := waitStopped(t, s)
	require.Error(t, werr)
	assert.True(t, errors.IsCode(werr, errors.ErrSession))
	assert.Equal(t, StateStopped, s.State())
	assert.True(t, log.HasLevel("error"))

	frames := surface.all()
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.Contains(t, last, "livemon-error")
	assert.Contains(t, last, "per-core reader exploded")
}

func TestSession_SurfaceErrorsKeepRunning(t *testing.T) {
	surface := newRecordingSurface()
	surface.err = errBoom
	log := logger.NewBufferLogger()
	opts := testOptions(surface, newFakeProbe())
	opts.Logger = log

	s, err := Start(context.Background(), opts)
	require.NoError(t, err)
	waitUpdates(t, surface, 3)
	s.Stop()
	require.NoError(t, waitStopped(t, s))

	assert.Zero(t, s.Ticks())
	assert.True(t, log.HasLevel("warn"))
}

func TestSession_GPUQueriedOncePerTick(t *testing.T) {
	q := &countingQuerier{stats: &gpu.MemoryStats{TotalMiB: 8192, UsedMiB: 1024, FreeMiB: 7168, Percent: 12.5}}
	surface := newRecordingSurface()
	opts := testOptions(surface, newFakeProbe())
	opts.Mode = ModeGPU
	opts.GPU = q

	s, err := Start(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, s.GPUEnabled())

	waitUpdates(t, surface, 3)
	s.Stop()
	require.NoError(t, waitStopped(t, s))

	// A tick interrupted by Stop may have queried without publishing.
	diff := q.calls.Load() - s.Ticks()
	assert.GreaterOrEqual(t, diff, int64(0))
	assert.LessOrEqual(t, diff, int64(1))

	for _, f := range surface.all() {
		assert.Contains(t, f, SectionGPU)
	}
}

func TestSession_CPUModeNeverQueriesGPU(t *testing.T) {
	q := &countingQuerier{stats: &gpu.MemoryStats{TotalMiB: 1, UsedMiB: 1}}
	surface := newRecordingSurface()
	opts := testOptions(surface, newFakeProbe())
	opts.GPU = q

	s, err := Start(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, s.GPUEnabled())

	waitUpdates(t, surface, 3)
	s.Stop()
	require.NoError(t, waitStopped(t, s))

	assert.Zero(t, q.calls.Load())
	for _, f := range surface.all() {
		assert.False(t, strings.Contains(f, SectionGPU))
	}
}

func TestOnce(t *testing.T) {
	probe := newFakeProbe()
	out, err := Once(context.Background(), Options{Probe: probe, Window: 50 * time.Millisecond, Logger: logger.Noop()})

	require.NoError(t, err)
	assert.Contains(t, out, SectionCores)
	assert.Contains(t, out, DefaultHeight)
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, probe.windows)
}

func TestOnce_InvalidOptions(t *testing.T) {
	_, err := Once(context.Background(), Options{Probe: newFakeProbe(), Interval: time.Millisecond, Window: time.Second})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestOptions_DefaultWindow(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		window   time.Duration
		want     time.Duration
	}{
		{"default interval", 0, 0, DefaultWindow},
		{"capped by short interval", 50 * time.Millisecond, 0, 50 * time.Millisecond},
		{"explicit window kept", time.Second, 500 * time.Millisecond, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Options{Probe: newFakeProbe(), Interval: tt.interval, Window: tt.window}.withDefaults()
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.Window)
		})
	}
}
