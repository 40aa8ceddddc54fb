package monitor

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rileyhilliard/livemon/internal/errors"
	"github.com/rileyhilliard/livemon/internal/gpu"
	"github.com/rileyhilliard/livemon/internal/logger"
)

// DefaultInterval is the time between the starts of consecutive ticks.
const DefaultInterval = time.Second

// Mode selects whether a session samples the GPU.
type Mode string

const (
	ModeCPU Mode = "cpu"
	ModeGPU Mode = "gpu"
)

// ParseMode reads the start-command token ("cpu" or "gpu", any case).
// Empty or unknown tokens give ModeCPU; ok is false for unknown tokens.
func ParseMode(token string) (mode Mode, ok bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", string(ModeCPU):
		return ModeCPU, true
	case string(ModeGPU):
		return ModeGPU, true
	default:
		return ModeCPU, false
	}
}

// State is the lifecycle state of a Session.
type State int

const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Options configures a session.
type Options struct {
	Mode     Mode
	Surface  Surface
	Probe    Probe       // defaults to NewProbe()
	GPU      gpu.Querier // used only in ModeGPU; defaults to the auto query chain
	Interval time.Duration
	Window   time.Duration // zero means DefaultWindow, capped at Interval
	Splash   []SplashFrame
	Render   RenderOptions
	Logger   logger.Logger
}

// withDefaults fills zero values and validates the result.
func (o Options) withDefaults() (Options, error) {
	if o.Mode == "" {
		o.Mode = ModeCPU
	}
	if o.Mode != ModeCPU && o.Mode != ModeGPU {
		return o, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown monitor mode '%s'", o.Mode),
			"Use 'cpu' or 'gpu'")
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Window == 0 {
		o.Window = min(DefaultWindow, o.Interval)
	}
	if o.Window < 0 {
		return o, errors.New(errors.ErrConfig,
			"CPU measurement window can't be negative", "")
	}
	if o.Window > o.Interval {
		return o, errors.New(errors.ErrConfig,
			fmt.Sprintf("CPU window %s is longer than the refresh interval %s", o.Window, o.Interval),
			"Use a window no longer than the interval")
	}
	if o.Probe == nil {
		o.Probe = NewProbe()
	}
	if o.Mode == ModeGPU && o.GPU == nil {
		q, err := gpu.New(gpu.Options{})
		if err != nil {
			return o, err
		}
		o.GPU = q
	}
	if o.Render.Height == "" {
		o.Render.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = logger.Default()
	}
	return o, nil
}

// sampler builds the Sampler; cpu mode gets no querier at all.
func (o Options) sampler() *Sampler {
	var q gpu.Querier
	if o.Mode == ModeGPU {
		q = o.GPU
	}
	return NewSampler(o.Probe, q, o.Window, o.Logger)
}

// Once samples and renders a single report synchronously.
func Once(ctx context.Context, opts Options) (string, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return "", err
	}
	snap := opts.sampler().Sample(ctx)
	return Render(snap, opts.Render), nil
}

// Session is one running monitor: a background worker refreshing a Surface
// until Stop is called or the parent context ends.
type Session struct {
	ID   string
	Mode Mode

	opts    Options
	sampler *Sampler
	log     logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	ticks  atomic.Int64

	mu  sync.Mutex
	err error
}

// Start validates opts and launches the worker. The returned session is
// RUNNING; the caller owns it and ends it with Stop.
func Start(parent context.Context, opts Options) (*Session, error) {
	if opts.Surface == nil {
		return nil, errors.New(errors.ErrSession,
			"No display surface to write reports to",
			"Pass a Surface in Options")
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:      uuid.NewString(),
		Mode:    opts.Mode,
		opts:    opts,
		sampler: opts.sampler(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if zl, ok := opts.Logger.(*logger.ZapLogger); ok {
		s.log = zl.Named("session").With("session_id", s.ID)
	} else {
		s.log = opts.Logger
	}

	s.log.Info("monitor started (mode=%s interval=%s window=%s)", s.Mode, opts.Interval, opts.Window)
	go s.run()
	return s, nil
}

// GPUEnabled reports whether ticks query the GPU.
func (s *Session) GPUEnabled() bool {
	return s.sampler.GPUEnabled()
}

// Stop asks the worker to finish. It returns immediately and is safe to
// call more than once; use Wait to block until STOPPED.
func (s *Session) Stop() {
	s.cancel()
}

// Done is closed once the session is STOPPED.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session is STOPPED and returns its terminal error,
// which is nil for a normal stop.
func (s *Session) Wait() error {
	<-s.done
	return s.Err()
}

// Err returns the error that ended the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// State reports RUNNING or STOPPED.
func (s *Session) State() State {
	select {
	case <-s.done:
		return StateStopped
	default:
		return StateRunning
	}
}

// Ticks returns how many reports have been pushed to the surface.
func (s *Session) Ticks() int64 {
	return s.ticks.Load()
}

func (s *Session) run() {
	defer close(s.done)
	defer s.cancel()
	defer func() {
		if r := recover(); r != nil {
			s.fail(fmt.Errorf("%v", r))
		}
	}()

	if !s.splash() {
		s.log.Info("monitor stopped during splash")
		return
	}

	for {
		// Stop is observed at the top of every tick.
		if s.ctx.Err() != nil {
			s.log.Info("monitor stopped after %d ticks", s.ticks.Load())
			return
		}

		start := time.Now()
		report := Render(s.sampler.Sample(s.ctx), s.opts.Render)

		// A stop that landed mid-tick discards the report.
		if s.ctx.Err() != nil {
			continue
		}
		if err := s.opts.Surface.Replace(report); err != nil {
			s.log.Warn("surface update failed: %v", err)
		} else {
			s.ticks.Add(1)
		}

		// A stop during the wait is caught by the check above.
		s.sleep(s.opts.Interval - time.Since(start))
	}
}

// splash shows the start-up frames. It returns false if stopped meanwhile.
func (s *Session) splash() bool {
	for _, frame := range s.opts.Splash {
		if s.ctx.Err() != nil {
			return false
		}
		if err := s.opts.Surface.Replace(frame.HTML); err != nil {
			s.log.Warn("surface update failed: %v", err)
		}
		if !s.sleep(frame.Hold) {
			return false
		}
	}
	return true
}

// sleep waits for d and returns false if the session was stopped first.
func (s *Session) sleep(d time.Duration) bool {
	if d <= 0 {
		return s.ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// fail records a fatal worker error and shows it on the surface.
func (s *Session) fail(cause error) {
	err := errors.WrapWithCode(cause, errors.ErrSession,
		"Monitor worker crashed",
		"Run with LIVEMON_DEBUG=1 and report the log")

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	s.log.Error("monitor worker crashed: %v", cause)
	if rerr := s.opts.Surface.Replace(errorHTML(html.EscapeString(cause.Error()))); rerr != nil {
		s.log.Warn("could not show crash on surface: %v", rerr)
	}
}
