package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/livemon/internal/config"
	"github.com/rileyhilliard/livemon/internal/gpu"
	"github.com/rileyhilliard/livemon/internal/lock"
	"github.com/rileyhilliard/livemon/internal/logger"
	"github.com/rileyhilliard/livemon/internal/monitor"
	"github.com/rileyhilliard/livemon/internal/ui"
)

// MonitorFlags holds the monitor command's flags. Zero values leave the
// config file's setting alone.
type MonitorFlags struct {
	Interval time.Duration
	Window   time.Duration
	Output   string
	NoSplash bool
	Once     bool
}

var monitorFlags MonitorFlags

// monitorCmd starts a live report
var monitorCmd = &cobra.Command{
	Use:   "monitor [cpu|gpu]",
	Short: "Keep a live HTML report of CPU, memory, and GPU usage",
	Long: `Sample this machine on an interval and replace the report each time.

The mode picks what gets sampled. "cpu" (the default) covers host, CPU,
memory, and this process. "gpu" adds GPU memory from nvidia-smi.
Any other mode falls back to cpu with a warning.

Reports go to stdout, or to --output, which always holds the latest one.
Stop with Ctrl+C.

Examples:
  livemon monitor
  livemon monitor gpu
  livemon monitor --interval 2s --window 500ms
  livemon monitor --output ~/reports/live.html --no-splash
  livemon monitor --once > report.html`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(monitor.ModeCPU), string(monitor.ModeGPU)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, monitorFlags)
	},
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorFlags.Interval, "interval", 0, "time between reports (default from config, 1s)")
	monitorCmd.Flags().DurationVar(&monitorFlags.Window, "window", 0, "CPU measurement window, at most the interval (default 200ms)")
	monitorCmd.Flags().StringVarP(&monitorFlags.Output, "output", "o", "", "write the latest report to this file instead of stdout")
	monitorCmd.Flags().BoolVar(&monitorFlags.NoSplash, "no-splash", false, "skip the start-up frames")
	monitorCmd.Flags().BoolVar(&monitorFlags.Once, "once", false, "print one report and exit")

	rootCmd.AddCommand(monitorCmd)
}

// monitorCommand resolves config and runs a session until interrupted.
func monitorCommand(ctx context.Context, stdout, stderr io.Writer, args []string, flags MonitorFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	st := ui.NewStatus(stderr)

	mode := resolveMode(cfg, args, st)
	applyMonitorFlags(cfg, flags)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	opts, err := sessionOptions(cfg, mode, log)
	if err != nil {
		return err
	}
	surface, dest := newSurface(cfg.Output.Path, stdout)
	opts.Surface = surface

	if cfg.Output.Path != "" {
		held, err := lock.Acquire(ctx, cfg.Output.Path, "livemon monitor "+string(mode))
		if err != nil {
			return err
		}
		defer func() {
			if rerr := held.Release(); rerr != nil {
				log.Warn("could not release report lock: %v", rerr)
			}
		}()
	}

	if flags.Once {
		report, err := monitor.Once(ctx, opts)
		if err != nil {
			return err
		}
		return surface.Replace(report)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := monitor.Start(ctx, opts)
	if err != nil {
		return err
	}
	st.Running(fmt.Sprintf("Monitoring %s", mode),
		fmt.Sprintf("every %s", opts.Interval), dest, "Ctrl+C to stop")

	select {
	case <-ctx.Done():
		session.Stop()
	case <-session.Done():
	}

	err = session.Wait()
	st.Stopped("Stopped after %d reports", session.Ticks())
	return err
}

// resolveMode picks the mode from the argument or config. Unknown tokens
// fall back to cpu with a warning.
func resolveMode(cfg *config.Config, args []string, st *ui.Status) monitor.Mode {
	token := cfg.Monitor.Mode
	if len(args) > 0 {
		token = args[0]
	}
	mode, ok := monitor.ParseMode(token)
	if !ok {
		st.Warn("Unknown mode %q, monitoring cpu instead (use cpu or gpu)", token)
	}
	cfg.Monitor.Mode = string(mode)
	return mode
}

func applyMonitorFlags(cfg *config.Config, flags MonitorFlags) {
	if flags.Interval > 0 {
		cfg.Monitor.Interval = flags.Interval
		// A shorter interval drags the default window down with it.
		if flags.Window == 0 && cfg.Monitor.CPUWindow > flags.Interval {
			cfg.Monitor.CPUWindow = flags.Interval
		}
	}
	if flags.Window > 0 {
		cfg.Monitor.CPUWindow = flags.Window
	}
	if flags.Output != "" {
		cfg.Output.Path = config.ExpandTilde(flags.Output)
	}
	if flags.NoSplash || flags.Once {
		cfg.Monitor.Splash = false
	}
}

// sessionOptions converts config into monitor options.
func sessionOptions(cfg *config.Config, mode monitor.Mode, log logger.Logger) (monitor.Options, error) {
	opts := monitor.Options{
		Mode:     mode,
		Interval: cfg.Monitor.Interval,
		Window:   cfg.Monitor.CPUWindow,
		Render: monitor.RenderOptions{
			Height:     cfg.Output.Height,
			Thresholds: thresholds(cfg.Monitor.Thresholds),
		},
		Logger: log,
	}
	if cfg.Monitor.Splash {
		opts.Splash = monitor.DefaultSplash()
	}

	if mode == monitor.ModeGPU {
		q, err := gpu.New(gpu.Options{
			Mode:    cfg.GPU.Query,
			Command: cfg.GPU.Command,
			Timeout: cfg.GPU.Timeout,
		})
		if err != nil {
			return opts, err
		}
		opts.GPU = q
	}
	return opts, nil
}

// thresholds converts config percentages, keeping defaults for zeros.
func thresholds(tc config.ThresholdConfig) monitor.Thresholds {
	def := monitor.DefaultThresholds()
	conv := func(v config.ThresholdValues, d monitor.Threshold) monitor.Threshold {
		if v.Warning > 0 {
			d.Warning = float64(v.Warning)
		}
		if v.Critical > 0 {
			d.Critical = float64(v.Critical)
		}
		return d
	}
	return monitor.Thresholds{
		CPU: conv(tc.CPU, def.CPU),
		RAM: conv(tc.RAM, def.RAM),
		GPU: conv(tc.GPU, def.GPU),
	}
}

// newSurface returns the report sink and a short description of it.
func newSurface(path string, stdout io.Writer) (monitor.Surface, string) {
	if path == "" {
		return monitor.NewWriterSurface(stdout), "stdout"
	}
	return monitor.NewFileSurface(path), path
}
