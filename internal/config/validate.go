package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/livemon/internal/errors"
)

// MinInterval is the shortest refresh interval allowed.
const MinInterval = 250 * time.Millisecond

var (
	validModes     = map[string]bool{"cpu": true, "gpu": true}
	validGPUQuery  = map[string]bool{"auto": true, "csv": true, "table": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but livemon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade livemon or lower the version field.")
	}

	if err := validateMonitor(cfg.Monitor); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'monitor' section in your .livemon.yaml.")
	}

	if err := validateGPU(cfg.GPU); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'gpu' section in your .livemon.yaml.")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your .livemon.yaml.")
	}

	if err := validateLog(cfg.Log); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'log' section in your .livemon.yaml.")
	}

	return nil
}

func validateMonitor(m MonitorConfig) error {
	if !validModes[strings.ToLower(m.Mode)] {
		return fmt.Errorf("monitor.mode '%s' isn't valid - use 'cpu' or 'gpu'", m.Mode)
	}
	if m.Interval < MinInterval {
		return fmt.Errorf("monitor.interval %v is too short - use at least %v", m.Interval, MinInterval)
	}
	if m.CPUWindow < 0 {
		return fmt.Errorf("monitor.cpu_window can't be negative - that doesn't make sense")
	}
	if m.CPUWindow > m.Interval {
		return fmt.Errorf("monitor.cpu_window (%v) is longer than monitor.interval (%v) - reports would fall behind", m.CPUWindow, m.Interval)
	}

	if err := validateThresholds("cpu", m.Thresholds.CPU); err != nil {
		return err
	}
	if err := validateThresholds("ram", m.Thresholds.RAM); err != nil {
		return err
	}
	return validateThresholds("gpu", m.Thresholds.GPU)
}

// validateThresholds checks a threshold configuration for a single metric type.
func validateThresholds(name string, thresh ThresholdValues) error {
	if thresh.Warning < 0 || thresh.Warning > 100 {
		return fmt.Errorf("monitor.thresholds.%s.warning needs to be 0-100 (got %d)", name, thresh.Warning)
	}
	if thresh.Critical < 0 || thresh.Critical > 100 {
		return fmt.Errorf("monitor.thresholds.%s.critical needs to be 0-100 (got %d)", name, thresh.Critical)
	}
	// Zero means "use the default", so only compare when both are set.
	if thresh.Warning > 0 && thresh.Critical > 0 && thresh.Warning >= thresh.Critical {
		return fmt.Errorf("monitor.thresholds.%s.warning (%d%%) is higher than critical (%d%%) - should be the other way around", name, thresh.Warning, thresh.Critical)
	}
	return nil
}

func validateGPU(g GPUConfig) error {
	if !validGPUQuery[strings.ToLower(g.Query)] {
		return fmt.Errorf("gpu.query '%s' isn't valid - try: auto, csv, or table", g.Query)
	}
	if strings.TrimSpace(g.Command) == "" {
		return fmt.Errorf("gpu.command is empty - set it to the GPU tool, e.g. nvidia-smi")
	}
	if g.Timeout < 0 {
		return fmt.Errorf("gpu.timeout can't be negative - that doesn't make sense")
	}
	return nil
}

func validateOutput(out OutputConfig) error {
	if strings.ContainsAny(out.Height, "<>\"") {
		return fmt.Errorf("output.height '%s' isn't a CSS length - try something like '510px'", out.Height)
	}
	return nil
}

func validateLog(l LogConfig) error {
	if l.Level != "" && !validLogLevels[strings.ToLower(l.Level)] {
		return fmt.Errorf("log.level '%s' isn't valid - try: debug, info, warn, or error", l.Level)
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits can't be negative")
	}
	return nil
}
