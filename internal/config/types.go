package config

import (
	"time"

	"github.com/rileyhilliard/livemon/internal/gpu"
	"github.com/rileyhilliard/livemon/internal/monitor"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .livemon.yaml configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor"`
	GPU     GPUConfig     `yaml:"gpu" mapstructure:"gpu"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// MonitorConfig controls the refresh loop.
type MonitorConfig struct {
	// Mode is "cpu" or "gpu".
	Mode string `yaml:"mode" mapstructure:"mode"`

	// Interval is the time between the starts of consecutive reports.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// CPUWindow is how long each per-core CPU reading measures for.
	// It can't be longer than Interval.
	CPUWindow time.Duration `yaml:"cpu_window" mapstructure:"cpu_window"`

	// Splash shows the start-up frames before the first report.
	Splash bool `yaml:"splash" mapstructure:"splash"`

	Thresholds ThresholdConfig `yaml:"thresholds" mapstructure:"thresholds"`
}

// ThresholdConfig holds severity thresholds per metric family.
type ThresholdConfig struct {
	CPU ThresholdValues `yaml:"cpu" mapstructure:"cpu"`
	RAM ThresholdValues `yaml:"ram" mapstructure:"ram"`
	GPU ThresholdValues `yaml:"gpu" mapstructure:"gpu"`
}

// ThresholdValues are percentages (0-100). Zero means use the default.
type ThresholdValues struct {
	Warning  int `yaml:"warning" mapstructure:"warning"`
	Critical int `yaml:"critical" mapstructure:"critical"`
}

// GPUConfig controls how GPU memory is queried.
type GPUConfig struct {
	// Query is "auto", "csv", or "table".
	Query string `yaml:"query" mapstructure:"query"`

	// Command is the vendor tool to run.
	Command string `yaml:"command" mapstructure:"command"`

	// Timeout bounds each query.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OutputConfig controls where reports go.
type OutputConfig struct {
	// Path is a file that always holds the latest report.
	// Empty writes to stdout.
	Path string `yaml:"path" mapstructure:"path"`

	// Height is the CSS height of the report container.
	Height string `yaml:"height" mapstructure:"height"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level" mapstructure:"level"`

	// File enables a rotating JSON log at this path.
	File string `yaml:"file" mapstructure:"file"`

	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Monitor: MonitorConfig{
			Mode:      string(monitor.ModeCPU),
			Interval:  monitor.DefaultInterval,
			CPUWindow: monitor.DefaultWindow,
			Splash:    true,
			Thresholds: ThresholdConfig{
				CPU: ThresholdValues{Warning: 70, Critical: 90},
				RAM: ThresholdValues{Warning: 70, Critical: 90},
				GPU: ThresholdValues{Warning: 70, Critical: 90},
			},
		},
		GPU: GPUConfig{
			Query:   gpu.ModeAuto,
			Command: gpu.DefaultCommand,
			Timeout: gpu.DefaultTimeout,
		},
		Output: OutputConfig{
			Height: monitor.DefaultHeight,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}
