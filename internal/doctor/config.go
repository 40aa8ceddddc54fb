package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/livemon/internal/config"
)

// ConfigCheck finds, loads, and validates the config.
type ConfigCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigCheck) Name() string     { return "config" }
func (c *ConfigCheck) Category() string { return "CONFIG" }

func (c *ConfigCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    "Config file can't be read",
			Suggestion: "Check the --config path and file permissions",
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load %s", path),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    "Config has invalid values",
			Suggestion: "Run 'livemon config show' to see what's wrong",
		}
	}

	if path == "" {
		return CheckResult{
			Status:     StatusPass,
			Message:    "No config file, using defaults",
			Suggestion: "Run 'livemon config init' to customize",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}
