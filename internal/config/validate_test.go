package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/livemon/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"future version", func(c *Config) { c.Version = CurrentConfigVersion + 1 }, "from the future"},
		{"bad mode", func(c *Config) { c.Monitor.Mode = "tpu" }, "monitor.mode"},
		{"uppercase mode", func(c *Config) { c.Monitor.Mode = "GPU" }, ""},
		{"interval too short", func(c *Config) { c.Monitor.Interval = 100 * time.Millisecond }, "too short"},
		{"window longer than interval", func(c *Config) {
			c.Monitor.Interval = time.Second
			c.Monitor.CPUWindow = 2 * time.Second
		}, "cpu_window"},
		{"window equal to interval", func(c *Config) { c.Monitor.CPUWindow = c.Monitor.Interval }, ""},
		{"negative window", func(c *Config) { c.Monitor.CPUWindow = -time.Second }, "negative"},
		{"warning above 100", func(c *Config) { c.Monitor.Thresholds.CPU.Warning = 101 }, "0-100"},
		{"critical below 0", func(c *Config) { c.Monitor.Thresholds.RAM.Critical = -1 }, "0-100"},
		{"warning not below critical", func(c *Config) {
			c.Monitor.Thresholds.GPU = ThresholdValues{Warning: 90, Critical: 90}
		}, "should be the other way around"},
		{"zero thresholds use defaults", func(c *Config) { c.Monitor.Thresholds.CPU = ThresholdValues{} }, ""},
		{"bad gpu query", func(c *Config) { c.GPU.Query = "xml" }, "gpu.query"},
		{"empty gpu command", func(c *Config) { c.GPU.Command = "  " }, "gpu.command"},
		{"negative gpu timeout", func(c *Config) { c.GPU.Timeout = -time.Second }, "gpu.timeout"},
		{"markup in height", func(c *Config) { c.Output.Height = `1px"><script>` }, "output.height"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"negative rotation", func(c *Config) { c.Log.MaxBackups = -1 }, "rotation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
