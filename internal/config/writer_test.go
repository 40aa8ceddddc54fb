package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/livemon/internal/errors"
)

func TestWrite_RoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	cfg := DefaultConfig()
	cfg.Monitor.Mode = "gpu"
	cfg.Monitor.Interval = 2 * time.Second

	require.NoError(t, Write(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "interval: 2s")
	assert.Contains(t, string(data), "cpu_window: 200ms")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWrite_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("keep: me\n"), 0644))

	err := Write(path, DefaultConfig(), false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	data, _ := os.ReadFile(path)
	assert.Equal(t, "keep: me\n", string(data))

	require.NoError(t, Write(path, DefaultConfig(), true))
	data, _ = os.ReadFile(path)
	assert.Contains(t, string(data), "monitor:")
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name         string
		initialYAML  string
		key          string
		value        string
		wantContains []string
		wantErr      bool
	}{
		{
			name: "replace existing value",
			initialYAML: `version: 1
monitor:
  # refresh rate
  interval: 1s
`,
			key:          "monitor.interval",
			value:        "5s",
			wantContains: []string{"interval: 5s", "# refresh rate"},
		},
		{
			name:         "create missing section",
			initialYAML:  "version: 1\n",
			key:          "gpu.query",
			value:        "table",
			wantContains: []string{"gpu:", "query: table"},
		},
		{
			name:         "empty file",
			initialYAML:  "",
			key:          "output.path",
			value:        "/tmp/report.html",
			wantContains: []string{"output:", "path: /tmp/report.html"},
		},
		{
			name:        "section is not a value",
			initialYAML: "monitor:\n  interval: 1s\n",
			key:         "monitor",
			value:       "x",
			wantErr:     true,
		},
		{
			name:        "value is not a section",
			initialYAML: "monitor: off\n",
			key:         "monitor.interval",
			value:       "2s",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.initialYAML), 0644))

			err := SetValue(path, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, string(data), want)
			}
		})
	}
}

func TestSetValue_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, Write(path, DefaultConfig(), false))

	require.NoError(t, SetValue(path, "monitor.thresholds.cpu.warning", "55"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 55, cfg.Monitor.Thresholds.CPU.Warning)
}

func TestSetValue_MissingFile(t *testing.T) {
	err := SetValue(filepath.Join(t.TempDir(), "nope.yaml"), "a.b", "c")
	assert.Error(t, err)
}
