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

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "cpu", cfg.Monitor.Mode)
	assert.Equal(t, time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 200*time.Millisecond, cfg.Monitor.CPUWindow)
	assert.True(t, cfg.Monitor.Splash)
	assert.Equal(t, 70, cfg.Monitor.Thresholds.CPU.Warning)
	assert.Equal(t, 90, cfg.Monitor.Thresholds.CPU.Critical)
	assert.Equal(t, 70, cfg.Monitor.Thresholds.RAM.Warning)
	assert.Equal(t, 90, cfg.Monitor.Thresholds.GPU.Critical)
	assert.Equal(t, "auto", cfg.GPU.Query)
	assert.Equal(t, "nvidia-smi", cfg.GPU.Command)
	assert.Equal(t, 5*time.Second, cfg.GPU.Timeout)
	assert.Empty(t, cfg.Output.Path)
	assert.Equal(t, "510px", cfg.Output.Height)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
monitor:
  mode: gpu
  interval: 2s
  cpu_window: 500ms
  splash: false
  thresholds:
    cpu:
      warning: 60
      critical: 85
gpu:
  query: csv
  timeout: 3s
output:
  path: /tmp/livemon/report.html
log:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "gpu", cfg.Monitor.Mode)
	assert.Equal(t, 2*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 500*time.Millisecond, cfg.Monitor.CPUWindow)
	assert.False(t, cfg.Monitor.Splash)
	assert.Equal(t, 60, cfg.Monitor.Thresholds.CPU.Warning)
	assert.Equal(t, 85, cfg.Monitor.Thresholds.CPU.Critical)
	// Unset keys keep their defaults.
	assert.Equal(t, 70, cfg.Monitor.Thresholds.RAM.Warning)
	assert.Equal(t, "nvidia-smi", cfg.GPU.Command)
	assert.Equal(t, "csv", cfg.GPU.Query)
	assert.Equal(t, 3*time.Second, cfg.GPU.Timeout)
	assert.Equal(t, "/tmp/livemon/report.html", cfg.Output.Path)
	assert.Equal(t, "510px", cfg.Output.Height)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("monitor: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Monitor, cfg.Monitor)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LIVEMON_MONITOR_INTERVAL", "3s")
	t.Setenv("LIVEMON_MONITOR_MODE", "gpu")
	t.Setenv("LIVEMON_OUTPUT_PATH", "/tmp/from-env.html")

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("monitor:\n  interval: 2s\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, "gpu", cfg.Monitor.Mode)
	assert.Equal(t, "/tmp/from-env.html", cfg.Output.Path)
}

func TestLoad_ExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("output:\n  path: ~/reports/live.html\nlog:\n  file: ~/livemon.log\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "reports/live.html"), cfg.Output.Path)
	assert.Equal(t, filepath.Join(home, "livemon.log"), cfg.Log.File)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("LIVEMON_TEST_DOTENV=loaded\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("LIVEMON_TEST_DOTENV") })

	require.NoError(t, LoadEnvFile(dir))
	assert.Equal(t, "loaded", os.Getenv("LIVEMON_TEST_DOTENV"))
}

func TestLoadEnvFile_ExistingWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("LIVEMON_TEST_KEEP=file\n"), 0644))
	t.Setenv("LIVEMON_TEST_KEEP", "shell")

	require.NoError(t, LoadEnvFile(dir))
	assert.Equal(t, "shell", os.Getenv("LIVEMON_TEST_KEEP"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(t.TempDir()))
}

func TestFind_Explicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	found, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = Find(path + ".missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFindUpward(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	nested := filepath.Join(project, "notebooks", "exp1")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(project, ".git"), 0755))

	t.Run("finds config in parent", func(t *testing.T) {
		path := filepath.Join(project, ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))
		defer os.Remove(path)

		assert.Equal(t, path, findUpward(nested, ""))
	})

	t.Run("stops at git root", func(t *testing.T) {
		above := filepath.Join(root, ConfigFileName)
		require.NoError(t, os.WriteFile(above, []byte("version: 1\n"), 0644))
		defer os.Remove(above)

		assert.Empty(t, findUpward(nested, ""))
	})

	t.Run("stops at home", func(t *testing.T) {
		other := filepath.Join(root, "other", "deep")
		require.NoError(t, os.MkdirAll(other, 0755))
		above := filepath.Join(root, ConfigFileName)
		require.NoError(t, os.WriteFile(above, []byte("version: 1\n"), 0644))
		defer os.Remove(above)

		assert.Empty(t, findUpward(other, root))
		assert.Equal(t, above, findUpward(other, ""))
	})
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandTilde(""))
	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "x/y"), ExpandTilde("~/x/y"))
	assert.Equal(t, "/abs/path", ExpandTilde("/abs/path"))
	assert.Equal(t, "~other/x", ExpandTilde("~other/x"))
}
