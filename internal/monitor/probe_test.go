package monitor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFreq(t *testing.T, dir, name, value string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value), 0o644))
}

func TestReadSysfsFreq(t *testing.T) {
	dir := t.TempDir()
	writeFreq(t, dir, "scaling_cur_freq", "2200000\n")
	writeFreq(t, dir, "cpuinfo_min_freq", "800000\n")
	writeFreq(t, dir, "cpuinfo_max_freq", "3400000\n")

	freq, ok := readSysfsFreq(dir)

	require.True(t, ok)
	assert.Equal(t, CPUFreq{MaxMHz: 3400, MinMHz: 800, CurrentMHz: 2200}, freq)
}

func TestReadSysfsFreq_MissingCurrent(t *testing.T) {
	dir := t.TempDir()
	writeFreq(t, dir, "cpuinfo_max_freq", "3400000")

	_, ok := readSysfsFreq(dir)
	assert.False(t, ok)
}

func TestReadSysfsFreq_PartialBounds(t *testing.T) {
	dir := t.TempDir()
	writeFreq(t, dir, "scaling_cur_freq", "1500000")
	writeFreq(t, dir, "cpuinfo_max_freq", "garbage")

	freq, ok := readSysfsFreq(dir)

	require.True(t, ok)
	assert.Equal(t, 1500.0, freq.CurrentMHz)
	assert.Zero(t, freq.MaxMHz)
	assert.Zero(t, freq.MinMHz)
}

func TestSystemName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"linux", "Linux"},
		{"darwin", "Darwin"},
		{"windows", "Windows"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, systemName(tt.in))
		})
	}
}

func TestSystemProbe_CoreCounts(t *testing.T) {
	physical, logical, err := NewProbe().CoreCounts(context.Background())
	if err != nil {
		t.Skipf("core counts unavailable here: %v", err)
	}
	assert.Positive(t, logical)
	assert.LessOrEqual(t, physical, logical)
}

func TestSystemProbe_HostVersionIsKernelBuild(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("uname version checked on linux only")
	}
	want := kernelVersion()
	require.NotEmpty(t, want)

	info, err := NewProbe().Host(context.Background())
	if err != nil {
		t.Skipf("host info unavailable: %v", err)
	}
	assert.Equal(t, want, info.Version)
	assert.NotContains(t, want, "\x00")
}
