package gpu

import (
	"fmt"
	"strconv"
	"strings"
)

// TableMinLines is the number of lines the default nvidia-smi table must
// have before the memory row can be located.
const TableMinLines = 9

// tableMemoryLine is the zero-based line holding the first GPU's
// "<used>MiB / <total>MiB" cell.
const tableMemoryLine = 8

// MemoryStats is GPU memory usage in MiB.
type MemoryStats struct {
	TotalMiB int64
	UsedMiB  int64
	FreeMiB  int64
	Percent  float64
}

// newMemoryStats derives free and percent from used/total.
func newMemoryStats(used, total int64) (*MemoryStats, error) {
	if total <= 0 {
		return nil, fmt.Errorf("gpu memory total must be positive, got %d", total)
	}
	if used < 0 {
		return nil, fmt.Errorf("gpu memory used must not be negative, got %d", used)
	}
	return &MemoryStats{
		TotalMiB: total,
		UsedMiB:  used,
		FreeMiB:  total - used,
		Percent:  float64(used) / float64(total) * 100,
	}, nil
}

// ParseTable parses the default (no arguments) nvidia-smi table output.
// Expected shape of line 8:
//
//	| N/A   34C    P8     9W /  70W |   2048MiB /  8192MiB |      0%      Default |
//
// Returns nil, nil when the output has fewer than TableMinLines lines
// (tool missing, no GPU, or a banner-only error message).
func ParseTable(output string) (*MemoryStats, error) {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if strings.TrimSpace(output) == "" || len(lines) < TableMinLines {
		return nil, nil
	}

	fields := strings.Split(lines[tableMemoryLine], "|")
	if len(fields) < 3 {
		return nil, fmt.Errorf("nvidia-smi table line %d has %d fields, expected at least 3", tableMemoryLine, len(fields))
	}

	pair := strings.Split(strings.TrimSpace(fields[2]), "/")
	if len(pair) != 2 {
		return nil, fmt.Errorf("nvidia-smi memory cell '%s' is not a used/total pair", strings.TrimSpace(fields[2]))
	}

	used, err := parseMiB(pair[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPU memory used: %w", err)
	}
	total, err := parseMiB(pair[1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPU memory total: %w", err)
	}

	return newMemoryStats(used, total)
}

// parseMiB parses "2048MiB" or "2048 MiB" to 2048.
func parseMiB(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "M"); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a MiB value: %w", s, err)
	}
	return v, nil
}

// ParseCSV parses output from:
//
//	nvidia-smi --query-gpu=memory.used,memory.total --format=csv,noheader,nounits
//
// Only the first GPU is reported. Returns nil, nil when no GPU is available.
func ParseCSV(output string) (*MemoryStats, error) {
	output = strings.TrimSpace(output)

	if output == "" {
		return nil, nil
	}

	lowerOutput := strings.ToLower(output)
	if strings.Contains(lowerOutput, "no devices") ||
		strings.Contains(lowerOutput, "not found") ||
		strings.Contains(lowerOutput, "failed") ||
		strings.Contains(lowerOutput, "error") {
		return nil, nil
	}

	// Example: "2048, 8192"
	first := strings.SplitN(output, "\n", 2)[0]
	fields := strings.Split(first, ",")
	if len(fields) < 2 {
		return nil, fmt.Errorf("nvidia-smi output has insufficient fields: expected 2, got %d", len(fields))
	}

	usedStr := strings.TrimSpace(fields[0])
	totalStr := strings.TrimSpace(fields[1])
	if usedStr == "[N/A]" || totalStr == "[N/A]" {
		return nil, nil
	}

	used, err := strconv.ParseInt(usedStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPU memory used '%s': %w", usedStr, err)
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPU memory total '%s': %w", totalStr, err)
	}

	return newMemoryStats(used, total)
}
