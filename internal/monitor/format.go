package monitor

import "fmt"

// byteUnits is the binary scale used by FormatBytes; P is the top unit.
var byteUnits = []string{"B", "K", "M", "G", "T", "P"}

// FormatBytes formats a byte count on a 1024 scale with two decimals,
// e.g. 500 -> "500.00B", 1024 -> "1.00K", 1048576 -> "1.00M".
// Values beyond the P range stay in P.
func FormatBytes(bytes uint64) string {
	value := float64(bytes)
	for i, unit := range byteUnits {
		if value < 1024 || i == len(byteUnits)-1 {
			return fmt.Sprintf("%.2f%s", value, unit)
		}
		value /= 1024
	}
	return "" // unreachable
}

// Default thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// Threshold holds warning and critical percentages for one metric.
type Threshold struct {
	Warning  float64
	Critical float64
}

// Thresholds configures severity classes per metric family.
type Thresholds struct {
	CPU Threshold
	RAM Threshold
	GPU Threshold
}

// DefaultThresholds returns 70/90 for every metric.
func DefaultThresholds() Thresholds {
	def := Threshold{Warning: WarningThreshold, Critical: CriticalThreshold}
	return Thresholds{CPU: def, RAM: def, GPU: def}
}

// SeverityClass returns the CSS class for a percentage: "text-danger" at
// or above critical, "text-warning" at or above warning, otherwise "".
// A zero threshold is treated as unset.
func SeverityClass(percent float64, t Threshold) string {
	switch {
	case t.Critical > 0 && percent >= t.Critical:
		return "text-danger"
	case t.Warning > 0 && percent >= t.Warning:
		return "text-warning"
	default:
		return ""
	}
}
