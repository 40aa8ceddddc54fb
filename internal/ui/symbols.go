package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Operation completed
	SymbolFail    = "✗" // Operation failed
	SymbolWarning = "!" // Something degraded but work continues
	SymbolRunning = "●" // Monitor is live
	SymbolStopped = "○" // Monitor has stopped
)
