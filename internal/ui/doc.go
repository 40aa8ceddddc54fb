// Package ui provides styled terminal output for livemon's CLI.
//
// Reports go to stdout or a file; everything in this package is meant for
// stderr so the two never mix.
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess (green)  - Successful operations
//	ColorError   (red)    - Failures and errors
//	ColorWarning (yellow) - Degraded but continuing
//	ColorInfo    (cyan)   - Live monitor status
//	ColorMuted   (gray)   - Secondary details
//
// ConfigureColors("never") or the NO_COLOR environment variable switch to
// monochrome output.
//
// # Status Lines
//
//	st := ui.NewStatus(os.Stderr)
//	st.Running("Monitoring cpu", "every 1s", "stdout")
//	st.Stopped("Stopped after %d reports", n)
package ui
