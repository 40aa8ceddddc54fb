package ui

import (
	"fmt"
	"io"
	"strings"
)

// Status writes one-line status messages. The monitor prints these to
// stderr so stdout carries only report fragments.
type Status struct {
	w io.Writer
}

// NewStatus creates a Status writing to w.
func NewStatus(w io.Writer) *Status {
	return &Status{w: w}
}

// Success prints a green check line.
func (s *Status) Success(format string, args ...interface{}) {
	s.line(SuccessStyle().Render(SymbolSuccess), format, args...)
}

// Warn prints a yellow warning line.
func (s *Status) Warn(format string, args ...interface{}) {
	s.line(WarningStyle().Render(SymbolWarning), format, args...)
}

// Fail prints a red failure line.
func (s *Status) Fail(format string, args ...interface{}) {
	s.line(ErrorStyle().Render(SymbolFail), format, args...)
}

// Running prints the live-monitor line with muted details appended,
// e.g. "● Monitoring cpu  every 1s · stdout".
func (s *Status) Running(headline string, details ...string) {
	msg := InfoStyle().Render(SymbolRunning) + " " + headline
	if len(details) > 0 {
		msg += "  " + MutedStyle().Render(strings.Join(details, " · "))
	}
	fmt.Fprintln(s.w, msg)
}

// Stopped prints the stopped-monitor line.
func (s *Status) Stopped(format string, args ...interface{}) {
	s.line(MutedStyle().Render(SymbolStopped), format, args...)
}

func (s *Status) line(symbol, format string, args ...interface{}) {
	fmt.Fprintf(s.w, "%s %s\n", symbol, fmt.Sprintf(format, args...))
}
