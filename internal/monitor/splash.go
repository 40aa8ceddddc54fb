package monitor

import (
	"fmt"
	"time"
)

// SplashFrame is one screen shown before the first report.
type SplashFrame struct {
	HTML string
	Hold time.Duration
}

func splashHTML(heading string) string {
	return fmt.Sprintf("<div class=\"livemon-splash\" align=\"center\"><br/><br/><h1 align=\"center\">%s</h1></div>", heading)
}

// DefaultSplash is the three-frame start-up sequence.
func DefaultSplash() []SplashFrame {
	return []SplashFrame{
		{HTML: splashHTML("Real time Performance Monitoring Tool 💻"), Hold: time.Second},
		{HTML: splashHTML("Loading Informations....🕑"), Hold: 650 * time.Millisecond},
		{HTML: splashHTML("Information Loaded Successfully <span style=\"color:green\">✔</span>"), Hold: 500 * time.Millisecond},
	}
}

// errorHTML is shown when a session ends because of a failure.
func errorHTML(msg string) string {
	return fmt.Sprintf("<div class=\"livemon-error\"><strong>Monitoring stopped:</strong> <span class=\"text-danger\">%s</span></div>", msg)
}
