package monitor

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Section titles, in render order.
const (
	SectionSystem   = "System Information"
	SectionCPU      = "CPU Information"
	SectionMemory   = "Memory Utilization"
	SectionGPU      = "GPU Utilization"
	SectionNotebook = "Notebook Utilization"
	SectionCores    = "CPU Utilization"
)

// CoresPerRow is the number of per-core cells before the table wraps.
const CoresPerRow = 10

// DefaultHeight is the container height of a rendered report.
const DefaultHeight = "510px"

// timeLayout matches "Oct 17 2026 14:03:09".
const timeLayout = "Jan 02 2006 15:04:05"

// RenderOptions controls presentation details that are not part of the
// Snapshot.
type RenderOptions struct {
	Height     string
	Thresholds Thresholds
}

// DefaultRenderOptions returns the default height and thresholds.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Height: DefaultHeight, Thresholds: DefaultThresholds()}
}

// Render assembles the HTML report for one Snapshot. It has no side effects
// and reads no clock; identical inputs give identical output.
func Render(snap Snapshot, opts RenderOptions) string {
	var b strings.Builder

	height := opts.Height
	if height == "" {
		height = DefaultHeight
	}

	fmt.Fprintf(&b, "<div class=\"container-fluid livemon\" style=\"height:%s\">\n", html.EscapeString(height))
	b.WriteString("<div class=\"row\">\n<div class=\"col-md-7\">\n")
	renderSystem(&b, snap)
	renderCPUInfo(&b, snap.CPU)
	b.WriteString("</div>\n<div class=\"col-md-5\">\n")
	renderMemory(&b, snap.Memory, opts.Thresholds.RAM)
	if snap.GPU != nil {
		renderGPU(&b, snap, opts.Thresholds.GPU)
	}
	renderNotebook(&b, snap.Process, opts.Thresholds.RAM)
	b.WriteString("</div>\n</div>\n")
	b.WriteString("<div class=\"row\">\n<div class=\"col-md-12\">\n")
	renderCores(&b, snap.CPU, opts.Thresholds.CPU)
	b.WriteString("</div>\n</div>\n")
	b.WriteString("</div>\n")

	return b.String()
}

// sectionHeader writes "====<strong>Title</strong>====<br/>".
func sectionHeader(b *strings.Builder, title string, rule int) {
	bar := strings.Repeat("=", rule)
	fmt.Fprintf(b, "%s<strong>%s</strong>%s<br/>\n", bar, title, bar)
}

// field writes one "<strong>Label:</strong> value<br/>" line. value must
// already be escaped.
func field(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<strong>%s:</strong> %s<br/>\n", label, value)
}

// openColumns starts a row and its first column.
func openColumns(b *strings.Builder, left string) {
	fmt.Fprintf(b, "<div class=\"row\">\n<div class=\"%s\">\n", left)
}

// nextColumn closes the current column and opens the next.
func nextColumn(b *strings.Builder, right string) {
	fmt.Fprintf(b, "</div>\n<div class=\"%s\">\n", right)
}

// closeColumns closes the last column and its row.
func closeColumns(b *strings.Builder) {
	b.WriteString("</div>\n</div>\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// percent formats p with the given precision, wrapped in a severity span
// when a threshold is crossed.
func percent(p float64, precision int, t Threshold) string {
	text := fmt.Sprintf("%.*f%%", precision, p)
	if class := SeverityClass(p, t); class != "" {
		return fmt.Sprintf("<span class=\"%s\">%s</span>", class, text)
	}
	return text
}

func renderSystem(b *strings.Builder, snap Snapshot) {
	h := snap.Host
	esc := html.EscapeString

	sectionHeader(b, SectionSystem, 26)

	openColumns(b, "col-md-5")
	field(b, "System", esc(h.System))
	field(b, "Node Name", esc(h.Node))
	field(b, "Release", esc(h.Release))
	nextColumn(b, "col-md-6")
	field(b, "Version", esc(h.Version))
	field(b, "Machine", esc(h.Machine))
	field(b, "Processor", esc(h.Processor))
	closeColumns(b)

	uptime := ""
	if !h.BootTime.IsZero() && !snap.Taken.IsZero() {
		uptime = humanize.RelTime(h.BootTime, snap.Taken, "ago", "from now")
	}

	openColumns(b, "col-md-5")
	field(b, "Boot Time", formatTime(h.BootTime))
	field(b, "Up Since", esc(uptime))
	nextColumn(b, "col-md-6")
	field(b, "Current CPU Time", formatTime(snap.Taken))
	closeColumns(b)
}

func renderCPUInfo(b *strings.Builder, cpu CPUMetrics) {
	sectionHeader(b, SectionCPU, 27)

	openColumns(b, "col-md-5")
	field(b, "Max Frequency", fmt.Sprintf("%.2fMhz", cpu.Freq.MaxMHz))
	field(b, "Min Frequency", fmt.Sprintf("%.2fMhz", cpu.Freq.MinMHz))
	field(b, "Current Frequency", fmt.Sprintf("%.2fMhz", cpu.Freq.CurrentMHz))
	nextColumn(b, "col-md-6")
	field(b, "Physical cores", fmt.Sprintf("%d", cpu.PhysicalCores))
	field(b, "Total cores", fmt.Sprintf("%d", cpu.LogicalCores))
	closeColumns(b)
}

func renderMemory(b *strings.Builder, mem MemoryMetrics, t Threshold) {
	sectionHeader(b, SectionMemory, 13)

	openColumns(b, "col-md-6")
	field(b, "Total", FormatBytes(mem.TotalBytes))
	field(b, "Available", FormatBytes(mem.AvailableBytes))
	nextColumn(b, "col-md-6")
	field(b, "Used", FormatBytes(mem.UsedBytes))
	field(b, "Percentage", percent(mem.Percent, 1, t))
	closeColumns(b)
}

func renderGPU(b *strings.Builder, snap Snapshot, t Threshold) {
	g := snap.GPU
	sectionHeader(b, SectionGPU, 15)

	openColumns(b, "col-md-6")
	field(b, "Total", fmt.Sprintf("%d Mb", g.TotalMiB))
	field(b, "Free", fmt.Sprintf("%d Mb", g.FreeMiB))
	nextColumn(b, "col-md-6")
	field(b, "Used", fmt.Sprintf("%d Mb", g.UsedMiB))
	field(b, "Percentage", percent(g.Percent, 2, t))
	closeColumns(b)
}

func renderNotebook(b *strings.Builder, p ProcessMetrics, t Threshold) {
	sectionHeader(b, SectionNotebook, 13)

	pct := percent(p.Percent, 2, t)
	if p.Degenerate {
		pct += " (clamped)"
	}

	openColumns(b, "col-md-6")
	field(b, "Total Available", FormatBytes(p.TotalAvailableBytes))
	field(b, "Free", FormatBytes(p.FreeBytes))
	nextColumn(b, "col-md-6")
	field(b, "Used", FormatBytes(p.RSSBytes))
	field(b, "Percentage", pct)
	closeColumns(b)
}

func renderCores(b *strings.Builder, cpu CPUMetrics, t Threshold) {
	sectionHeader(b, SectionCores, 54)
	fmt.Fprintf(b, "<strong>Total CPU Usage: %s</strong><br/>\n", percent(cpu.Percent, 1, t))

	b.WriteString("<table class=\"table table-striped table-dark\">\n<tbody>")
	for i, pct := range cpu.PerCore {
		switch {
		case i == 0:
			b.WriteString("<tr>")
		case i%CoresPerRow == 0:
			b.WriteString("</tr>\n<tr>")
		}
		fmt.Fprintf(b, "<td><strong>Core %d</strong>: %s</td>", i+1, percent(pct, 1, t))
	}
	if len(cpu.PerCore) > 0 {
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody>\n</table>\n")
}
