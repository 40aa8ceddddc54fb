// Package monitor samples local host metrics and renders them as an HTML
// fragment for live display in a notebook cell.
//
// # Architecture
//
// A tick is sample -> render -> display:
//
//	Sampler   - reads a Snapshot through a Probe (gopsutil in production)
//	            and, in gpu mode, a gpu.Querier
//	Render    - turns one Snapshot into one HTML fragment, no side effects
//	Surface   - the display sink; FileSurface and WriterSurface ship here,
//	            SurfaceFunc adapts a host's own display hook
//	Session   - one background goroutine repeating ticks until Stop
//
// # Tick cadence
//
// The per-core CPU reading blocks for Options.Window. The session then
// sleeps for whatever is left of Options.Interval, so the refresh rate does
// not depend on the measurement window.
//
// # Failure handling
//
// A sub-reading that fails leaves its section empty or zeroed and the loop
// continues. A panic inside a tick ends the session: the error is shown on
// the surface and returned from Session.Wait.
//
// # Report layout
//
// Sections appear once each, in order: System Information, CPU Information,
// Memory Utilization, GPU Utilization (gpu mode with data only), Notebook
// Utilization, CPU Utilization. The per-core table wraps every CoresPerRow
// cells.
package monitor
