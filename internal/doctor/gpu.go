package doctor

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rileyhilliard/livemon/internal/gpu"
)

// GPUCheck verifies the GPU tool is installed and returns memory figures.
// A missing tool is a warning: cpu mode doesn't need it.
type GPUCheck struct {
	Command  string
	Querier  gpu.Querier
	LookPath func(string) (string, error) // defaults to exec.LookPath
}

func (c *GPUCheck) Name() string     { return "gpu" }
func (c *GPUCheck) Category() string { return "GPU" }

func (c *GPUCheck) Run(ctx context.Context) CheckResult {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	if _, err := lookPath(c.Command); err != nil {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s not found in PATH", c.Command),
			Suggestion: "gpu mode will leave out the GPU section; cpu mode is unaffected",
		}
	}

	stats, err := c.Querier.Query(ctx)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s is installed but the query failed", c.Command),
			Suggestion: fmt.Sprintf("Run '%s' by hand, or try gpu.query: table", c.Command),
		}
	}
	if stats == nil {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s reported no GPU memory", c.Command),
			Suggestion: "Check a GPU is attached and the driver is loaded",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%d / %d MiB used (%.1f%%)", stats.UsedMiB, stats.TotalMiB, stats.Percent),
	}
}
