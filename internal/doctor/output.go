package doctor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// OutputCheck verifies the report file's directory is writable.
type OutputCheck struct {
	Path string
	Fs   afero.Fs // defaults to the OS filesystem
}

func (c *OutputCheck) Name() string     { return "output" }
func (c *OutputCheck) Category() string { return "OUTPUT" }

func (c *OutputCheck) Run(context.Context) CheckResult {
	if c.Path == "" {
		return CheckResult{Status: StatusPass, Message: "Reports go to stdout"}
	}

	fs := c.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir := filepath.Dir(c.Path)

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't create %s", dir),
			Suggestion: "Pick an output path in a writable directory",
		}
	}
	probe, err := afero.TempFile(fs, dir, ".livemon-doctor-*")
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s isn't writable", dir),
			Suggestion: "Fix the directory permissions or change output.path",
		}
	}
	_ = probe.Close()
	_ = fs.Remove(probe.Name())

	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("Reports go to %s", c.Path)}
}
