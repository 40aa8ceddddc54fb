// Package gpu answers "how much GPU memory is in use" by shelling out to
// nvidia-smi. Two parsers sit behind the same Querier interface: a
// structured CSV query and a positional parser for the default table
// output, which is kept as a fallback for drivers that reject --query-gpu.
package gpu

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/livemon/internal/errors"
)

// DefaultCommand is the GPU tool invoked when none is configured.
const DefaultCommand = "nvidia-smi"

// DefaultTimeout bounds a single GPU tool invocation.
const DefaultTimeout = 5 * time.Second

// Query modes accepted by New.
const (
	ModeAuto  = "auto"
	ModeCSV   = "csv"
	ModeTable = "table"
)

// WaitDelay bounds how long a killed tool may hold its output pipes open,
// e.g. through a child process a wrapper script left behind.
const WaitDelay = 500 * time.Millisecond

// ErrTimeout marks a tool invocation that outlived its timeout.
var ErrTimeout = stderrors.New("gpu tool timed out")

// csvArgs is the structured query for memory usage.
var csvArgs = []string{"--query-gpu=memory.used,memory.total", "--format=csv,noheader,nounits"}

// Querier reports GPU memory usage. A nil result with a nil error means the
// host has no GPU data to show.
type Querier interface {
	Query(ctx context.Context) (*MemoryStats, error)
}

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args, killing it when ctx is done. Output is
// abandoned WaitDelay after the kill.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = WaitDelay
	return cmd.Output()
}

// Options configures a Querier built by New.
type Options struct {
	Mode    string
	Command string
	Timeout time.Duration
	Runner  Runner
}

// New builds the Querier for the configured mode.
func New(opts Options) (Querier, error) {
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}

	csv := &CSVQuerier{Command: opts.Command, Timeout: opts.Timeout, Runner: opts.Runner}
	table := &TableQuerier{Command: opts.Command, Timeout: opts.Timeout, Runner: opts.Runner}

	switch strings.ToLower(opts.Mode) {
	case "", ModeAuto:
		return &FallbackQuerier{Primary: csv, Fallback: table}, nil
	case ModeCSV:
		return csv, nil
	case ModeTable:
		return table, nil
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown GPU query mode '%s'", opts.Mode),
			"Use one of: auto, csv, table")
	}
}

// run invokes the tool under its own timeout.
func run(ctx context.Context, runner Runner, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := runner.Run(ctx, name, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.WrapWithCode(ErrTimeout, errors.ErrGPU,
				fmt.Sprintf("%s did not finish within %s", name, timeout),
				"Raise gpu.timeout or run in cpu mode")
		}
		return "", errors.WrapWithCode(err, errors.ErrGPU,
			fmt.Sprintf("%s failed", name),
			"Check that the NVIDIA driver and nvidia-smi are installed")
	}
	return string(out), nil
}

// CSVQuerier uses nvidia-smi's structured --query-gpu interface.
type CSVQuerier struct {
	Command string
	Timeout time.Duration
	Runner  Runner
}

// Query runs the CSV query and parses the first GPU.
func (q *CSVQuerier) Query(ctx context.Context) (*MemoryStats, error) {
	out, err := run(ctx, q.Runner, q.Timeout, q.Command, csvArgs...)
	if err != nil {
		if isAbsent(err) {
			return nil, nil
		}
		return nil, err
	}
	stats, err := ParseCSV(out)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrGPU, "Unexpected nvidia-smi CSV output", "")
	}
	return stats, nil
}

// TableQuerier parses the default nvidia-smi table positionally.
type TableQuerier struct {
	Command string
	Timeout time.Duration
	Runner  Runner
}

// Query runs the tool without arguments and parses the memory cell.
func (q *TableQuerier) Query(ctx context.Context) (*MemoryStats, error) {
	out, err := run(ctx, q.Runner, q.Timeout, q.Command)
	if err != nil {
		if isAbsent(err) {
			return nil, nil
		}
		return nil, err
	}
	stats, err := ParseTable(out)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrGPU, "Unexpected nvidia-smi table output", "")
	}
	return stats, nil
}

// FallbackQuerier asks Primary first and Fallback when Primary errors or
// has no data. A Primary timeout is returned as is. Once Primary comes back
// empty or fails any other way, later queries go straight to Fallback, so
// each query runs the tool once.
type FallbackQuerier struct {
	Primary  Querier
	Fallback Querier

	skipPrimary atomic.Bool
}

// Query implements Querier.
func (q *FallbackQuerier) Query(ctx context.Context) (*MemoryStats, error) {
	if q.skipPrimary.Load() {
		return q.Fallback.Query(ctx)
	}

	stats, err := q.Primary.Query(ctx)
	if err == nil && stats != nil {
		return stats, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if stderrors.Is(err, ErrTimeout) {
		return nil, err
	}
	q.skipPrimary.Store(true)

	fb, fbErr := q.Fallback.Query(ctx)
	if fbErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fbErr
	}
	if fb == nil && err != nil {
		return nil, err
	}
	return fb, nil
}

// isAbsent reports whether err means the tool is missing or exited without
// finding a GPU, both of which are "no data" rather than failures. A
// killed tool is a timeout, not an absence.
func isAbsent(err error) bool {
	if stderrors.Is(err, ErrTimeout) {
		return false
	}
	var exitErr *exec.ExitError
	return stderrors.Is(err, exec.ErrNotFound) || stderrors.As(err, &exitErr)
}
