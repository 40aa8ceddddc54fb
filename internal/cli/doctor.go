package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/livemon/internal/config"
	"github.com/rileyhilliard/livemon/internal/doctor"
	"github.com/rileyhilliard/livemon/internal/errors"
	"github.com/rileyhilliard/livemon/internal/gpu"
	"github.com/rileyhilliard/livemon/internal/monitor"
	"github.com/rileyhilliard/livemon/internal/ui"
)

var doctorJSON bool

// doctorCmd diagnoses why sections might be empty
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that every report section can be filled",
	Long: `Run diagnostic checks for config, CPU and memory sampling, the GPU
tool, and the output path.

Examples:
  livemon doctor
  livemon doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout(), doctorJSON)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(doctorCmd)
}

func doctorCommand(ctx context.Context, w io.Writer, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// A broken config is reported by the config check; the others fall
	// back to defaults.
	cfg, _, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	results := doctor.RunAllParallel(ctx, doctorChecks(cfg, monitor.NewProbe()))

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printDoctorResults(w, results)
	}

	if doctor.HasFailures(results) {
		return errors.New(errors.ErrConfig,
			doctor.Summary(results),
			"Fix the failed checks above and run 'livemon doctor' again")
	}
	return nil
}

func doctorChecks(cfg *config.Config, probe monitor.Probe) []doctor.Check {
	querier, err := gpu.New(gpu.Options{
		Mode:    cfg.GPU.Query,
		Command: cfg.GPU.Command,
		Timeout: cfg.GPU.Timeout,
	})
	if err != nil {
		querier, _ = gpu.New(gpu.Options{Command: cfg.GPU.Command})
	}

	return []doctor.Check{
		&doctor.ConfigCheck{ConfigPath: cfgFile},
		&doctor.CPUCheck{Probe: probe},
		&doctor.MemoryCheck{Probe: probe},
		&doctor.GPUCheck{Command: cfg.GPU.Command, Querier: querier},
		&doctor.OutputCheck{Path: cfg.Output.Path},
	}
}

func printDoctorResults(w io.Writer, results []doctor.CheckResult) {
	st := ui.NewStatus(w)
	order, grouped := doctor.GroupByCategory(results)

	for _, category := range order {
		fmt.Fprintln(w, ui.MutedStyle().Render(category))
		for _, r := range grouped[category] {
			switch r.Status {
			case doctor.StatusPass:
				st.Success("%s", r.Message)
			case doctor.StatusWarn:
				st.Warn("%s", r.Message)
			default:
				st.Fail("%s", r.Message)
			}
			if r.Suggestion != "" && r.Status != doctor.StatusPass {
				fmt.Fprintf(w, "  %s\n", ui.MutedStyle().Render(r.Suggestion))
			}
		}
		fmt.Fprintln(w)
	}

	if doctor.HasFailures(results) {
		fmt.Fprintln(w, ui.ErrorStyle().Render(doctor.Summary(results)))
	} else {
		fmt.Fprintln(w, ui.SuccessStyle().Render(doctor.Summary(results)))
	}
}
