package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/livemon/internal/config"
	"github.com/rileyhilliard/livemon/internal/errors"
	"github.com/rileyhilliard/livemon/internal/lock"
	"github.com/rileyhilliard/livemon/internal/ui"
)

// unlockCmd clears a report lock left behind by a monitor that didn't exit cleanly
var unlockCmd = &cobra.Command{
	Use:   "unlock [report-path]",
	Short: "Release the lock on a report file",
	Long: `Remove the lock a monitor holds on its --output file.

A lock whose process has exited on this machine is taken over
automatically. Use this for locks from another machine on a shared
filesystem, or when you know the holder is gone.

Without a path, output.path from the config is used.

Examples:
  livemon unlock
  livemon unlock ~/reports/live.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return unlockCommand(cmd.ErrOrStderr(), args)
	},
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}

func unlockCommand(w io.Writer, args []string) error {
	var path string
	if len(args) > 0 {
		path = config.ExpandTilde(args[0])
	} else {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Output.Path
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No report path to unlock",
			"Pass one, e.g. 'livemon unlock ~/reports/live.html', or set output.path")
	}

	st := ui.NewStatus(w)
	holder, err := lock.ForceRelease(path)
	if err != nil {
		return err
	}
	switch holder {
	case "":
		st.Stopped("No lock held on %s", path)
	case "unknown":
		st.Success("Lock on %s released", path)
	default:
		st.Success("Lock on %s released (was held by %s)", path, holder)
	}
	return nil
}
