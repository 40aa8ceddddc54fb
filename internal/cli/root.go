package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/livemon/internal/errors"
	"github.com/rileyhilliard/livemon/internal/ui"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "livemon",
	Short: "Live CPU, memory, and GPU reports for notebooks and terminals",
	Long: `livemon samples this machine's CPU, memory, and GPU usage on an interval
and keeps a single HTML report up to date, either on stdout or in a file
that a notebook cell or browser can display.

Examples:
  livemon monitor
  livemon monitor gpu --interval 2s
  livemon monitor --output ~/reports/live.html
  livemon monitor --once`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.ConfigureColors("never")
		} else {
			ui.ConfigureColors("auto")
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func printError(err error) {
	if isUnknownCommandError(err) {
		name := extractUnknownCommand(err)
		if name == "cpu" || name == "gpu" {
			err = errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' is a monitor mode, not a command", name),
				fmt.Sprintf("Run 'livemon monitor %s'", name))
		}
	}

	var structured *errors.Error
	if stderrors.As(err, &structured) {
		fmt.Fprint(os.Stderr, ui.ErrorStyle().Render(structured.Error()))
		return
	}
	ui.NewStatus(os.Stderr).Fail("%v", err)
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls "foo" out of `unknown command "foo" for "livemon"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for livemon.

Examples:
  # Bash
  livemon completion bash > /etc/bash_completion.d/livemon

  # Zsh
  livemon completion zsh > "${fpath[1]}/_livemon"

  # Fish
  livemon completion fish > ~/.config/fish/completions/livemon.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .livemon.yaml, then ~/.config/livemon/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored status output")

	rootCmd.AddCommand(completionCmd)
}
