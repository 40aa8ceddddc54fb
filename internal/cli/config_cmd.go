package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/livemon/internal/config"
	"github.com/rileyhilliard/livemon/internal/errors"
	"github.com/rileyhilliard/livemon/internal/ui"
)

// InitOptions holds options for config init.
type InitOptions struct {
	Path           string // Where to write; defaults to ./.livemon.yaml
	Global         bool   // Write ~/.config/livemon/config.yaml instead
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

var (
	initFlags   InitOptions
	initYes     bool
	showDefault bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, inspect, or change livemon configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .livemon.yaml",
	Long: `Create a livemon configuration file with sensible defaults.

Asks for the mode, refresh interval, and output path when run in a
terminal. Use --yes to accept the defaults without prompting.

Examples:
  livemon config init
  livemon config init --yes
  livemon config init --global --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initFlags
		if opts.Path == "" {
			opts.Path = cfgFile
		}
		opts.NonInteractive = initYes || !term.IsTerminal(int(os.Stdin.Fd()))
		return Init(opts, cmd.ErrOrStderr())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML",
	Long: `Print the configuration livemon would run with: the config file found
from --config or the search path, plus environment overrides.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.OutOrStdout(), cmd.ErrOrStderr(), showDefault)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one value in the config file",
	Long: `Set a dotted key in the config file, keeping comments and layout.
The result is validated and the change is rolled back if it's invalid.

Examples:
  livemon config set monitor.interval 2s
  livemon config set monitor.thresholds.cpu.warning 60
  livemon config set output.path ~/reports/live.html`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setConfigValue(cmd.ErrOrStderr(), args[0], args[1])
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&initFlags.Overwrite, "force", false, "overwrite an existing config file")
	configInitCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "accept defaults without prompting")
	configInitCmd.Flags().BoolVar(&initFlags.Global, "global", false, "write ~/.config/livemon/config.yaml")
	configShowCmd.Flags().BoolVar(&showDefault, "defaults", false, "print built-in defaults, ignoring files and environment")

	configCmd.AddCommand(configInitCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// Init creates a new config file.
func Init(opts InitOptions, w io.Writer) error {
	path, err := initPath(opts)
	if err != nil {
		return err
	}
	st := ui.NewStatus(w)

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Write(path, cfg, true); err != nil {
		return err
	}

	st.Success("Created %s", path)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  livemon monitor         - Start a live report")
	fmt.Fprintln(w, "  livemon monitor gpu     - Include GPU memory")
	fmt.Fprintln(w, "  livemon config show     - Check the resolved settings")
	return nil
}

func initPath(opts InitOptions) (string, error) {
	switch {
	case opts.Path != "":
		return opts.Path, nil
	case opts.Global:
		return config.GlobalPath()
	default:
		return filepath.Join(".", config.ConfigFileName), nil
	}
}

// promptConfig asks for the handful of settings people usually change.
func promptConfig(cfg *config.Config) error {
	mode := cfg.Monitor.Mode
	interval := cfg.Monitor.Interval.String()
	output := cfg.Output.Path

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What should livemon sample?").
				Options(
					huh.NewOption("CPU, memory, and this process", "cpu"),
					huh.NewOption("All of that plus GPU memory (nvidia-smi)", "gpu"),
				).
				Value(&mode),
			huh.NewInput().
				Title("Refresh interval").
				Description("How often the report is replaced, e.g. 1s or 500ms").
				Value(&interval).
				Validate(func(s string) error {
					d, err := time.ParseDuration(s)
					if err != nil {
						return fmt.Errorf("not a duration - try 1s or 500ms")
					}
					if d < config.MinInterval {
						return fmt.Errorf("use at least %s", config.MinInterval)
					}
					return nil
				}),
			huh.NewInput().
				Title("Report file").
				Description("Leave empty to print reports to stdout").
				Value(&output),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Run with --yes to accept defaults")
	}

	d, _ := time.ParseDuration(interval)
	cfg.Monitor.Mode = mode
	cfg.Monitor.Interval = d
	if cfg.Monitor.CPUWindow > d {
		cfg.Monitor.CPUWindow = d
	}
	cfg.Output.Path = output
	return nil
}

func showConfig(stdout, stderr io.Writer, defaults bool) error {
	cfg := config.DefaultConfig()
	source := "built-in defaults"

	if !defaults {
		loaded, path, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		if path != "" {
			source = path
		}
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to render config", "")
	}
	fmt.Fprintln(stderr, ui.MutedStyle().Render("# source: "+source))
	_, err = stdout.Write(data)
	if err != nil {
		return err
	}

	if verr := config.Validate(cfg); verr != nil {
		ui.NewStatus(stderr).Warn("This config won't load as-is:")
		fmt.Fprint(stderr, verr.Error())
	}
	return nil
}

func setConfigValue(w io.Writer, key, value string) error {
	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file to change",
			"Run 'livemon config init' first, or pass --config")
	}

	before, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to read "+path, "Check file permissions")
	}
	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Use a dotted key like monitor.interval")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if rerr := os.WriteFile(path, before, 0o644); rerr != nil {
			return errors.WrapWithCode(rerr, errors.ErrConfig,
				"Config is now invalid and couldn't be restored",
				"Fix "+path+" by hand")
		}
		return err
	}

	ui.NewStatus(w).Success("Set %s = %s in %s", key, value, path)
	return nil
}
