package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylec/common"
	"stylec/config"
	"stylec/extract"
	"stylec/misc"
	"stylec/state"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if len(configFile) > 0 {
			env.Rpt.Store(fmt.Sprintf("config/source/%s", filepath.Base(configFile)), configFile)
		}
		if err := env.Rpt.StoreYAML("config/actual.yaml", env.Cfg); err != nil {
			return ctx, fmt.Errorf("unable to store configuration in debug report: %w", err)
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	// persists cache and closes database if any
	if er := env.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close compiler cache: %w", er))
	}

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	env.RestoreStdLog()

	// log is synced now and could be put into report, errors must be
	// reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Errors from subcommands are regular errors, cli.Exit() is not used.
var errWasHandled bool

// called before application context is destroyed, so error could still be
// logged properly
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}

func overwriteFlag() cli.Flag {
	return &cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite existing output files"}
}

const sourcesHelp = `
SOURCE:
    style description(s) to process, following forms are supported:
        path to a file: "[path_to_file]file.yaml"
        path to a directory: "[path_to_directory]directory" - recursively process all .yaml and .yml files under directory (symbolic links are not followed)
        path to zip bundle: "[path_to_bundle]bundle.zip" - all .yaml and .yml files inside bundle
        path to zip bundle with path inside it: "[path_to_bundle]bundle.zip[path_in_bundle]" - matching files under bundle path

    A file may contain several YAML documents which are merged in order as layers.

DESTINATION:
    if absent - STDOUT
    existing directory, path ending with separator or several sources - output
    file names are produced with "output_name_template" from configuration
    otherwise - output file name
`

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "compiler of declarative style descriptions and color themes into CSS",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "compile",
				Usage:        "Compiles style description(s) into stylesheet(s)",
				OnUsageError: usageErrorHandler,
				Action:       extract.Compile,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "class", Usage: "bind rules to `SELECTOR` instead of configured root class (single source only)"},
					&cli.FloatSliceFlag{Name: "breakpoints", Usage: "responsive zone `WIDTHS` in pixels, descending"},
					&cli.StringFlag{Name: "cache", Usage: "keep compiled results in SQLite `FILE` between runs"},
					&cli.StringFlag{Name: "force-zip-cp",
						Usage: "force `ENCODING` for ALL non UTF-8 file names in zip bundles (see IANA.org for character set names)"},
					overwriteFlag(),
				},
				ArgsUsage:          "SOURCE... [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf("%s%s", cli.CommandHelpTemplate, sourcesHelp),
			},
			{
				Name:         "merge",
				Usage:        "Merges style descriptions in order and outputs result (YAML)",
				OnUsageError: usageErrorHandler,
				Action:       extract.Merge,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "tree", Usage: "output indented diagnostic tree instead of YAML"},
					&cli.StringFlag{Name: "force-zip-cp",
						Usage: "force `ENCODING` for ALL non UTF-8 file names in zip bundles (see IANA.org for character set names)"},
					overwriteFlag(),
				},
				ArgsUsage: "SOURCE... [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s%s
Later sources override earlier ones, null value removes key.
`, cli.CommandHelpTemplate, sourcesHelp),
			},
			{
				Name:         "theme",
				Usage:        "Resolves color theme and exports it",
				OnUsageError: usageErrorHandler,
				Action:       extract.Theme,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: common.ExportKindTokens.String(), Usage: "output state token map (YAML)"},
					&cli.BoolFlag{Name: common.ExportKindJson.String(), Usage: "output name to variant map (JSON)"},
					&cli.BoolFlag{Name: common.ExportKindCss.String(), Usage: "output custom properties stylesheet (default)"},
					&cli.BoolFlag{Name: "high-contrast", Usage: "include high contrast variants"},
					&cli.BoolFlag{Name: "no-dark", Usage: "omit dark scheme variants"},
					&cli.BoolFlag{Name: "rgb", Usage: "add space separated RGB triplet companions"},
					&cli.StringFlag{Name: "format", Usage: "color `FORMAT` (supported formats: " + strings.Join(common.ColorFormatNames(), ", ") + ")"},
					overwriteFlag(),
				},
				ArgsUsage: "SOURCE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to theme file (YAML) with seed hue, saturation and color definitions

DESTINATION:
    file or directory to write result to, if absent - STDOUT
`, cli.CommandHelpTemplate),
			},
			{
				Name:               "check",
				Usage:              "Reads stylesheet and reports its structure",
				OnUsageError:       usageErrorHandler,
				Action:             extract.Check,
				ArgsUsage:          "STYLESHEET",
				CustomHelpTemplate: cli.CommandHelpTemplate,
			},
			{
				Name:         "parse",
				Usage:        "Expands shorthand values using configured units",
				OnUsageError: usageErrorHandler,
				Action:       extract.Parse,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ast", Usage: "output syntax tree for every value"},
				},
				ArgsUsage: "VALUE...",
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// log may be either not set yet or already closed
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err  error
		data []byte
		kind string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		kind = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputting configuration", zap.String("state", kind), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
