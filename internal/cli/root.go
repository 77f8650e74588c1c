package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/aryankumar/pkmeans/internal/config"
	"github.com/aryankumar/pkmeans/internal/output"
	"github.com/aryankumar/pkmeans/internal/util"
	"github.com/spf13/cobra"
)

// app carries state shared by every command of one invocation.
type app struct {
	cfgFile string
	manager *config.Manager
	cfg     *config.Config
	logger  *slog.Logger
}

// Execute runs the root command with the provided context
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	a := &app{logger: slog.Default()}

	rootCmd := &cobra.Command{
		Use:   "pkmeans <threads>",
		Short: "pkmeans - parallel k-means clustering of 3D points",
		Long: `pkmeans clusters three dimensional points with Lloyd's k-means algorithm,
splitting every iteration across a fixed number of worker goroutines.

The dataset is read from stdin (or --input) as whitespace separated tokens:
the cluster count k, the point count n, k initial means and n points, each
as three numbers. The final means are written to stdout.

  cat input.txt | pkmeans 4 > means.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			threads, err := parseThreads(args[0])
			if err != nil {
				return err
			}
			return a.runCluster(cmd, threads)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.pkmeans.yaml)")
	flags.StringP("input", "i", "", "dataset file (default is stdin)")
	flags.StringP("output", "o", "", "output format (text, table, json, yaml)")
	flags.Bool("wide", false, "include the assignment and partition table in table, json and yaml output")
	flags.Int("max-iterations", 0, "stop after this many mean updates (0 means until convergence)")
	flags.String("trace-file", "", "write one JSON event per phase and barrier to this file")
	flags.String("metrics-file", "", "write Prometheus metrics for the run to this file")
	flags.BoolP("verbose", "v", false, "verbose output with debug logging")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("no-headers", false, "omit headers in table output")

	rootCmd.AddCommand(newSweepCmd(a))
	rootCmd.AddCommand(newVerifyCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// flagBindings maps configuration keys to persistent flag names.
var flagBindings = map[string]string{
	"run.input":         "input",
	"run.maxIterations": "max-iterations",
	"output.format":     "output",
	"output.wide":       "wide",
	"output.noColor":    "no-color",
	"output.noHeaders":  "no-headers",
	"trace.file":        "trace-file",
	"metrics.file":      "metrics-file",
}

// initConfig loads configuration and sets up logging
func (a *app) initConfig(cmd *cobra.Command) error {
	a.setupLogging(cmd)

	a.manager = config.NewManager(a.cfgFile)
	for key, name := range flagBindings {
		if err := a.manager.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}

	cfg, err := a.manager.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if used := a.manager.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded configuration", "file", used)
	}
	return nil
}

// setupLogging configures structured logging with slog
func (a *app) setupLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")

	a.logger = newLogger(cmd.ErrOrStderr(), verbose, noColor)
	slog.SetDefault(a.logger)

	if verbose {
		a.logger.Debug("verbose logging enabled")
	}
}

func newLogger(w io.Writer, verbose, noColor bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}

	if noColor {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// formatter builds the output formatter from the loaded configuration.
func (a *app) formatter() (output.Formatter, error) {
	format, err := output.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return nil, util.NewValidationError("output", a.cfg.Output.Format, "must be one of text, table, json, yaml")
	}
	return output.NewFormatter(format,
		output.WithNoColor(a.cfg.Output.NoColor),
		output.WithWide(a.cfg.Output.Wide),
		output.WithNoHeaders(a.cfg.Output.NoHeaders),
	), nil
}

// parseThreads validates the worker count argument.
func parseThreads(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, util.NewValidationError("threads", arg, "must be a positive integer")
	}
	return n, nil
}
