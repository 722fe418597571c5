// Package cmd implements the taskplan command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/config"
)

// globalOptions are the persistent flags plus the state loaded from them
// before any subcommand runs.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	cfg     *config.Config
	cleanup func()
}

// NewRootCommand builds the taskplan command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "taskplan",
		Short: "Dependency-aware task scheduling",
		Long: `taskplan orders tasks so that every task comes after the tasks it
depends on, then lays them out on the calendar from a start date using a
fixed number of working hours per day.

Requests are JSON or YAML files listing tasks with their estimated hours,
optional due dates and dependencies. Tasks that cannot finish by their due
date are flagged as conflicts, never rejected. Circular dependencies are
rejected with the path that closes the cycle.

The same scheduler is served over HTTP by 'taskplan serve'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.Context(), cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default is $HOME/.taskplan/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json (overrides config)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newScheduleCommand(opts),
		newValidateCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
		newAPIKeyCommand(),
		newConfigCommand(opts),
	)
	opts.closeAfter(root)

	return root
}

// setup loads configuration and wires logging and telemetry.
func (o *globalOptions) setup(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.cleanup = setupObservability(ctx, cfg, cmd.ErrOrStderr())
	return nil
}

// closeAfter makes every command in the tree release what setup opened once
// its RunE returns. cobra skips post-run hooks when RunE fails, so the
// release is deferred inside RunE itself.
func (o *globalOptions) closeAfter(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			defer o.close()
			return run(c, args)
		}
	}
	for _, sub := range cmd.Commands() {
		o.closeAfter(sub)
	}
}

func (o *globalOptions) close() {
	if o.cleanup != nil {
		o.cleanup()
		o.cleanup = nil
	}
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by the caller.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
