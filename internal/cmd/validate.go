package cmd

import (
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/plan"
	"github.com/felixgeelhaar/taskplan/internal/scheduler"
	"github.com/felixgeelhaar/taskplan/internal/telemetry"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

type validateOptions struct {
	in     string
	format string
}

func newValidateCommand(g *globalOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a request for circular dependencies",
		Long: `Check the dependencies of a request without scheduling it.

The command exits 0 when the dependencies form no cycle and prints the
recommended order. On a cycle it prints the path that closes it and exits
with status 7.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "request file (JSON or YAML)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", ux.FormatText, "output format: text, json, yaml")

	return cmd
}

func runValidate(cmd *cobra.Command, g *globalOptions, opts *validateOptions) error {
	_, span := telemetry.StartCommandSpan(cmd.Context(), "validate")
	defer span.End()

	req, err := loadRequest(opts.in)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	resp, err := plan.CheckDependencies(scheduler.NewService(), req)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	metrics.GetDefault().RecordValidation(resp.Valid)

	f, err := ux.NewFormatter(opts.format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: g.noColor,
	})
	if err != nil {
		return err
	}
	if err := f.Format(resp); err != nil {
		return err
	}

	if !resp.Valid {
		err := errors.New(errors.ErrCodeCycleDetected, resp.Message)
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.RecordSuccess(span, attribute.Int("tasks", len(resp.RecommendedOrder)))
	return nil
}
