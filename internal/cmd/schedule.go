package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/plan"
	"github.com/felixgeelhaar/taskplan/internal/scheduler"
	"github.com/felixgeelhaar/taskplan/internal/telemetry"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

type scheduleOptions struct {
	in         string
	start      string
	dailyHours float64
	format     string
	out        string
}

func newScheduleCommand(g *globalOptions) *cobra.Command {
	opts := &scheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate a schedule from a request file",
		Long: `Read a schedule request, order its tasks by dependency and place them
on the calendar.

Without --in, taskplan looks for taskplan.yaml, taskplan.yml or
taskplan.json in the current directory and its parents.

Examples:
  # Schedule the request in the current project
  taskplan schedule

  # Start on a given day with six working hours per day
  taskplan schedule --in plan.yaml --start 2025-03-03 --daily-hours 6

  # Save the schedule as JSON
  taskplan schedule --in plan.yaml --out schedule.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "request file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.start, "start", "", "project start date (YYYY-MM-DD, default today)")
	cmd.Flags().Float64Var(&opts.dailyHours, "daily-hours", 0, "working hours per day (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", ux.FormatText, "output format: text, json, yaml")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the schedule to a file instead of stdout")

	return cmd
}

func runSchedule(cmd *cobra.Command, g *globalOptions, opts *scheduleOptions) error {
	ctx, span := telemetry.StartCommandSpan(cmd.Context(), "schedule")
	defer span.End()

	req, err := loadRequest(opts.in)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if opts.start != "" {
		d, err := plan.ParseDate(opts.start)
		if err != nil {
			err = errors.NewInvalidRequestError([]string{
				fmt.Sprintf("--start %q is not a YYYY-MM-DD date", opts.start),
			})
			telemetry.RecordError(span, err)
			return err
		}
		req.StartDate = &d
	}
	if cmd.Flags().Changed("daily-hours") {
		req.DailyWorkHours = &opts.dailyHours
	}

	svc := scheduler.NewService(scheduler.WithDefaultDailyWorkHours(g.cfg.Scheduler.DefaultDailyHours))

	start := time.Now()
	resp, err := plan.Schedule(svc, req)
	duration := time.Since(start)
	if err != nil {
		metrics.GetDefault().RecordSchedule(metrics.ResultFor(err), len(req.Tasks), 0, duration)
		telemetry.RecordError(span, err)
		return err
	}

	conflicts := countConflicts(resp)
	metrics.GetDefault().RecordSchedule(metrics.ResultSuccess, len(resp.ScheduledTasks), conflicts, duration)
	telemetry.RecordSuccess(span,
		attribute.Int("conflicts", conflicts),
		attribute.Int("total_days", resp.TotalEstimatedDays),
	)
	log.DefaultLogger().WithContext(ctx).Debug("schedule generated",
		"tasks", len(resp.ScheduledTasks),
		"conflicts", conflicts,
		"duration_ms", duration.Milliseconds(),
	)

	if opts.out != "" {
		if err := plan.SaveResponse(resp, opts.out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schedule written to %s\n", opts.out)
		return nil
	}

	f, err := ux.NewFormatter(opts.format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: g.noColor,
	})
	if err != nil {
		return err
	}
	return f.Format(resp)
}

// loadRequest reads the request at path, discovering it when path is empty.
func loadRequest(path string) (*plan.ScheduleRequest, error) {
	resolved, err := ux.ResolveRequestPath(path)
	if err != nil {
		return nil, err
	}
	return plan.LoadRequest(resolved)
}

func countConflicts(resp *plan.ScheduleResponse) int {
	n := 0
	for _, st := range resp.ScheduledTasks {
		if st.HasConflict {
			n++
		}
	}
	return n
}
