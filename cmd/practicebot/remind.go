package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appLog "practicebot/internal/log"
	"practicebot/internal/metrics"
	"practicebot/internal/notify"
	"practicebot/internal/render"
)

func remindCmd(opts *rootOptions) *cobra.Command {
	var (
		date   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send today's and tomorrow's practice reminders",
		Long: `Load the workbook, pick the practices to announce and send one message each.

Examples:
  practicebot remind
  practicebot remind --date 2023-10-18 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := opts.load()
			if err != nil {
				return err
			}
			day, err := parseDay(date, conf.Location())
			if err != nil {
				return err
			}

			rec := metrics.New()
			runner, err := newRunner(conf, notify.NewWriter(cmd.OutOrStdout()), rec)
			if err != nil {
				return err
			}

			if dryRun {
				sched, err := runner.LoadSchedule(cmd.Context(), day)
				if err != nil {
					return err
				}
				for _, rem := range runner.Planner.Plan(sched, day) {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", rem.Kind, render.Summary(rem.Practice))
				}
				return nil
			}

			_, runErr := runner.Run(cmd.Context(), day)
			if path := conf.Metrics.Textfile; path != "" {
				if err := rec.WriteTextfile(path); err != nil {
					appLog.Error("metrics textfile write failed", err, "path", path)
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "reference day YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the reminders without sending them")
	return cmd
}
