package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"practicebot/internal/notify"
	"practicebot/internal/render"
)

func simulateCmd(opts *rootOptions) *cobra.Command {
	var (
		from string
		days int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Show what daily runs would send over a range of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := opts.load()
			if err != nil {
				return err
			}
			start, err := parseDay(from, conf.Location())
			if err != nil {
				return err
			}
			runner, err := newRunner(conf, &notify.Memory{}, nil)
			if err != nil {
				return err
			}
			sched, err := runner.LoadSchedule(cmd.Context(), start)
			if err != nil {
				return err
			}
			plan, err := runner.Planner.Simulate(sched, start, days)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range plan {
				fmt.Fprintf(out, "== %s%s: %d\n", d.Date.Format(time.DateOnly), render.Weekday(d.Date), len(d.Reminders))
				for _, rem := range d.Reminders {
					fmt.Fprintf(out, "%-8s %s\n", rem.Kind, render.Summary(rem.Practice))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first reference day YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&days, "days", 30, "number of days to simulate")
	return cmd
}
