package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"practicebot/internal/ics"
	appLog "practicebot/internal/log"
	"practicebot/internal/notify"
)

func exportCmd(opts *rootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the schedule as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := opts.load()
			if err != nil {
				return err
			}
			runner, err := newRunner(conf, &notify.Memory{}, nil)
			if err != nil {
				return err
			}
			sched, err := runner.LoadSchedule(cmd.Context(), runner.Today())
			if err != nil {
				return err
			}

			body := ics.Export(sched.Practices(), ics.Options{Timezone: conf.Timezone})
			if outPath == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(outPath, []byte(body), 0o644); err != nil {
				return err
			}
			appLog.Info("calendar written", "path", outPath, "events", sched.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}
