package main

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	appLog "practicebot/internal/log"
	"practicebot/internal/metrics"
	"practicebot/internal/notify"
	"practicebot/internal/web"
)

const textfileInterval = time.Minute

func serveCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule, planned reminders, calendar feed and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := opts.load()
			if err != nil {
				return err
			}
			// --listen overrides the config file if provided.
			if listen != "" {
				conf.Listen = listen
			}

			rec := metrics.New()
			runner, err := newRunner(conf, &notify.Memory{}, rec)
			if err != nil {
				return err
			}
			srv := web.NewServer(conf, runner, rec)

			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return srv.Serve(gctx, conf.Listen)
			})
			if path := conf.Metrics.Textfile; path != "" {
				g.Go(func() error {
					ticker := time.NewTicker(textfileInterval)
					defer ticker.Stop()
					for {
						select {
						case <-gctx.Done():
							return nil
						case <-ticker.C:
							if err := rec.WriteTextfile(path); err != nil {
								appLog.Error("metrics textfile write failed", err, "path", path)
							}
						}
					}
				})
			}

			err = g.Wait()
			appLog.Info("practicebot exiting")
			return err
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}
