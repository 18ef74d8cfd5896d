package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"practicebot/internal/config"
	appLog "practicebot/internal/log"
	"practicebot/internal/metrics"
	"practicebot/internal/model"
	"practicebot/internal/notify"
	"practicebot/internal/remind"
	"practicebot/internal/sheet"
)

var Version = "dev"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		appLog.Error("practicebot failed", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "practicebot",
		Short:         "Practice schedule reminders from the shared workbook",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "./config.yaml", "path to config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(remindCmd(opts))
	root.AddCommand(simulateCmd(opts))
	root.AddCommand(exportCmd(opts))
	root.AddCommand(serveCmd(opts))
	return root
}

// load reads the config and applies the log level.
func (o *rootOptions) load() (*config.Config, error) {
	conf, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", o.configPath, err)
	}
	if o.logLevel != "" {
		conf.LogLevel = o.logLevel
	}
	level, err := appLog.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	appLog.SetLevel(level)

	appLog.Debug("effective config",
		"config_path", o.configPath,
		"timezone", conf.Timezone,
		"workbook", conf.Workbook.Source,
		"sheets", len(conf.Workbook.Sheets),
		"after_hour", conf.Reminder.AfterHour,
		"listen", conf.Listen,
	)
	return conf, nil
}

// newRunner builds the reminder pipeline for conf.
func newRunner(conf *config.Config, d notify.Dispatcher, rec *metrics.Recorder) (*remind.Runner, error) {
	if err := conf.RequireWorkbook(); err != nil {
		return nil, err
	}
	fetcher := sheet.NewFetcher(conf.Workbook.CacheDir, nil)
	return remind.NewRunner(conf, fetcher, d, rec), nil
}

// parseDay reads a YYYY-MM-DD flag in loc. An empty value means today.
func parseDay(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return model.TruncateToDay(time.Now().In(loc)), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", v)
	}
	return t, nil
}
