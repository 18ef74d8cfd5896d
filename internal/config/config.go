package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	appLog "practicebot/internal/log"
	"practicebot/internal/sheet"
)

// ErrConfiguration marks missing or invalid configuration.
var ErrConfiguration = errors.New("configuration error")

// LayoutConfig mirrors sheet.Layout.
type LayoutConfig struct {
	HeaderRows  int `koanf:"header_rows" yaml:"header_rows"`
	FooterRows  int `koanf:"footer_rows" yaml:"footer_rows"`
	FirstColumn int `koanf:"first_column" yaml:"first_column"`
}

// WorkbookConfig says where the schedule workbook lives and how it is laid out.
type WorkbookConfig struct {
	// Source is a local path or an http(s) URL to the YAML workbook export.
	Source string `koanf:"source" yaml:"source"`
	// CacheDir keeps the last remote workbook for offline runs.
	CacheDir string       `koanf:"cache_dir" yaml:"cache_dir"`
	Layout   LayoutConfig `koanf:"layout" yaml:"layout"`
	// Sheets lists the sheet names to read, in order.
	Sheets []string `koanf:"sheets" yaml:"sheets"`
}

// MessageConfig is the text placed around a reminder body.
type MessageConfig struct {
	Preamble string `koanf:"preamble" yaml:"preamble"`
	Appendix string `koanf:"appendix" yaml:"appendix"`
}

// ReminderConfig controls which practices are announced and how.
type ReminderConfig struct {
	// AfterHour limits same-day reminders to practices starting at or after it.
	AfterHour int           `koanf:"after_hour" yaml:"after_hour"`
	Today     MessageConfig `koanf:"today" yaml:"today"`
	Tomorrow  MessageConfig `koanf:"tomorrow" yaml:"tomorrow"`
}

// MetricsConfig controls run metrics export.
type MetricsConfig struct {
	// Textfile, if set, receives the run metrics in Prometheus text format
	// (for the node_exporter textfile collector).
	Textfile string `koanf:"textfile" yaml:"textfile"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the HTTP view.
type BasicAuthConfig struct {
	Username string `koanf:"username" yaml:"username"`
	Password string `koanf:"password" yaml:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone practice days are anchored in.
	Timezone string `koanf:"timezone" yaml:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	Workbook WorkbookConfig `koanf:"workbook" yaml:"workbook"`
	Reminder ReminderConfig `koanf:"reminder" yaml:"reminder"`
	Metrics  MetricsConfig  `koanf:"metrics" yaml:"metrics"`

	// Listen is the address for `serve`.
	Listen string `koanf:"listen" yaml:"listen"`

	// BasicAuth, if both fields are set, protects every endpoint but /health.
	BasicAuth BasicAuthConfig `koanf:"basic_auth" yaml:"basic_auth"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Timezone: "Asia/Tokyo",
		LogLevel: "info",
		Workbook: WorkbookConfig{
			CacheDir: "./var/workbook-cache",
			Layout:   defaultLayout(),
			Sheets:   slices.Clone(sheet.MonthlySheets),
		},
		Reminder: ReminderConfig{
			AfterHour: 16,
			Today: MessageConfig{
				Preamble: "本日の練習のリマインドです",
				Appendix: "ボール担当の方よろしくお願いいたします",
			},
			Tomorrow: MessageConfig{
				Appendix: "試合球・練習球は誰が持っていきますか？",
			},
		},
		Listen: "127.0.0.1:8080",
	}
}

func defaultLayout() LayoutConfig {
	l := sheet.DefaultLayout()
	return LayoutConfig{HeaderRows: l.HeaderRows, FooterRows: l.FooterRows, FirstColumn: l.FirstColumn}
}

// Normalize fills in blank values so partially written configs still work.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "Asia/Tokyo"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Workbook.CacheDir == "" {
		c.Workbook.CacheDir = "./var/workbook-cache"
	}
	if len(c.Workbook.Sheets) == 0 {
		c.Workbook.Sheets = slices.Clone(sheet.MonthlySheets)
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
}

// Validate reports settings that would make a run meaningless.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrConfiguration, c.Timezone, err)
	}
	if _, err := appLog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if h := c.Reminder.AfterHour; h < 0 || h > 23 {
		return fmt.Errorf("%w: reminder.after_hour %d outside 0-23", ErrConfiguration, h)
	}
	l := c.Workbook.Layout
	if l.HeaderRows < 0 || l.FooterRows < 0 || l.FirstColumn < 0 {
		return fmt.Errorf("%w: workbook.layout values must not be negative", ErrConfiguration)
	}
	return nil
}

// RequireWorkbook fails when no workbook source is configured.
func (c *Config) RequireWorkbook() error {
	if c.Workbook.Source == "" {
		return fmt.Errorf("%w: workbook.source is not set (config file or PRACTICEBOT_WORKBOOK__SOURCE)", ErrConfiguration)
	}
	return nil
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", c.Timezone)
		return time.Local
	}
	return loc
}

// SheetLayout converts the layout settings for the parser.
func (c *Config) SheetLayout() sheet.Layout {
	l := c.Workbook.Layout
	return sheet.Layout{HeaderRows: l.HeaderRows, FooterRows: l.FooterRows, FirstColumn: l.FirstColumn}
}

// Save writes cfg as YAML to path: parent directory 0700, atomic temp file
// + rename, final mode 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".practicebot-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
