package remind

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"practicebot/internal/config"
	appLog "practicebot/internal/log"
	"practicebot/internal/metrics"
	"practicebot/internal/model"
	"practicebot/internal/notify"
	"practicebot/internal/render"
	"practicebot/internal/schedule"
	"practicebot/internal/sheet"
)

// Loader fetches a workbook. *sheet.Fetcher implements it.
type Loader interface {
	Load(ctx context.Context, location string) (sheet.Workbook, error)
}

// Result describes a finished run.
type Result struct {
	RunID     string
	Reminders []Reminder
	Sent      int
}

// Runner loads the schedule, plans the day's reminders and dispatches them.
type Runner struct {
	Source     string
	Loader     Loader
	Layout     sheet.Layout
	SheetNames []string
	Location   *time.Location
	Planner    Planner
	Dispatcher notify.Dispatcher
	Metrics    *metrics.Recorder
}

// NewRunner wires a Runner from cfg. A nil recorder gets a private one.
func NewRunner(cfg *config.Config, loader Loader, d notify.Dispatcher, rec *metrics.Recorder) *Runner {
	if rec == nil {
		rec = metrics.New()
	}
	return &Runner{
		Source:     cfg.Workbook.Source,
		Loader:     loader,
		Layout:     cfg.SheetLayout(),
		SheetNames: cfg.Workbook.Sheets,
		Location:   cfg.Location(),
		Planner:    NewPlanner(cfg.Reminder),
		Dispatcher: d,
		Metrics:    rec,
	}
}

func (r *Runner) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Today is the current calendar day in the runner's location.
func (r *Runner) Today() time.Time {
	return model.TruncateToDay(time.Now().In(r.location()))
}

// LoadSchedule fetches and parses the whole workbook. Dates written without
// a year are placed in the year of ref.
func (r *Runner) LoadSchedule(ctx context.Context, ref time.Time) (*schedule.Schedule, error) {
	wb, err := r.Loader.Load(ctx, r.Source)
	if err != nil {
		return nil, err
	}
	practices, err := sheet.ParseWorkbook(wb, sheet.WorkbookOptions{
		Options:    sheet.Options{Year: ref.In(r.location()).Year(), Location: r.location()},
		Layout:     r.Layout,
		SheetNames: r.SheetNames,
	})
	if err != nil {
		return nil, err
	}
	if r.Metrics != nil {
		r.Metrics.PracticesParsed(len(practices))
	}
	return schedule.New(practices), nil
}

// Run sends the reminders for today. Nothing is sent unless the whole
// workbook parses. Every planned message is attempted; failed sends are
// logged and returned joined.
func (r *Runner) Run(ctx context.Context, today time.Time) (Result, error) {
	if r.Metrics == nil {
		r.Metrics = metrics.New()
	}
	started := time.Now()
	res := Result{RunID: uuid.NewString()}
	day := model.TruncateToDay(today.In(r.location()))

	appLog.Info("reminder run started", "run_id", res.RunID, "date", day.Format(time.DateOnly))

	s, err := r.LoadSchedule(ctx, day)
	if err != nil {
		r.Metrics.ParseFailed()
		r.Metrics.RunFinished(started, err)
		appLog.Error("reminder run aborted", err, "run_id", res.RunID)
		return res, fmt.Errorf("load schedule: %w", err)
	}

	res.Reminders = r.Planner.Plan(s, day)
	r.Metrics.MessagesPlanned(string(KindToday), Count(res.Reminders, KindToday))
	r.Metrics.MessagesPlanned(string(KindTomorrow), Count(res.Reminders, KindTomorrow))

	var errs []error
	for _, rem := range res.Reminders {
		summary := render.Summary(rem.Practice)
		if err := r.Dispatcher.Send(ctx, rem.Message); err != nil {
			r.Metrics.SendFailed()
			appLog.Error("send failed", err, "run_id", res.RunID, "kind", rem.Kind, "practice", summary)
			errs = append(errs, fmt.Errorf("send %s: %w", summary, err))
			continue
		}
		r.Metrics.MessageSent()
		res.Sent++
		appLog.Debug("reminder sent", "run_id", res.RunID, "kind", rem.Kind, "practice", summary)
	}

	err = errors.Join(errs...)
	r.Metrics.RunFinished(started, err)
	appLog.Info("reminder run finished",
		"run_id", res.RunID,
		"planned", len(res.Reminders),
		"sent", res.Sent,
		"failed", len(errs),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return res, err
}
