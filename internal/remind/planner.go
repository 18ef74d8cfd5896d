// Package remind decides which practices to announce on a given day and
// sends the announcements.
package remind

import (
	"time"

	"practicebot/internal/config"
	"practicebot/internal/model"
	"practicebot/internal/render"
	"practicebot/internal/schedule"
)

type Kind string

const (
	KindToday    Kind = "today"
	KindTomorrow Kind = "tomorrow"
)

// Template is the text placed around one reminder.
type Template struct {
	Preamble string
	Appendix string
}

// Planner picks reminders for a reference day. Same-day practices are only
// announced when they start at AfterHour or later; next-day practices are
// always announced.
type Planner struct {
	AfterHour int
	Today     Template
	Tomorrow  Template
}

// Reminder is one message about one practice.
type Reminder struct {
	Kind     Kind           `json:"kind"`
	Practice model.Practice `json:"-"`
	Message  string         `json:"message"`
}

// NewPlanner reads the reminder settings from cfg.
func NewPlanner(cfg config.ReminderConfig) Planner {
	return Planner{
		AfterHour: cfg.AfterHour,
		Today:     Template{Preamble: cfg.Today.Preamble, Appendix: cfg.Today.Appendix},
		Tomorrow:  Template{Preamble: cfg.Tomorrow.Preamble, Appendix: cfg.Tomorrow.Appendix},
	}
}

// DefaultPlanner uses the built-in reminder texts.
func DefaultPlanner() Planner {
	return NewPlanner(config.DefaultConfig().Reminder)
}

// Plan returns today's reminders followed by tomorrow's, each group in
// schedule order. Only the calendar day of today matters.
func (p Planner) Plan(s *schedule.Schedule, today time.Time) []Reminder {
	day := model.TruncateToDay(today)
	next := day.AddDate(0, 0, 1)

	upcoming := s.Filter(schedule.OnOrAfterDate(day))
	todays := upcoming.Filter(schedule.OnDate(day)).Filter(schedule.AfterHour(p.AfterHour))
	tomorrows := upcoming.Filter(schedule.OnDate(next))

	out := make([]Reminder, 0, todays.Len()+tomorrows.Len())
	out = appendReminders(out, KindToday, todays, p.Today)
	out = appendReminders(out, KindTomorrow, tomorrows, p.Tomorrow)
	return out
}

func appendReminders(out []Reminder, kind Kind, s *schedule.Schedule, t Template) []Reminder {
	for _, pr := range s.Practices() {
		out = append(out, Reminder{
			Kind:     kind,
			Practice: pr,
			Message:  render.Message(pr, t.Preamble, t.Appendix),
		})
	}
	return out
}

// Count returns how many reminders are of kind k.
func Count(reminders []Reminder, k Kind) int {
	n := 0
	for _, r := range reminders {
		if r.Kind == k {
			n++
		}
	}
	return n
}
