package remind

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"practicebot/internal/model"
	"practicebot/internal/schedule"
)

// ErrInvalidDays is returned when a simulation covers no days.
var ErrInvalidDays = errors.New("days must be positive")

// Day is the plan for one reference day.
type Day struct {
	Date      time.Time  `json:"date"`
	Reminders []Reminder `json:"reminders"`
}

// Simulate plans every day from from for days consecutive days, as a daily
// run would.
func (p Planner) Simulate(s *schedule.Schedule, from time.Time, days int) ([]Day, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: model.TruncateToDay(from),
		Count:   days,
	})
	if err != nil {
		return nil, fmt.Errorf("daily rule: %w", err)
	}

	refs := rule.All()
	out := make([]Day, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Day{Date: ref, Reminders: p.Plan(s, ref)})
	}
	return out, nil
}
