package schedule

import (
	"time"

	"practicebot/internal/model"
)

// Filter reports whether a practice belongs in a filtered schedule.
type Filter func(model.Practice) bool

// OnOrAfterDate matches practices on ref's calendar day or later.
// The time of day of ref is ignored.
func OnOrAfterDate(ref time.Time) Filter {
	day := model.TruncateToDay(ref)
	return func(p model.Practice) bool {
		return model.CompareDays(p.Date(), day) >= 0
	}
}

// OnDate matches practices on exactly ref's calendar day.
func OnDate(ref time.Time) Filter {
	day := model.TruncateToDay(ref)
	return func(p model.Practice) bool {
		return model.CompareDays(p.Date(), day) == 0
	}
}

// BeforeDate matches practices on a calendar day earlier than ref's.
func BeforeDate(ref time.Time) Filter {
	day := model.TruncateToDay(ref)
	return func(p model.Practice) bool {
		return model.CompareDays(p.Date(), day) < 0
	}
}

// AfterHour matches practices starting at hour h or later.
func AfterHour(h int) Filter {
	return func(p model.Practice) bool {
		return p.StartHour() >= h
	}
}

// All matches when every filter matches. With no filters it matches everything.
func All(filters ...Filter) Filter {
	return func(p model.Practice) bool {
		for _, f := range filters {
			if !f(p) {
				return false
			}
		}
		return true
	}
}
