// Package schedule holds the ordered collection of practices and the date
// filters used to pick the ones a reminder is about.
package schedule

import (
	"cmp"
	"slices"

	"practicebot/internal/model"
)

// Schedule is an ordered set of practices, ascending by (date, start hour).
type Schedule struct {
	practices []model.Practice
}

// New copies practices and sorts the copy by date then start hour. The sort
// is stable, so practices sharing both keep their input order.
func New(practices []model.Practice) *Schedule {
	sorted := slices.Clone(practices)
	slices.SortStableFunc(sorted, compareStart)
	return &Schedule{practices: sorted}
}

// NewSorted trusts that practices are already in schedule order.
func NewSorted(practices []model.Practice) *Schedule {
	return &Schedule{practices: slices.Clone(practices)}
}

// Practices returns the practices in schedule order. The slice is a copy.
func (s *Schedule) Practices() []model.Practice {
	return slices.Clone(s.practices)
}

// Len reports how many practices the schedule holds.
func (s *Schedule) Len() int { return len(s.practices) }

// Filter returns a new Schedule with the practices f accepts, in the same
// relative order. s is left untouched.
func (s *Schedule) Filter(f Filter) *Schedule {
	out := make([]model.Practice, 0, len(s.practices))
	for _, p := range s.practices {
		if f(p) {
			out = append(out, p)
		}
	}
	return &Schedule{practices: out}
}

func compareStart(a, b model.Practice) int {
	if c := model.CompareDays(a.Date(), b.Date()); c != 0 {
		return c
	}
	return cmp.Compare(a.StartHour(), b.StartHour())
}
