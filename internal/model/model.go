package model

import (
	"cmp"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidHours is returned when a start or end hour falls outside [0,23].
var ErrInvalidHours = errors.New("invalid hours")

// Practice is one scheduled practice session after normalization.
// Values are immutable; the roster is only extended through a
// PracticeBuilder while a sheet is being parsed.
type Practice struct {
	date       time.Time
	startHour  int
	endHour    int
	courtName  string
	courtLabel string
	members    []string
	booker     string
}

// Date is midnight of the practice day in the location it was parsed in.
func (p Practice) Date() time.Time { return p.date }

func (p Practice) StartHour() int { return p.startHour }
func (p Practice) EndHour() int   { return p.endHour }

func (p Practice) CourtName() string  { return p.courtName }
func (p Practice) CourtLabel() string { return p.courtLabel }

// Court is the venue followed by its label, as shown in messages.
func (p Practice) Court() string { return p.courtName + p.courtLabel }

func (p Practice) Booker() string { return p.booker }

// Members returns a copy of the roster in display order.
func (p Practice) Members() []string {
	out := make([]string, len(p.members))
	copy(out, p.members)
	return out
}

// Start is the instant the practice begins.
func (p Practice) Start() time.Time {
	return atHour(p.date, p.startHour)
}

// End is the instant the practice finishes. An end hour earlier than the
// start hour is read as running past midnight.
func (p Practice) End() time.Time {
	end := atHour(p.date, p.endHour)
	if p.endHour < p.startHour {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// PracticeBuilder accumulates a practice while its row and any
// continuation rows are read.
type PracticeBuilder struct {
	p Practice
}

// NewPracticeBuilder validates the hours and truncates date to midnight in
// its own location.
func NewPracticeBuilder(date time.Time, startHour, endHour int, courtName, courtLabel, booker string, members []string) (*PracticeBuilder, error) {
	if !validHour(startHour) || !validHour(endHour) {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidHours, startHour, endHour)
	}
	return &PracticeBuilder{p: Practice{
		date:       TruncateToDay(date),
		startHour:  startHour,
		endHour:    endHour,
		courtName:  courtName,
		courtLabel: courtLabel,
		members:    append([]string{}, members...),
		booker:     booker,
	}}, nil
}

// AddMembers appends names to the end of the roster.
func (b *PracticeBuilder) AddMembers(names ...string) {
	b.p.members = append(b.p.members, names...)
}

// Build returns the finished Practice. Later AddMembers calls do not affect
// values already built.
func (b *PracticeBuilder) Build() Practice {
	p := b.p
	p.members = append([]string{}, b.p.members...)
	return p
}

func atHour(day time.Time, h int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, h, 0, 0, 0, day.Location())
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

// TruncateToDay drops the time-of-day of t, keeping its location.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CompareDays orders a and b by calendar day, each read in its own location.
func CompareDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if c := cmp.Compare(ay, by); c != 0 {
		return c
	}
	if c := cmp.Compare(am, bm); c != 0 {
		return c
	}
	return cmp.Compare(ad, bd)
}
