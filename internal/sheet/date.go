package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var monthDayPattern = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)

// ParseDateString reads date text. "10月18日" style text is a month and day in
// year; anything else goes through a general date parser in loc. The result
// is midnight in loc.
func ParseDateString(s string, year int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if m := monthDayPattern.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return calendarDay(year, time.Month(month), day, loc)
	}

	t, err := dateparse.ParseIn(strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// calendarDay rejects days that time.Date would roll into the next month.
func calendarDay(year int, month time.Month, day int, loc *time.Location) (time.Time, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %d-%02d-%02d does not exist", ErrInvalidDate, year, month, day)
	}
	return t, nil
}
