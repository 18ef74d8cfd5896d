package sheet

import (
	"fmt"
	"strconv"
	"strings"
)

// shortFormLastHour is the highest start hour that is written in short
// afternoon form ("4-9" for 16:00-21:00). A start of 7 or less means 19:00
// or earlier in the afternoon; a start of 8 or more is already on the
// 24-hour clock.
const shortFormLastHour = 7

// ParseTimeRange reads a "<start>-<end>" cell into canonical 24-hour
// values. A start of 0..7 is a short afternoon form and gets 12 added to
// both ends; a start of 8..23 is taken as written.
func ParseTimeRange(text string) (start, end int, err error) {
	parts := strings.Split(strings.TrimSpace(text), "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, text)
	}
	start, ok := parseHour(parts[0])
	if !ok {
		return 0, 0, fmt.Errorf("%w: bad start in %q", ErrInvalidTimeRange, text)
	}
	end, ok = parseHour(parts[1])
	if !ok {
		return 0, 0, fmt.Errorf("%w: bad end in %q", ErrInvalidTimeRange, text)
	}

	if start <= shortFormLastHour {
		start += 12
		end += 12
	}
	if start > 23 {
		return 0, 0, fmt.Errorf("%w: start hour %d out of range in %q", ErrInvalidTimeRange, start, text)
	}
	return start, end, nil
}

// parseHour accepts plain decimal digits only, so signs and blanks are rejected.
func parseHour(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 4 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
