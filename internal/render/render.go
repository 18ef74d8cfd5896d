// Package render turns practices into reminder message text.
package render

import (
	"strconv"
	"strings"
	"time"

	"practicebot/internal/model"
)

var weekdays = [7]string{"(日)", "(月)", "(火)", "(水)", "(木)", "(金)", "(土)"}

// Weekday returns the parenthesized one-character day label for t.
func Weekday(t time.Time) string {
	return weekdays[t.Weekday()]
}

// Summary is the one-line description of p:
//
//	10/18(水) 16-21 宝A (Carol)
func Summary(p model.Practice) string {
	var b strings.Builder
	b.WriteString(p.Date().Format("01/02"))
	b.WriteString(Weekday(p.Date()))
	b.WriteString(" ")
	b.WriteString(hoursLabel(p))
	b.WriteString(" ")
	b.WriteString(p.Court())
	b.WriteString(" (")
	b.WriteString(p.Booker())
	b.WriteString(")")
	return b.String()
}

// Message renders a reminder. It starts with a blank line, then the
// preamble if any, the summary line, the members run together and finally
// the appendix if any.
func Message(p model.Practice, preamble, appendix string) string {
	var b strings.Builder
	b.WriteString("\n")
	if preamble != "" {
		b.WriteString(preamble)
		b.WriteString("\n")
	}
	b.WriteString(Summary(p))
	b.WriteString("\n")
	b.WriteString(strings.Join(p.Members(), ""))
	if appendix != "" {
		b.WriteString("\n")
		b.WriteString(appendix)
	}
	return b.String()
}

func hoursLabel(p model.Practice) string {
	return strconv.Itoa(p.StartHour()) + "-" + strconv.Itoa(p.EndHour())
}
