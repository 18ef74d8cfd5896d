// Package ics publishes the practice schedule as an iCalendar feed.
package ics

import (
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "practicebot/internal/log"
	"practicebot/internal/model"
)

const (
	defaultProductID = "-//practicebot//practice schedule//JA"
	defaultName      = "練習予定"
	uidDomain        = "@practicebot"
)

// uidNamespace seeds the name-based UUIDs so a practice keeps its UID
// across exports.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("practicebot"))

// Options controls calendar-level properties.
type Options struct {
	// Name is shown by calendar clients (X-WR-CALNAME).
	Name string
	// Timezone is advertised as X-WR-TIMEZONE. Event times are always UTC.
	Timezone string
	// Stamp is written as every DTSTAMP. Zero means time.Now.
	Stamp time.Time
}

// Export renders one VEVENT per practice.
func Export(practices []model.Practice, opts Options) string {
	name := opts.Name
	if name == "" {
		name = defaultName
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetProductId(defaultProductID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(name)
	if opts.Timezone != "" {
		cal.SetXWRTimezone(opts.Timezone)
	}

	for _, p := range practices {
		ev := cal.AddEvent(UID(p))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(p.Start())
		ev.SetEndAt(p.End())
		ev.SetSummary(summary(p))
		ev.SetLocation(p.Court())
		if m := p.Members(); len(m) > 0 {
			ev.SetDescription(strings.Join(m, ", "))
		}
	}

	appLog.Debug("calendar exported", "events", len(practices))
	return cal.Serialize()
}

// UID identifies a practice by its day, start hour, court and booker.
func UID(p model.Practice) string {
	key := strings.Join([]string{
		p.Date().Format(time.DateOnly),
		strconv.Itoa(p.StartHour()),
		p.Court(),
		p.Booker(),
	}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + uidDomain
}

func summary(p model.Practice) string {
	if p.Booker() == "" {
		return p.Court()
	}
	return p.Court() + " (" + p.Booker() + ")"
}
