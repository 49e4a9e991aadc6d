// Package daily runs the daily math problem: deciding when to post it, parsing
// the generated answer key, tallying reaction votes and composing the midnight
// summary.
package daily

import (
	"fmt"
	"time"
)

// Phase classifies a moment relative to the daily send window.
type Phase int

const (
	BeforeWindow Phase = iota
	InWindow
	AfterWindow
)

func (p Phase) String() string {
	switch p {
	case BeforeWindow:
		return "before-window"
	case InWindow:
		return "in-window"
	case AfterWindow:
		return "after-window"
	default:
		return "unknown"
	}
}

// TimeOfDay is a wall clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q, expected HH:MM or HH:MM:SS", s)
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// on returns the instant t happens on the calendar day of date, in loc.
func (t TimeOfDay) on(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, t.Second, 0, loc)
}

// Gate evaluates the daily send window in a fixed timezone. The window is the
// closed interval [start, end] of local wall clock time.
type Gate struct {
	loc   *time.Location
	start TimeOfDay
	end   TimeOfDay
}

// NewGate validates and builds a Gate.
func NewGate(loc *time.Location, start, end TimeOfDay) (*Gate, error) {
	if loc == nil {
		return nil, fmt.Errorf("timezone cannot be nil")
	}
	if start.seconds() > end.seconds() {
		return nil, fmt.Errorf("send window start %s is after end %s", start, end)
	}
	return &Gate{loc: loc, start: start, end: end}, nil
}

// Location is the gate's timezone.
func (g *Gate) Location() *time.Location {
	return g.loc
}

// Today returns local midnight of the calendar day containing now.
func (g *Gate) Today(now time.Time) time.Time {
	local := now.In(g.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, g.loc)
}

// Phase classifies now against the window. Sub-second precision is ignored so
// 08:30:00.900 still counts as 08:30:00.
func (g *Gate) Phase(now time.Time) Phase {
	local := now.In(g.loc)
	sec := local.Hour()*3600 + local.Minute()*60 + local.Second()
	switch {
	case sec < g.start.seconds():
		return BeforeWindow
	case sec <= g.end.seconds():
		return InWindow
	default:
		return AfterWindow
	}
}

// NextSend is the next start of the window strictly after the current time of
// day, or today's start when the window has not opened yet.
func (g *Gate) NextSend(now time.Time) time.Time {
	today := g.Today(now)
	if g.Phase(now) == BeforeWindow {
		return g.start.on(today, g.loc)
	}
	return g.start.on(today.AddDate(0, 0, 1), g.loc)
}

// Due reports whether a send should happen now given the date of the last
// send. A zero lastSent means nothing was sent yet.
func (g *Gate) Due(now, lastSent time.Time) bool {
	if g.Phase(now) != InWindow {
		return false
	}
	return lastSent.IsZero() || !SameDate(g.Today(now), lastSent.In(g.loc))
}

// SameDate compares calendar dates as seen in a's location.
func SameDate(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
