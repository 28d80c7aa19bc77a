// Package datetime holds the pure date and time helpers shared by the store,
// the timer and the aggregation engine. Nothing here panics on bad input.
package datetime

import (
	"fmt"
	"strings"
	"time"
)

// Common layouts in the token syntax understood by Format.
const (
	LayoutDate     = "YYYY-MM-DD"
	LayoutDateTime = "YYYY-MM-DD HH:mm:ss"
	LayoutClock    = "HH:mm"
	LayoutLabel    = "MM-DD"
)

var tokenReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"MM", "01",
	"DD", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

// Format renders t with a token layout such as "YYYY-MM-DD HH:mm".
func Format(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(tokenReplacer.Replace(layout))
}

// FormatString parses s and renders it with layout. Unparseable input
// yields "".
func FormatString(s, layout string) string {
	t, ok := Parse(s)
	if !ok {
		return ""
	}
	return Format(t, layout)
}

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse reads RFC3339 or "YYYY-MM-DD[ HH:mm[:ss]]" in local time. ok is
// false for anything else.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Components is a timestamp split into calendar and clock fields.
type Components struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

func Parts(t time.Time) Components {
	return Components{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// DiffMinutes is the whole-minute difference end-start, floored. A negative
// result means end is before start.
func DiffMinutes(start, end time.Time) int {
	d := end.Sub(start)
	m := d / time.Minute
	if d < 0 && d%time.Minute != 0 {
		m--
	}
	return int(m)
}

// StartOfDay returns local midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a falls on b's calendar day, in b's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type DayClass int

const (
	Other DayClass = iota
	Today
	Yesterday
)

func (c DayClass) String() string {
	switch c {
	case Today:
		return "today"
	case Yesterday:
		return "yesterday"
	}
	return "other"
}

// Classify places t relative to the wall clock at call time.
func Classify(t time.Time) DayClass {
	return ClassifyAt(t, time.Now())
}

func ClassifyAt(t, now time.Time) DayClass {
	if SameDay(t, now) {
		return Today
	}
	if SameDay(t, now.AddDate(0, 0, -1)) {
		return Yesterday
	}
	return Other
}

// FormatDuration renders minutes as "1h 5m", "2h" or "45m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// Age is a profile age. Months is the calendar month difference; Days is
// what remains of the total day count after taking 30 days per month.
type Age struct {
	Months int `json:"months"`
	Days   int `json:"days"`
}

func (a Age) String() string {
	return fmt.Sprintf("%dmo %dd", a.Months, a.Days)
}

// AgeAt approximates months as 30-day blocks, so Days drifts from the
// calendar for long spans.
func AgeAt(birth, now time.Time) Age {
	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	totalDays := int(now.Sub(birth).Hours() / 24)
	return Age{Months: months, Days: totalDays - months*30}
}
