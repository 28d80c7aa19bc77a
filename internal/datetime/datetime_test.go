package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local)

	assert.Equal(t, "2024-03-07", Format(ts, LayoutDate))
	assert.Equal(t, "2024-03-07 09:05:02", Format(ts, LayoutDateTime))
	assert.Equal(t, "09:05", Format(ts, LayoutClock))
	assert.Equal(t, "03-07", Format(ts, LayoutLabel))
	assert.Equal(t, "", Format(time.Time{}, LayoutDate))
}

func TestFormatStringInvalid(t *testing.T) {
	assert.Equal(t, "", FormatString("not a date", LayoutDate))
	assert.Equal(t, "", FormatString("", LayoutDate))
	assert.Equal(t, "2024-03-07", FormatString("2024-03-07 10:00", LayoutDate))
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-07", time.Date(2024, 3, 7, 0, 0, 0, 0, time.Local)},
		{"2024-03-07 10:30", time.Date(2024, 3, 7, 10, 30, 0, 0, time.Local)},
		{"2024-03-07 10:30:15", time.Date(2024, 3, 7, 10, 30, 15, 0, time.Local)},
		{"2024-03-07T10:30:00Z", time.Date(2024, 3, 7, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.in)
		if assert.True(t, ok, tc.in) {
			assert.True(t, tc.want.Equal(got), "%s: want %v got %v", tc.in, tc.want, got)
		}
	}

	for _, bad := range []string{"", "yesterday", "2024-13-40", "10:30"} {
		_, ok := Parse(bad)
		assert.False(t, ok, bad)
	}
}

func TestParts(t *testing.T) {
	c := Parts(time.Date(2024, 12, 31, 23, 59, 58, 0, time.Local))
	assert.Equal(t, Components{Year: 2024, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 58}, c)
}

func TestDiffMinutes(t *testing.T) {
	base := time.Date(2024, 3, 7, 10, 0, 0, 0, time.Local)

	assert.Equal(t, 0, DiffMinutes(base, base.Add(59*time.Second)))
	assert.Equal(t, 185, DiffMinutes(base, base.Add(3*time.Hour+5*time.Minute+30*time.Second)))
	assert.Equal(t, -1, DiffMinutes(base, base.Add(-30*time.Second)))
	assert.Equal(t, -10, DiffMinutes(base, base.Add(-10*time.Minute)))
}

func TestClassifyAt(t *testing.T) {
	now := time.Date(2024, 3, 7, 0, 30, 0, 0, time.Local)

	assert.Equal(t, Today, ClassifyAt(time.Date(2024, 3, 7, 0, 0, 0, 0, time.Local), now))
	assert.Equal(t, Yesterday, ClassifyAt(time.Date(2024, 3, 6, 23, 59, 0, 0, time.Local), now))
	assert.Equal(t, Other, ClassifyAt(time.Date(2024, 3, 5, 12, 0, 0, 0, time.Local), now))
	assert.Equal(t, Other, ClassifyAt(time.Date(2024, 3, 8, 0, 0, 0, 0, time.Local), now))
	assert.Equal(t, "yesterday", Yesterday.String())
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2024, 3, 7, 18, 45, 12, 99, time.Local)
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.Local), StartOfDay(ts))
	assert.True(t, SameDay(ts, StartOfDay(ts)))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45m", FormatDuration(45))
	assert.Equal(t, "0m", FormatDuration(0))
	assert.Equal(t, "2h", FormatDuration(120))
	assert.Equal(t, "3h 5m", FormatDuration(185))
	assert.Equal(t, "0m", FormatDuration(-3))
}

func TestAgeAt(t *testing.T) {
	birth := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	age := AgeAt(birth, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Age{Months: 2, Days: 5}, age)
	assert.Equal(t, "2mo 5d", age.String())

	assert.Equal(t, Age{Months: 0, Days: 3}, AgeAt(birth, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
}
