// Package timecalc converts clock events into elapsed minutes and renders
// durations and wall-clock times for display.
package timecalc

import (
	"fmt"
	"strings"
	"time"
	// Tenant zones must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"
)

const (
	DateLayout      = "2006-01-02"
	ClockTimeLayout = "15:04"

	// ClockTimePlaceholder is rendered for a missing timestamp.
	ClockTimePlaceholder = "--:--"
)

// Clock supplies the current instant. Services take a Clock so tests can pin "now".
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// MinutesBetween returns whole minutes from start to end. A nil end is measured
// against now so in-progress intervals keep counting. Negative spans clamp to 0.
func MinutesBetween(start time.Time, end *time.Time, now time.Time) int {
	stop := now
	if end != nil {
		stop = *end
	}
	diff := stop.Sub(start)
	if diff <= 0 {
		return 0
	}
	return int(diff / time.Minute)
}

// LocalDateKey returns the YYYY-MM-DD calendar day of t in loc.
func LocalDateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight in loc.
func ParseDateKey(dateKey string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, dateKey, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateKey, err)
	}
	return d, nil
}

// ParseClockTime parses "HH:mm" into hour and minute.
func ParseClockTime(clock string) (hour, minute int, err error) {
	t, err := time.Parse(ClockTimeLayout, strings.TrimSpace(clock))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	return t.Hour(), t.Minute(), nil
}

// CombineDateAndClockTime builds the absolute instant for a wall-clock time on a calendar day in loc.
func CombineDateAndClockTime(dateKey, clock string, loc *time.Location) (time.Time, error) {
	day, err := ParseDateKey(dateKey, loc)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := ParseClockTime(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}

// FormatDuration renders minutes as "XhYm", e.g. 485 -> "8h5m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh%dm", minutes/60, minutes%60)
}

// FormatDelta renders a signed minute difference as "+Xh Ym", "-Xh Ym" or "No change".
func FormatDelta(minutes int) string {
	if minutes == 0 {
		return "No change"
	}
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%dh %dm", sign, minutes/60, minutes%60)
}

// FormatClockTime renders t in loc as "2:30 pm".
func FormatClockTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ClockTimePlaceholder
	}
	if loc == nil {
		loc = time.UTC
	}
	return strings.ToLower(t.In(loc).Format("3:04 PM"))
}

// LoadLocation resolves an IANA zone name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
