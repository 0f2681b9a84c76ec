package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ParseClock accepts "15:04" or "15:04:05".
func ParseClock(s string) (datatypes.Time, error) {
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q, use HH:MM", s)
}

func FormatClock(t datatypes.Time) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// At combines a calendar date with a time of day in UTC.
func At(date time.Time, clock datatypes.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(time.Duration(clock))
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
