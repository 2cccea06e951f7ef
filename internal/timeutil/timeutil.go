package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Calendar grid constants. The clinic works on a 5-minute grid between
// 08:00 and 20:00; Sundays are structurally closed.
const (
	Step        = 5
	DayStartMin = 8 * 60  // 08:00
	DayEndMin   = 20 * 60 // 20:00

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ToMinutes parses an HH:MM string into minutes since midnight.
// Malformed input yields 0 rather than an error; callers validate
// separately where it matters.
func ToMinutes(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	total := h*60 + m
	if total < 0 {
		return 0
	}
	if total > 24*60 {
		return 24 * 60
	}
	return total
}

// FormatMinutes renders minutes since midnight as HH:MM.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes > 24*60 {
		minutes = 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// RoundToStep rounds minutes to the nearest multiple of step.
func RoundToStep(minutes, step int) int {
	if step <= 0 {
		return minutes
	}
	rem := minutes % step
	if rem < 0 {
		rem += step
	}
	if rem*2 >= step {
		return minutes - rem + step
	}
	return minutes - rem
}

// Clamp bounds minutes to [lo, hi].
func Clamp(minutes, lo, hi int) int {
	if minutes < lo {
		return lo
	}
	if minutes > hi {
		return hi
	}
	return minutes
}

// ClampToDay bounds minutes to the working window 08:00-20:00.
func ClampToDay(minutes int) int {
	return Clamp(minutes, DayStartMin, DayEndMin)
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// IsSunday reports whether the given date falls on a Sunday.
// Unparseable dates report false; they are rejected elsewhere.
func IsSunday(date string) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Sunday
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}

// DaysBetween returns the whole days from a to b (b - a).
func DaysBetween(a, b string) int {
	ta, err := ParseDate(a)
	if err != nil {
		return 0
	}
	tb, err := ParseDate(b)
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// MondayOf returns the Monday of the week containing date.
func MondayOf(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset).Format(DateLayout)
}
