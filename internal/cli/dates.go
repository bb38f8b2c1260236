// Package cli holds helpers shared by the command implementations.
package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

// Matches "2h ago", "30d ago", "2w", "1mo". A bare duration means "ago":
// purge cut-offs always lie in the past.
var relativeRegex = regexp.MustCompile(`^(\d+)\s*(mo|w|d|h|m)(?:\s*ago)?$`)

// ParseCutoff parses a purge cut-off. It accepts relative expressions
// ("30d", "2w ago", "yesterday", "last friday") and every absolute layout
// the server accepts for a date. The result must not be after now.
func ParseCutoff(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty cut-off")
	}
	input := strings.ToLower(raw)

	var (
		t  time.Time
		ok bool
	)
	switch input {
	case "today":
		t, ok = startOfDay(now), true
	case "yesterday":
		t, ok = startOfDay(now).AddDate(0, 0, -1), true
	default:
		if t, ok = lastWeekday(input, now); ok {
			break
		}
		if matches := relativeRegex.FindStringSubmatch(input); len(matches) == 3 {
			value, err := strconv.Atoi(matches[1])
			if err != nil || value < 1 {
				return time.Time{}, fmt.Errorf("invalid relative cut-off %q", raw)
			}
			t, ok = subtract(now, value, matches[2]), true
			break
		}
		t, ok = validation.ParseDate(raw)
	}
	if !ok {
		return time.Time{}, fmt.Errorf("invalid cut-off %q (try \"30d\", \"2w ago\", \"yesterday\" or 2006-01-02)", raw)
	}
	if t.After(now) {
		return time.Time{}, fmt.Errorf("cut-off %q is in the future", raw)
	}
	return t, nil
}

// FormatCutoff renders t for the purge age parameter: a bare date at
// midnight, RFC3339 otherwise.
func FormatCutoff(t time.Time) string {
	if t.Equal(startOfDay(t)) {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// lastWeekday resolves "friday" or "last friday" to the most recent such day
// strictly before today.
func lastWeekday(expr string, now time.Time) (time.Time, bool) {
	input := strings.TrimSpace(strings.TrimPrefix(expr, "last "))
	weekday, ok := weekdays[input]
	if !ok {
		return time.Time{}, false
	}
	base := startOfDay(now)
	delta := (int(base.Weekday()) - int(weekday) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return base.AddDate(0, 0, -delta), true
}

var weekdays = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

func subtract(now time.Time, value int, unit string) time.Time {
	switch unit {
	case "mo":
		return now.AddDate(0, -value, 0)
	case "w":
		return now.AddDate(0, 0, -7*value)
	case "d":
		return now.AddDate(0, 0, -value)
	case "h":
		return now.Add(-time.Duration(value) * time.Hour)
	default:
		return now.Add(-time.Duration(value) * time.Minute)
	}
}
