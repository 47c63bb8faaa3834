// Package dateparse turns relative day expressions into YYYY-MM-DD dates.
// Expressions look backwards: statistics are only ever recorded for days
// that already happened.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const layout = "2006-01-02"

// Parse resolves input relative to the current local time.
// Supported forms:
//   - today, yesterday
//   - monday, mon, ... (most recent past occurrence; today's name means a week ago)
//   - last week, last month
//   - som, start of month
//   - -N, N days ago, N weeks ago
//   - YYYY-MM-DD (validated, returned unchanged)
func Parse(input string) (string, error) {
	return ParseFrom(input, time.Now())
}

// ParseFrom resolves input relative to now.
func ParseFrom(input string, now time.Time) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	switch s {
	case "":
		return "", fmt.Errorf("empty date")
	case "today":
		return format(now), nil
	case "yesterday":
		return format(now.AddDate(0, 0, -1)), nil
	case "last week", "lastweek":
		return format(now.AddDate(0, 0, -7)), nil
	case "last month", "lastmonth":
		return format(now.AddDate(0, -1, 0)), nil
	case "som", "start of month":
		y, m, _ := now.Date()
		return format(time.Date(y, m, 1, 0, 0, 0, 0, now.Location())), nil
	}

	if day, ok := weekday(strings.TrimPrefix(s, "last ")); ok {
		return format(previous(now, day)), nil
	}

	if strings.HasPrefix(s, "-") {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 0 {
			return format(now.AddDate(0, 0, -n)), nil
		}
	}

	if m := agoPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "week") {
			n *= 7
		}
		return format(now.AddDate(0, 0, -n)), nil
	}

	if t, err := time.Parse(layout, s); err == nil {
		return format(t), nil
	}

	return "", fmt.Errorf("unrecognized date %q (try today, yesterday, monday, -3, 2 weeks ago or YYYY-MM-DD)", input)
}

// IsValid reports whether input parses.
func IsValid(input string) bool {
	_, err := Parse(input)
	return err == nil
}

var agoPattern = regexp.MustCompile(`^(\d+) (days?|weeks?) ago$`)

func format(t time.Time) string {
	return t.Format(layout)
}

func weekday(s string) (time.Weekday, bool) {
	switch s {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	}
	return 0, false
}

// previous returns the latest day before now falling on target. When now is
// already target the result is a week earlier.
func previous(now time.Time, target time.Weekday) time.Time {
	back := int(now.Weekday() - target)
	if back <= 0 {
		back += 7
	}
	return now.AddDate(0, 0, -back)
}
