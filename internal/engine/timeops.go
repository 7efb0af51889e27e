package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// clockPattern matches "12pm", "2:30 PM", "14:00", "6:55pm".
var clockPattern = regexp.MustCompile(`^\s*(\d{1,2})(?::(\d{2}))?\s*([AaPp][Mm])?\s*$`)

// ParseClock parses a human clock string into a 24-hour hour and minute.
// Noon and midnight wrap correctly: "12am" is 0:00 and "12pm" is 12:00.
func ParseClock(s string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("unrecognized time %q", s)
	}

	hour, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized time %q", s)
	}
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil {
			return 0, 0, fmt.Errorf("unrecognized time %q", s)
		}
	}

	meridiem := strings.ToLower(m[3])
	switch {
	case meridiem == "":
		if hour > 23 || minute > 59 {
			return 0, 0, fmt.Errorf("time %q out of range", s)
		}
	case hour < 1 || hour > 12 || minute > 59:
		return 0, 0, fmt.Errorf("time %q out of range", s)
	case meridiem == "am":
		if hour == 12 {
			hour = 0
		}
	case meridiem == "pm":
		if hour != 12 {
			hour += 12
		}
	}

	return hour, minute, nil
}

// TimePassedCheck is the outcome of an overshoot-tolerant time comparison.
type TimePassedCheck struct {
	// Passed is true once the target time has gone by today.
	Passed bool
	// WithinWindow is true while the overshoot is inside the tolerance.
	WithinWindow bool
	// MinutesPast is how many minutes past the target the current time is.
	MinutesPast int
}

// CheckTimePassed reports whether the target clock time has passed at now,
// and whether the overshoot is still within the tolerance window. The host
// process may wake well after the target moment, so callers act on
// Passed && WithinWindow rather than an exact-time match.
func CheckTimePassed(now time.Time, targetHour, targetMinute, toleranceMinutes int) TimePassedCheck {
	target := time.Date(now.Year(), now.Month(), now.Day(), targetHour, targetMinute, 0, 0, now.Location())
	if now.Before(target) {
		return TimePassedCheck{}
	}
	minutesPast := int(now.Sub(target) / time.Minute)
	return TimePassedCheck{
		Passed:       true,
		WithinWindow: minutesPast <= toleranceMinutes,
		MinutesPast:  minutesPast,
	}
}

// parseTimePrimitive implements parse_time over args["time"].
func parseTimePrimitive(args map[string]string) Result {
	raw := args["time"]
	if raw == "" {
		return fail("parse_time requires a time string")
	}
	hour, minute, err := ParseClock(raw)
	if err != nil {
		return fail("parse_time: %v", err)
	}
	return ok(map[string]string{
		"hour":   strconv.Itoa(hour),
		"minute": strconv.Itoa(minute),
	})
}

// checkTimePassed implements check_time_passed over target_hour,
// target_minute and tolerance_minutes (default 60).
func checkTimePassed(args map[string]string, now time.Time) Result {
	hourRaw := args["target_hour"]
	if hourRaw == "" {
		return fail("check_time_passed requires target_hour")
	}
	hour, err := strconv.Atoi(hourRaw)
	if err != nil || hour < 0 || hour > 23 {
		return fail("check_time_passed: invalid target_hour %q", hourRaw)
	}

	minute := 0
	if raw := args["target_minute"]; raw != "" {
		minute, err = strconv.Atoi(raw)
		if err != nil || minute < 0 || minute > 59 {
			return fail("check_time_passed: invalid target_minute %q", raw)
		}
	}

	tolerance := 60
	if raw := args["tolerance_minutes"]; raw != "" {
		tolerance, err = strconv.Atoi(raw)
		if err != nil || tolerance < 0 {
			return fail("check_time_passed: invalid tolerance_minutes %q", raw)
		}
	}

	check := CheckTimePassed(now, hour, minute, tolerance)
	return ok(map[string]string{
		"passed":        strconv.FormatBool(check.Passed),
		"within_window": strconv.FormatBool(check.WithinWindow),
		"minutes_past":  strconv.Itoa(check.MinutesPast),
	})
}

// isoDate renders a time as YYYY-MM-DD.
func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// isNewDay implements is_new_day: string compare of today against the
// ISO date in args["last_date"]. An empty or absent last_date counts as a
// new day so first runs initialize cleanly.
func isNewDay(args map[string]string, now time.Time) Result {
	today := isoDate(now)
	last := args["last_date"]
	return ok(map[string]string{
		"is_new_day": strconv.FormatBool(last != today),
		"today":      today,
	})
}
