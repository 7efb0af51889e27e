package engine

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input  string
		hour   int
		minute int
	}{
		{"12pm", 12, 0},
		{"12am", 0, 0},
		{"6:55pm", 18, 55},
		{"2:30 PM", 14, 30},
		{"14:00", 14, 0},
		{"9am", 9, 0},
		{"12:15 AM", 0, 15},
		{"23:59", 23, 59},
	}
	for _, tt := range tests {
		hour, minute, err := ParseClock(tt.input)
		if err != nil {
			t.Errorf("ParseClock(%q) error: %v", tt.input, err)
			continue
		}
		if hour != tt.hour || minute != tt.minute {
			t.Errorf("ParseClock(%q) = %d:%02d, want %d:%02d", tt.input, hour, minute, tt.hour, tt.minute)
		}
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, input := range []string{"", "noon", "25:00", "13pm", "12:75"} {
		if _, _, err := ParseClock(input); err == nil {
			t.Errorf("ParseClock(%q) should fail", input)
		}
	}
}

func TestCheckTimePassed(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 1, hour, minute, 0, 0, time.UTC)
	}

	// Five minutes past noon: passed, inside the window.
	check := CheckTimePassed(at(12, 5), 12, 0, 60)
	if !check.Passed || !check.WithinWindow || check.MinutesPast != 5 {
		t.Errorf("12:05 vs noon: got %+v", check)
	}

	// An hour and five minutes past: passed but outside the window.
	check = CheckTimePassed(at(13, 5), 12, 0, 60)
	if !check.Passed || check.WithinWindow {
		t.Errorf("13:05 vs noon: got %+v", check)
	}

	// Before the target: not passed.
	check = CheckTimePassed(at(11, 55), 12, 0, 60)
	if check.Passed || check.WithinWindow {
		t.Errorf("11:55 vs noon: got %+v", check)
	}

	// Exactly on the target counts as passed with zero overshoot.
	check = CheckTimePassed(at(12, 0), 12, 0, 60)
	if !check.Passed || !check.WithinWindow || check.MinutesPast != 0 {
		t.Errorf("12:00 vs noon: got %+v", check)
	}
}

func TestCheckTimePassedPrimitive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	res := checkTimePassed(map[string]string{
		"target_hour":       "12",
		"target_minute":     "0",
		"tolerance_minutes": "60",
	}, now)
	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	if res.Fields["passed"] != "true" || res.Fields["within_window"] != "true" || res.Fields["minutes_past"] != "5" {
		t.Errorf("unexpected fields: %+v", res.Fields)
	}
}

func TestCheckTimePassedPrimitive_MissingHour(t *testing.T) {
	res := checkTimePassed(map[string]string{}, time.Now())
	if res.Success {
		t.Error("expected failure without target_hour")
	}
	if res.Error == "" {
		t.Error("expected descriptive error")
	}
}

func TestParseTimePrimitive(t *testing.T) {
	res := parseTimePrimitive(map[string]string{"time": "6:55pm"})
	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	if res.Fields["hour"] != "18" || res.Fields["minute"] != "55" {
		t.Errorf("unexpected fields: %+v", res.Fields)
	}

	res = parseTimePrimitive(map[string]string{"time": "12am"})
	if res.Fields["hour"] != "0" || res.Fields["minute"] != "0" {
		t.Errorf("12am: unexpected fields: %+v", res.Fields)
	}
}

func TestIsNewDay(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	res := isNewDay(map[string]string{"last_date": "2026-03-01"}, now)
	if res.Fields["is_new_day"] != "true" || res.Fields["today"] != "2026-03-02" {
		t.Errorf("unexpected fields: %+v", res.Fields)
	}

	res = isNewDay(map[string]string{"last_date": "2026-03-02"}, now)
	if res.Fields["is_new_day"] != "false" {
		t.Errorf("same day should not be new: %+v", res.Fields)
	}

	// First run with no stored date counts as a new day.
	res = isNewDay(map[string]string{}, now)
	if res.Fields["is_new_day"] != "true" {
		t.Errorf("absent last_date should be new: %+v", res.Fields)
	}
}
