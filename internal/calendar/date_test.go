package calendar

import (
	"testing"
	"time"
)

func TestParseAndString(t *testing.T) {
	d, err := Parse("2023-05-29")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if d.String() != "2023-05-29" {
		t.Errorf("String() = %q, expected %q", d.String(), "2023-05-29")
	}
	if d.MonthKey() != "2023-05" {
		t.Errorf("MonthKey() = %q, expected %q", d.MonthKey(), "2023-05")
	}

	if _, err := Parse("2023-13-01"); err == nil {
		t.Error("expected error for invalid month")
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected []string
	}{
		{"single day", "2023-05-29", "2023-05-29", []string{"2023-05-29"}},
		{"month boundary", "2023-05-30", "2023-06-01", []string{"2023-05-30", "2023-05-31", "2023-06-01"}},
		{"year boundary", "2023-12-31", "2024-01-01", []string{"2023-12-31", "2024-01-01"}},
		{"leap day", "2024-02-28", "2024-03-01", []string{"2024-02-28", "2024-02-29", "2024-03-01"}},
		{"reversed", "2023-05-30", "2023-05-29", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := Span(MustParse(tt.start), MustParse(tt.end))
			if len(days) != len(tt.expected) {
				t.Fatalf("Span returned %d days, expected %d", len(days), len(tt.expected))
			}
			for i, d := range days {
				if d.String() != tt.expected[i] {
					t.Errorf("day %d = %s, expected %s", i, d, tt.expected[i])
				}
			}
		})
	}
}

func TestTodayUsesLocation(t *testing.T) {
	// 03:00 UTC on May 30 is still May 29 in Chicago
	now := time.Date(2023, 5, 30, 3, 0, 0, 0, time.UTC)
	chicago := time.FixedZone("CDT", -5*3600)

	if got := Today(now, chicago); got != MustParse("2023-05-29") {
		t.Errorf("Today = %s, expected 2023-05-29", got)
	}
	if got := Today(now, time.UTC); got != MustParse("2023-05-30") {
		t.Errorf("Today = %s, expected 2023-05-30", got)
	}
}

func TestCompare(t *testing.T) {
	a := MustParse("2023-05-29")
	b := MustParse("2023-06-01")
	if !a.Before(b) || a.After(b) {
		t.Error("expected 2023-05-29 before 2023-06-01")
	}
	if a.Before(a) || a.After(a) {
		t.Error("a date is neither before nor after itself")
	}
	if a.DaysUntil(b) != 3 {
		t.Errorf("DaysUntil = %d, expected 3", a.DaysUntil(b))
	}
}
