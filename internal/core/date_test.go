package core

import (
	"encoding/json"
	"testing"
)

func TestAddMonthsClampsDay(t *testing.T) {
	cases := []struct {
		name string
		from Date
		n    int
		want Date
	}{
		{"plain shift", NewDate(2025, 1, 10), 1, NewDate(2025, 2, 10)},
		{"jan 31 to feb", NewDate(2025, 1, 31), 1, NewDate(2025, 2, 28)},
		{"jan 31 to leap feb", NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{"year rollover", NewDate(2025, 11, 15), 3, NewDate(2026, 2, 15)},
		{"negative shift", NewDate(2025, 3, 31), -1, NewDate(2025, 2, 28)},
		{"many months", NewDate(2025, 1, 31), 13, NewDate(2026, 2, 28)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.from.AddMonths(tc.n)
			if !got.Equal(tc.want.Time) {
				t.Fatalf("AddMonths(%d) = %s, want %s", tc.n, got.ISO(), tc.want.ISO())
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2025, 1, 31},
		{2025, 2, 28},
		{2024, 2, 29},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate("2025-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 3 || d.Day() != 9 {
		t.Fatalf("parsed %s", d.ISO())
	}
	if _, err := ParseISODate("09/03/2025"); err == nil {
		t.Fatalf("expected error for non-ISO input")
	}
	if _, err := ParseISODate("2025-02-30"); err == nil {
		t.Fatalf("expected error for impossible day")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	in := NewDate(2025, 7, 4)
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2025-07-04"` {
		t.Fatalf("marshal = %s", raw)
	}
	var out Date
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Equal(in.Time) {
		t.Fatalf("round trip mismatch: %s", out.ISO())
	}
}

func TestEndOfMonth(t *testing.T) {
	if got := NewDate(2025, 2, 10).EndOfMonth(); got.Day() != 28 {
		t.Fatalf("EndOfMonth feb = %d", got.Day())
	}
	if got := NewDate(2024, 2, 1).EndOfMonth(); got.Day() != 29 {
		t.Fatalf("EndOfMonth leap feb = %d", got.Day())
	}
}
