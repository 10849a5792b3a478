package dateparse

import (
	"errors"
	"testing"
	"time"
)

// ref is a Sunday.
var ref = time.Date(2024, 12, 1, 15, 4, 5, 0, time.UTC)

func TestNormalize_Relative(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"yesterday", "2024-11-30"},
		{"Yesterday", "2024-11-30"},
		{"last night", "2024-11-30"},
		{"yesterday evening", "2024-11-30"},
		{"today", "2024-12-01"},
		{"this morning", "2024-12-01"},
		{"tonight", "2024-12-01"},
		{"tomorrow", "2024-12-02"},
		{"3 days ago", "2024-11-28"},
		{"a week ago", "2024-11-24"},
		{"2 weeks ago", "2024-11-17"},
		{"1 month ago", "2024-11-01"},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.expr, ref)
		if err != nil {
			t.Errorf("Normalize(%q): unexpected error: %v", tc.expr, err)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("Normalize(%q) = %s, want %s", tc.expr, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestNormalize_Weekdays(t *testing.T) {
	// ref is Sunday 2024-12-01; every weekday resolves strictly backwards.
	cases := []struct {
		expr string
		want string
	}{
		{"last friday", "2024-11-29"},
		{"friday", "2024-11-29"},
		{"on monday", "2024-11-25"},
		{"last sunday", "2024-11-24"}, // same weekday as ref goes a full week back
	}

	for _, tc := range cases {
		got, err := Normalize(tc.expr, ref)
		if err != nil {
			t.Errorf("Normalize(%q): unexpected error: %v", tc.expr, err)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("Normalize(%q) = %s, want %s", tc.expr, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestNormalize_Absolute(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"2024-11-30", "2024-11-30"},
		{"2024/11/30", "2024-11-30"},
		{"Nov 30 2024", "2024-11-30"},
		{"November 30, 2024", "2024-11-30"},
		{"30 Nov 2024", "2024-11-30"},
		{"nov 30", "2024-11-30"}, // year taken from the reference
		{"30 november", "2024-11-30"},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.expr, ref)
		if err != nil {
			t.Errorf("Normalize(%q): unexpected error: %v", tc.expr, err)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("Normalize(%q) = %s, want %s", tc.expr, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestNormalize_Unparseable(t *testing.T) {
	for _, expr := range []string{"", "   ", "when we grabbed coffee", "the other day"} {
		_, err := Normalize(expr, ref)
		if !errors.Is(err, ErrDateUnparseable) {
			t.Errorf("Normalize(%q): expected ErrDateUnparseable, got %v", expr, err)
		}
	}
}

func TestNormalize_ReturnsMidnightUTC(t *testing.T) {
	got, err := Normalize("yesterday", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
		t.Errorf("expected midnight UTC, got %v", got)
	}
}
