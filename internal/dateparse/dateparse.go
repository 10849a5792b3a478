// Package dateparse resolves the time expressions users write in chat
// ("yesterday", "last tuesday", "2024-11-30") into calendar dates relative
// to a reference instant. Expressions that match no pattern fail with
// ErrDateUnparseable; callers decide the fallback policy.
package dateparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrDateUnparseable is returned when an expression matches no known
// relative pattern or absolute layout.
var ErrDateUnparseable = errors.New("date expression unparseable")

var (
	reToday     = regexp.MustCompile(`^(today|tonight|this (morning|afternoon|evening)|earlier today|just now|now)$`)
	reYesterday = regexp.MustCompile(`^(yesterday( (morning|afternoon|evening))?|last night)$`)
	reTomorrow  = regexp.MustCompile(`^tomorrow( (morning|afternoon|evening))?$`)
	reAgo       = regexp.MustCompile(`^(a|an|\d+) (day|week|month)s? ago$`)
	reWeekday   = regexp.MustCompile(`^(last |on |this )?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)$`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// absoluteLayouts are tried in order against the raw (trimmed) expression.
// Layouts without a year resolve against the reference year.
var absoluteLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var yearlessLayouts = []string{
	"Jan 2",
	"January 2",
	"2 Jan",
	"2 January",
}

// Normalize resolves expr against ref and returns the resulting calendar
// date at midnight UTC.
func Normalize(expr string, ref time.Time) (time.Time, error) {
	normalized := strings.TrimSpace(strings.ToLower(expr))
	if normalized == "" {
		return time.Time{}, fmt.Errorf("empty expression: %w", ErrDateUnparseable)
	}

	if reToday.MatchString(normalized) {
		return dateOf(ref), nil
	}
	if reYesterday.MatchString(normalized) {
		return dateOf(ref.AddDate(0, 0, -1)), nil
	}
	if reTomorrow.MatchString(normalized) {
		return dateOf(ref.AddDate(0, 0, 1)), nil
	}

	// "3 days ago", "a week ago", "2 months ago"
	if m := reAgo.FindStringSubmatch(normalized); m != nil {
		n := 1
		if m[1] != "a" && m[1] != "an" {
			n, _ = strconv.Atoi(m[1])
		}
		switch m[2] {
		case "day":
			return dateOf(ref.AddDate(0, 0, -n)), nil
		case "week":
			return dateOf(ref.AddDate(0, 0, -7*n)), nil
		case "month":
			return dateOf(ref.AddDate(0, -n, 0)), nil
		}
	}

	// "last tuesday", "on friday", bare weekday — the most recent such day
	// strictly before the reference date.
	if m := reWeekday.FindStringSubmatch(normalized); m != nil {
		target := weekdays[m[2]]
		back := int(ref.Weekday() - target)
		if back <= 0 {
			back += 7
		}
		return dateOf(ref.AddDate(0, 0, -back)), nil
	}

	// Absolute forms are matched against the raw expression to keep month
	// names capitalisation-insensitive via a title-cased copy.
	raw := strings.TrimSpace(expr)
	titled := titleMonths(raw)
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, titled); err == nil {
			return dateOf(t), nil
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, titled); err == nil {
			return time.Date(ref.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("expression %q: %w", expr, ErrDateUnparseable)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// titleMonths upper-cases the first letter of each word so "nov 30" parses
// with Go's "Jan 2" layouts.
func titleMonths(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 && w[0] >= 'a' && w[0] <= 'z' {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
