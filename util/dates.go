package util

import (
	"errors"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"
const MonthLayout = "2006-01"

var ErrInvalidDate = errors.New("invalid date")

var acceptedDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate accepts the date spellings seen from the page and from Ponorez
// and returns midnight UTC of that calendar day.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// NormalizeDate re-serializes a parsable date as YYYY-MM-DD.
func NormalizeDate(raw string) (string, bool) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}

// ParseMonth parses YYYY-MM into the first day of that month.
func ParseMonth(raw string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Today returns midnight UTC of now's calendar day.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// IsLastDayOfMonth reports whether t is the final day of its month.
func IsLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month()
}
