// Package dateparse resolves free-text command tokens into calendar dates.
package dateparse

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISO is the canonical date layout used for document keys and fields.
const ISO = "2006-01-02"

// Resolver turns command tokens into dates. Now is injectable for tests.
type Resolver struct {
	Now func() time.Time
}

func New() *Resolver {
	return &Resolver{Now: time.Now}
}

// Parse resolves a single token to a date. Returns ok=false when the token
// is not a date, which callers treat as "this is the next command word".
// Bare integers are never dates; they are reserved for court numbers.
func (r *Resolver) Parse(token string) (time.Time, bool) {
	if _, err := strconv.Atoi(token); err == nil {
		return time.Time{}, false
	}

	today := r.today()
	switch strings.ToLower(token) {
	case "yesterday":
		return today.AddDate(0, 0, -1), true
	case "today":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	}

	parsed, err := dateparse.ParseAny(token)
	if err != nil {
		return time.Time{}, false
	}
	date := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if date.Year() == 0 {
		date = date.AddDate(today.Year(), 0, 0)
	}

	// A bare "Jan 5" typed in November means next January, not five months
	// ago. Only applies when no explicit year was given: an explicit year
	// parses to itself and is honored as-is unless it matches the current
	// year anyway, in which case the intent is the same.
	if date.Month() <= time.June && today.Month() > time.June && date.Year() == today.Year() {
		date = date.AddDate(1, 0, 0)
	}
	return date, true
}

func (r *Resolver) today() time.Time {
	now := r.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders a date in the canonical YYYY-MM-DD form.
func Format(d time.Time) string {
	return d.Format(ISO)
}
