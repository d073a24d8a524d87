// Package filter applies composable view criteria to event collections.
// All functions are pure - no side effects.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/artpar/usagelens/domain/event"
)

// All is the wildcard value for the user and model dimensions.
const All = "all"

// Criteria is the externally supplied filter state (value type).
type Criteria struct {
	// WindowDays keeps events from the trailing N days. 0 means no date
	// filtering.
	WindowDays int
	// User and Model are exact-match dimensions; "all" or "" match anything.
	User  string
	Model string
	// Search is a case-insensitive substring match over the row's text
	// rendering (user, model, formatted date).
	Search string
}

// IsZero reports whether the criteria filter nothing.
func (c Criteria) IsZero() bool {
	return c.WindowDays == 0 && !dimensionSet(c.User) && !dimensionSet(c.Model) && c.Search == ""
}

func dimensionSet(v string) bool {
	return v != "" && v != All
}

// Apply returns the events matching c as a new slice; the input is never
// mutated. Predicates compose by AND and are order-independent.
//
// The date window cutoff is now - WindowDays measured against the supplied
// clock value, so repeated calls with a moving clock see a moving window.
func Apply(events []event.Event, c Criteria, now time.Time) []event.Event {
	out := make([]event.Event, 0, len(events))
	var cutoff time.Time
	if c.WindowDays > 0 {
		cutoff = now.AddDate(0, 0, -c.WindowDays)
	}
	search := strings.ToLower(c.Search)

	for _, e := range events {
		if c.WindowDays > 0 && e.Timestamp.Before(cutoff) {
			continue
		}
		if dimensionSet(c.User) && e.User != c.User {
			continue
		}
		if dimensionSet(c.Model) && e.Model != c.Model {
			continue
		}
		if search != "" && !matchesSearch(e, search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// matchesSearch checks the lowercase search term against the fields a table
// row would render: user, model, and the formatted date.
func matchesSearch(e event.Event, term string) bool {
	return strings.Contains(strings.ToLower(e.User), term) ||
		strings.Contains(strings.ToLower(e.Model), term) ||
		strings.Contains(e.Day(), term)
}

// Users returns the distinct users in events, sorted, for filter dropdowns.
func Users(events []event.Event) []string {
	return distinct(events, func(e event.Event) string { return e.User })
}

// Models returns the distinct models in events, sorted.
func Models(events []event.Event) []string {
	return distinct(events, func(e event.Event) string { return e.Model })
}

func distinct(events []event.Event, key func(event.Event) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range events {
		k := key(e)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
