// Package event provides the normalized usage event type and row
// normalization. All functions are pure - no side effects.
package event

import (
	"errors"
	"sort"
	"time"
)

// Source CSV column names. Header matching is case-sensitive; extra columns
// are carried through Raw untouched.
const (
	ColTimestamp     = "Timestamp"
	ColUser          = "User"
	ColModel         = "Model"
	ColRequests      = "Requests Used"
	ColExceedsQuota  = "Exceeds Monthly Quota"
	ColMonthlyQuota  = "Total Monthly Quota"
)

// RequiredColumns lists the columns normalization depends on, in the
// canonical export order.
var RequiredColumns = []string{
	ColTimestamp,
	ColUser,
	ColModel,
	ColRequests,
	ColExceedsQuota,
	ColMonthlyQuota,
}

// DefaultMonthlyQuota is substituted when the quota column is missing or
// non-numeric.
const DefaultMonthlyQuota = 300

// ErrNoValidRecords is returned when every row of an ingest was rejected.
var ErrNoValidRecords = errors.New("event: no valid records in input")

// Event is one normalized usage log row (immutable value type).
// Raw keeps the original header->value mapping for lossless re-export.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	User         string    `json:"user"`
	Model        string    `json:"model"`
	Requests     float64   `json:"requests"`
	MonthlyQuota int       `json:"monthly_quota"`
	// ExceedsQuotaFlag mirrors the source column. It is advisory only; the
	// quota engine recomputes the true status from the numbers.
	ExceedsQuotaFlag bool              `json:"exceeds_quota"`
	Raw              map[string]string `json:"-"`
}

// Day returns the event's date key ("2006-01-02") in UTC.
func (e Event) Day() string {
	return e.Timestamp.UTC().Format("2006-01-02")
}

// SortByTimestamp sorts events ascending by timestamp, in place.
// The sort is stable so equal timestamps keep input order, which keeps
// derived output reproducible.
func SortByTimestamp(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}
