// Package quota derives per-user quota consumption records.
// All functions are deterministic with no side effects.
package quota

import (
	"sort"
	"strings"
	"time"

	"github.com/artpar/usagelens/domain/event"
)

// Status classifies a user's consumption against their monthly quota.
type Status string

const (
	StatusNormal    Status = "normal"     // <= 80%
	StatusNearQuota Status = "near_quota" // > 80%, <= 100%
	StatusOverQuota Status = "over_quota" // > 100%
)

// excludedModelSubstrings lists model-name fragments whose events do not
// count toward quota consumption. Matched case-insensitively. See the
// exclusion tests before changing this.
var excludedModelSubstrings = []string{"gpt-4.1", "gpt-4.0"}

// Record is the derived per-user quota summary (value type). Records are
// always recomputed whole from the event collection, never patched.
type Record struct {
	User             string      `json:"user"`
	TotalRequests    float64     `json:"total_requests"`
	MonthlyQuota     int         `json:"monthly_quota"`
	UsagePercent     float64     `json:"usage_percent"`
	Status           Status      `json:"status"`
	NormalPortion    float64     `json:"normal_portion"`
	ExceedingPortion float64     `json:"exceeding_portion"`
	RemainingQuota   float64     `json:"remaining_quota"`
	Timestamps       []time.Time `json:"-"`
}

// CountsTowardQuota reports whether an event's model is quota-bearing.
func CountsTowardQuota(e event.Event) bool {
	model := strings.ToLower(e.Model)
	for _, sub := range excludedModelSubstrings {
		if strings.Contains(model, sub) {
			return false
		}
	}
	return true
}

// ComputeRecords derives one Record per distinct user in events, ordered by
// user for reproducible output.
//
// The monthly quota is taken from whichever contributing event is seen
// last; the quota is assumed constant per user, and when it is not, one
// contributing event's value wins.
func ComputeRecords(events []event.Event) []Record {
	byUser := make(map[string]*acc)
	var order []string

	for _, e := range events {
		if !CountsTowardQuota(e) {
			continue
		}
		a, ok := byUser[e.User]
		if !ok {
			a = &acc{}
			byUser[e.User] = a
			order = append(order, e.User)
		}
		a.total += e.Requests
		a.quota = e.MonthlyQuota
		a.timestamps = append(a.timestamps, e.Timestamp)
	}

	sort.Strings(order)
	records := make([]Record, 0, len(order))
	for _, user := range order {
		records = append(records, buildRecord(user, byUser[user]))
	}
	return records
}

type acc struct {
	total      float64
	quota      int
	timestamps []time.Time
}

func buildRecord(user string, a *acc) Record {
	quota := float64(a.quota)

	var percent float64
	if quota > 0 {
		percent = a.total / quota * 100
	}

	status := StatusNormal
	switch {
	case percent > 100:
		status = StatusOverQuota
	case percent > 80:
		status = StatusNearQuota
	}

	normal := a.total
	if normal > quota {
		normal = quota
	}
	exceeding := a.total - quota
	if exceeding < 0 {
		exceeding = 0
	}
	remaining := quota - a.total
	if remaining < 0 {
		remaining = 0
	}

	return Record{
		User:             user,
		TotalRequests:    a.total,
		MonthlyQuota:     a.quota,
		UsagePercent:     percent,
		Status:           status,
		NormalPortion:    normal,
		ExceedingPortion: exceeding,
		RemainingQuota:   remaining,
		Timestamps:       a.timestamps,
	}
}

// FilterByStatus returns the records with the given status.
func FilterByStatus(records []Record, s Status) []Record {
	var out []Record
	for _, r := range records {
		if r.Status == s {
			out = append(out, r)
		}
	}
	return out
}
