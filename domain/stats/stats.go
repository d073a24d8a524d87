// Package stats computes chart-ready aggregations over event collections.
// All functions are pure and treat an empty input as valid, producing
// zeroed or empty output rather than failing.
package stats

import (
	"sort"
	"strconv"

	"github.com/artpar/usagelens/domain/event"
)

// Totals is a grouped request sum keyed by a string dimension.
// Keys preserves first-seen order so charts are stable for a given input;
// callers sort explicitly when they want a ranking.
type Totals struct {
	Keys []string
	Sum  map[string]float64
}

func newTotals() Totals {
	return Totals{Sum: make(map[string]float64)}
}

func (t *Totals) add(key string, requests float64) {
	if _, ok := t.Sum[key]; !ok {
		t.Keys = append(t.Keys, key)
	}
	t.Sum[key] += requests
}

// Total returns the sum over all groups.
func (t Totals) Total() float64 {
	var total float64
	for _, v := range t.Sum {
		total += v
	}
	return total
}

// Entry is one (key, sum) pair of a ranked view.
type Entry struct {
	Key      string  `json:"key"`
	Requests float64 `json:"requests"`
}

// Entries returns the totals in key order.
func (t Totals) Entries() []Entry {
	out := make([]Entry, 0, len(t.Keys))
	for _, k := range t.Keys {
		out = append(out, Entry{Key: k, Requests: t.Sum[k]})
	}
	return out
}

// GroupBy sums requests per key produced by keyFn, in first-seen order.
func GroupBy(events []event.Event, keyFn func(event.Event) string) Totals {
	t := newTotals()
	for _, e := range events {
		t.add(keyFn(e), e.Requests)
	}
	return t
}

// TotalsByDay groups by UTC date ("2006-01-02").
func TotalsByDay(events []event.Event) Totals {
	return GroupBy(events, func(e event.Event) string { return e.Day() })
}

// TotalsByModel groups by model name.
func TotalsByModel(events []event.Event) Totals {
	return GroupBy(events, func(e event.Event) string { return e.Model })
}

// TotalsByUser groups by user identifier.
func TotalsByUser(events []event.Event) Totals {
	return GroupBy(events, func(e event.Event) string { return e.User })
}

// TotalsByHour sums requests per hour of day. The result always has 24
// buckets, index == hour.
func TotalsByHour(events []event.Event) [24]float64 {
	var hours [24]float64
	for _, e := range events {
		hours[e.Timestamp.UTC().Hour()] += e.Requests
	}
	return hours
}

// TotalsByWeekday sums requests per day of week. The result always has 7
// buckets, index 0 == Sunday, matching time.Weekday.
func TotalsByWeekday(events []event.Event) [7]float64 {
	var days [7]float64
	for _, e := range events {
		days[int(e.Timestamp.UTC().Weekday())] += e.Requests
	}
	return days
}

// Cardinality holds distinct-count statistics for a collection.
type Cardinality struct {
	Users      int `json:"users"`
	Models     int `json:"models"`
	ActiveDays int `json:"active_days"`
}

// CountDistinct computes the cardinality stats in one pass.
func CountDistinct(events []event.Event) Cardinality {
	users := make(map[string]bool)
	models := make(map[string]bool)
	days := make(map[string]bool)
	for _, e := range events {
		users[e.User] = true
		models[e.Model] = true
		days[e.Day()] = true
	}
	return Cardinality{Users: len(users), Models: len(models), ActiveDays: len(days)}
}

// TotalRequests sums the request counts of all events.
func TotalRequests(events []event.Event) float64 {
	var total float64
	for _, e := range events {
		total += e.Requests
	}
	return total
}

// DailyAverage is total requests divided by distinct active days,
// 0 when there are no active days.
func DailyAverage(events []event.Event) float64 {
	days := CountDistinct(events).ActiveDays
	if days == 0 {
		return 0
	}
	return TotalRequests(events) / float64(days)
}

// AvgRequestsPerUser is total requests divided by distinct users,
// 0 when there are no users.
func AvgRequestsPerUser(events []event.Event) float64 {
	users := CountDistinct(events).Users
	if users == 0 {
		return 0
	}
	return TotalRequests(events) / float64(users)
}

// PeakHour returns the hour of day (0-23) with the highest summed request
// count. Ties break toward the lowest hour; an empty collection reports
// hour 0 with a zero sum.
func PeakHour(events []event.Event) (hour int, requests float64) {
	hours := TotalsByHour(events)
	for h, sum := range hours {
		if sum > requests {
			hour, requests = h, sum
		}
	}
	return hour, requests
}

// MostPopularModel returns the model with the highest summed request count,
// breaking ties toward the earlier-seen model. Empty input returns "".
func MostPopularModel(events []event.Event) string {
	totals := TotalsByModel(events)
	var best string
	var bestSum float64
	for _, k := range totals.Keys {
		if best == "" || totals.Sum[k] > bestSum {
			best, bestSum = k, totals.Sum[k]
		}
	}
	return best
}

// TopN ranks totals descending by sum and keeps the first n entries.
// The sort is stable, so equal sums keep first-seen order.
func TopN(t Totals, n int) []Entry {
	entries := t.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Requests > entries[j].Requests
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// SortedByKey returns the totals ordered by ascending key. Useful for daily
// series where the key is a sortable date string.
func SortedByKey(t Totals) []Entry {
	keys := append([]string(nil), t.Keys...)
	sort.Strings(keys)
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry{Key: k, Requests: t.Sum[k]})
	}
	return out
}

// Cumulative converts a series into its running sum, preserving order.
func Cumulative(series []Entry) []Entry {
	out := make([]Entry, len(series))
	var running float64
	for i, e := range series {
		running += e.Requests
		out[i] = Entry{Key: e.Key, Requests: running}
	}
	return out
}

// Share formats count/total as a percentage string with one decimal,
// "0.0" when total is zero. Mirrors the breakdown tables.
func Share(count, total float64) string {
	if total <= 0 {
		return "0.0"
	}
	return strconv.FormatFloat(count/total*100, 'f', 1, 64)
}
