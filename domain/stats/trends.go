package stats

import (
	"time"

	"github.com/artpar/usagelens/domain/event"
)

// TrendSeries is a per-model daily series over a contiguous date range,
// zero-filled so every model has a value for every date.
type TrendSeries struct {
	Dates  []string             `json:"dates"`
	Models []string             `json:"models"`
	Series map[string][]float64 `json:"series"`
}

// ModelTrends builds the trailing-N-days per-model daily series ending at
// end. Events outside the range are ignored; models keep first-seen order.
func ModelTrends(events []event.Event, end time.Time, days int) TrendSeries {
	if days <= 0 {
		days = 30
	}
	start := end.UTC().AddDate(0, 0, -days)

	dates := make([]string, 0, days+1)
	for d := start; !d.After(end.UTC()); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	index := make(map[string]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	ts := TrendSeries{Dates: dates, Series: make(map[string][]float64)}
	for _, e := range events {
		i, ok := index[e.Day()]
		if !ok {
			continue
		}
		if _, seen := ts.Series[e.Model]; !seen {
			ts.Models = append(ts.Models, e.Model)
			ts.Series[e.Model] = make([]float64, len(dates))
		}
		ts.Series[e.Model][i] += e.Requests
	}
	return ts
}

// BreakdownRow is one line of a ranked share table: a key's total with its
// percentage of the whole, e.g. one user of a model.
type BreakdownRow struct {
	Key      string  `json:"key"`
	Requests float64 `json:"requests"`
	Share    string  `json:"share"`
}

// UserBreakdown ranks the users of the given model by requests descending
// with each user's share of the model's total.
func UserBreakdown(events []event.Event, model string) []BreakdownRow {
	var subset []event.Event
	for _, e := range events {
		if e.Model == model {
			subset = append(subset, e)
		}
	}
	return shareTable(TotalsByUser(subset))
}

// ModelShares ranks all models by requests descending with shares.
func ModelShares(events []event.Event) []BreakdownRow {
	return shareTable(TotalsByModel(events))
}

// UserShares ranks all users by requests descending with shares.
func UserShares(events []event.Event) []BreakdownRow {
	return shareTable(TotalsByUser(events))
}

func shareTable(t Totals) []BreakdownRow {
	total := t.Total()
	ranked := TopN(t, 0)
	out := make([]BreakdownRow, 0, len(ranked))
	for _, e := range ranked {
		out = append(out, BreakdownRow{
			Key:      e.Key,
			Requests: e.Requests,
			Share:    Share(e.Requests, total),
		})
	}
	return out
}
