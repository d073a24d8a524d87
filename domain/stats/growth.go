package stats

import (
	"time"

	"github.com/artpar/usagelens/domain/event"
)

// GrowthWindow selects the trailing comparison windows for growth deltas.
type GrowthWindow int

const (
	GrowthWeek    GrowthWindow = 7  // trailing 7 vs previous 7 days
	GrowthMonth   GrowthWindow = 30 // trailing 30 vs previous 30 days
	GrowthQuarter GrowthWindow = 90 // trailing 90 vs previous 90 days
)

// Growth is a period-over-period delta (value type).
type Growth struct {
	Current    float64 `json:"current"`
	Previous   float64 `json:"previous"`
	DeltaPct   float64 `json:"delta_pct"`
	WindowDays int     `json:"window_days"`
	// SplitFallback is true when the collection spans under two weeks and
	// the windows degraded to a 50/50 count split.
	SplitFallback bool `json:"split_fallback,omitempty"`
}

// minSpanForWindows is the collection span below which date windows are
// meaningless and Growth falls back to a half-and-half count split.
const minSpanForWindows = 14 * 24 * time.Hour

// ComputeGrowth splits a timestamp-sorted collection into current and
// previous windows trailing from the latest event (not wall clock) and
// reports the percentage delta.
//
// previous == 0 reports +100 when current > 0, else 0 - never a division
// by zero.
func ComputeGrowth(sorted []event.Event, window GrowthWindow) Growth {
	g := Growth{WindowDays: int(window)}
	if len(sorted) == 0 {
		return g
	}

	first := sorted[0].Timestamp
	latest := sorted[len(sorted)-1].Timestamp

	if latest.Sub(first) < minSpanForWindows {
		// Not enough history for calendar windows; split the sorted
		// collection in half by count instead.
		g.SplitFallback = true
		mid := len(sorted) / 2
		g.Previous = TotalRequests(sorted[:mid])
		g.Current = TotalRequests(sorted[mid:])
	} else {
		days := int(window)
		currentStart := latest.AddDate(0, 0, -days)
		previousStart := latest.AddDate(0, 0, -2*days)
		for _, e := range sorted {
			switch {
			case !e.Timestamp.Before(currentStart):
				g.Current += e.Requests
			case !e.Timestamp.Before(previousStart):
				g.Previous += e.Requests
			}
		}
	}

	g.DeltaPct = deltaPct(g.Current, g.Previous)
	return g
}

func deltaPct(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
