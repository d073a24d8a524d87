package stats_test

import (
	"testing"
	"time"

	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/domain/stats"
)

func day(offset int) time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestComputeGrowth_WeekWindows(t *testing.T) {
	// 40 days of span: windows are anchored to the latest event, not now.
	events := []event.Event{
		{Timestamp: day(0), Requests: 100},  // outside both windows
		{Timestamp: day(28), Requests: 10},  // previous window
		{Timestamp: day(30), Requests: 20},  // previous window
		{Timestamp: day(36), Requests: 30},  // current window
		{Timestamp: day(40), Requests: 50},  // current window (latest)
	}

	g := stats.ComputeGrowth(events, stats.GrowthWeek)
	if g.SplitFallback {
		t.Fatal("unexpected split fallback")
	}
	if g.Current != 80 {
		t.Errorf("Current = %v, want 80", g.Current)
	}
	if g.Previous != 30 {
		t.Errorf("Previous = %v, want 30", g.Previous)
	}
	wantDelta := (80.0 - 30.0) / 30.0 * 100
	if g.DeltaPct != wantDelta {
		t.Errorf("DeltaPct = %v, want %v", g.DeltaPct, wantDelta)
	}
}

func TestComputeGrowth_ShortSpanFallback(t *testing.T) {
	// Under 14 days of span: 50/50 split by count.
	events := []event.Event{
		{Timestamp: day(0), Requests: 5},
		{Timestamp: day(1), Requests: 5},
		{Timestamp: day(2), Requests: 20},
		{Timestamp: day(3), Requests: 20},
	}

	g := stats.ComputeGrowth(events, stats.GrowthMonth)
	if !g.SplitFallback {
		t.Fatal("expected split fallback")
	}
	if g.Previous != 10 || g.Current != 40 {
		t.Errorf("split = %v/%v, want 10/40", g.Previous, g.Current)
	}
	if g.DeltaPct != 300 {
		t.Errorf("DeltaPct = %v, want 300", g.DeltaPct)
	}
}

func TestComputeGrowth_ZeroPrevious(t *testing.T) {
	events := []event.Event{
		// All activity inside the current window of a month comparison.
		{Timestamp: day(0), Requests: 0},
		{Timestamp: day(20), Requests: 10},
	}

	g := stats.ComputeGrowth(events, stats.GrowthMonth)
	if g.DeltaPct != 100 {
		t.Errorf("DeltaPct = %v, want +100 when previous is zero", g.DeltaPct)
	}
}

func TestComputeGrowth_Empty(t *testing.T) {
	g := stats.ComputeGrowth(nil, stats.GrowthWeek)
	if g.Current != 0 || g.Previous != 0 || g.DeltaPct != 0 {
		t.Errorf("Growth over empty input = %+v, want zeroes", g)
	}
}
