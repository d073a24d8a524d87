package stats_test

import (
	"testing"
	"time"

	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/domain/stats"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 6, day, hour, 0, 0, 0, time.UTC)
}

func fixture() []event.Event {
	return []event.Event{
		{Timestamp: at(1, 9), User: "alice", Model: "gpt-4o", Requests: 10},
		{Timestamp: at(1, 14), User: "bob", Model: "claude-3", Requests: 4},
		{Timestamp: at(2, 9), User: "alice", Model: "claude-3", Requests: 6},
		{Timestamp: at(3, 20), User: "carol", Model: "gpt-4o", Requests: 2},
	}
}

func TestGroupBy_FirstSeenOrder(t *testing.T) {
	totals := stats.TotalsByModel(fixture())
	if len(totals.Keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(totals.Keys))
	}
	if totals.Keys[0] != "gpt-4o" || totals.Keys[1] != "claude-3" {
		t.Errorf("key order = %v, want first-seen", totals.Keys)
	}
	if totals.Sum["gpt-4o"] != 12 || totals.Sum["claude-3"] != 10 {
		t.Errorf("sums = %v", totals.Sum)
	}
}

func TestTotalsByDay(t *testing.T) {
	totals := stats.TotalsByDay(fixture())
	if totals.Sum["2024-06-01"] != 14 {
		t.Errorf("day 1 sum = %v, want 14", totals.Sum["2024-06-01"])
	}
	if totals.Sum["2024-06-03"] != 2 {
		t.Errorf("day 3 sum = %v, want 2", totals.Sum["2024-06-03"])
	}
}

func TestTotalsByHourAndWeekday(t *testing.T) {
	hours := stats.TotalsByHour(fixture())
	if hours[9] != 16 {
		t.Errorf("hour 9 = %v, want 16", hours[9])
	}
	if hours[3] != 0 {
		t.Errorf("hour 3 = %v, want 0", hours[3])
	}

	days := stats.TotalsByWeekday(fixture())
	// 2024-06-01 is a Saturday.
	if days[6] != 14 {
		t.Errorf("saturday = %v, want 14", days[6])
	}
}

func TestCountDistinct(t *testing.T) {
	c := stats.CountDistinct(fixture())
	if c.Users != 3 || c.Models != 2 || c.ActiveDays != 3 {
		t.Errorf("Cardinality = %+v", c)
	}
}

func TestDailyAverage(t *testing.T) {
	got := stats.DailyAverage(fixture())
	want := 22.0 / 3.0
	if got != want {
		t.Errorf("DailyAverage = %v, want %v", got, want)
	}
}

func TestAvgRequestsPerUser(t *testing.T) {
	got := stats.AvgRequestsPerUser(fixture())
	want := 22.0 / 3.0
	if got != want {
		t.Errorf("AvgRequestsPerUser = %v, want %v", got, want)
	}
}

func TestZeroDenominatorGuards(t *testing.T) {
	if got := stats.DailyAverage(nil); got != 0 {
		t.Errorf("DailyAverage(nil) = %v, want 0", got)
	}
	if got := stats.AvgRequestsPerUser(nil); got != 0 {
		t.Errorf("AvgRequestsPerUser(nil) = %v, want 0", got)
	}
	if got := stats.Share(5, 0); got != "0.0" {
		t.Errorf("Share(5, 0) = %q, want 0.0", got)
	}
}

func TestPeakHour(t *testing.T) {
	hour, requests := stats.PeakHour(fixture())
	if hour != 9 || requests != 16 {
		t.Errorf("PeakHour = (%d, %v), want (9, 16)", hour, requests)
	}
}

func TestPeakHour_TieBreaksLow(t *testing.T) {
	events := []event.Event{
		{Timestamp: at(1, 15), Requests: 5},
		{Timestamp: at(1, 8), Requests: 5},
	}
	hour, _ := stats.PeakHour(events)
	if hour != 8 {
		t.Errorf("PeakHour tie = %d, want 8", hour)
	}
}

func TestMostPopularModel(t *testing.T) {
	if got := stats.MostPopularModel(fixture()); got != "gpt-4o" {
		t.Errorf("MostPopularModel = %q, want gpt-4o", got)
	}
	if got := stats.MostPopularModel(nil); got != "" {
		t.Errorf("MostPopularModel(nil) = %q, want empty", got)
	}
}

func TestTopN(t *testing.T) {
	totals := stats.TotalsByUser(fixture())
	top := stats.TopN(totals, 2)
	if len(top) != 2 {
		t.Fatalf("got %d entries, want 2", len(top))
	}
	if top[0].Key != "alice" || top[0].Requests != 16 {
		t.Errorf("top entry = %+v", top[0])
	}
	if top[1].Key != "bob" {
		t.Errorf("second entry = %+v", top[1])
	}
}

func TestTopN_StableTies(t *testing.T) {
	events := []event.Event{
		{Timestamp: at(1, 0), Model: "first", Requests: 5},
		{Timestamp: at(1, 1), Model: "second", Requests: 5},
	}
	top := stats.TopN(stats.TotalsByModel(events), 2)
	if top[0].Key != "first" {
		t.Errorf("tie broke to %q, want first-seen", top[0].Key)
	}
}

func TestCumulative(t *testing.T) {
	daily := stats.SortedByKey(stats.TotalsByDay(fixture()))
	cum := stats.Cumulative(daily)
	if len(cum) != 3 {
		t.Fatalf("got %d points, want 3", len(cum))
	}
	if cum[0].Requests != 14 || cum[1].Requests != 20 || cum[2].Requests != 22 {
		t.Errorf("Cumulative = %v", cum)
	}
	if cum[0].Key != "2024-06-01" {
		t.Errorf("order not preserved: %v", cum)
	}
}

func TestEmptyCollections(t *testing.T) {
	if totals := stats.TotalsByModel(nil); len(totals.Keys) != 0 || totals.Total() != 0 {
		t.Error("TotalsByModel(nil) not empty")
	}
	if hours := stats.TotalsByHour(nil); hours != [24]float64{} {
		t.Error("TotalsByHour(nil) not zeroed")
	}
	if c := stats.CountDistinct(nil); c != (stats.Cardinality{}) {
		t.Error("CountDistinct(nil) not zeroed")
	}
	if cum := stats.Cumulative(nil); len(cum) != 0 {
		t.Error("Cumulative(nil) not empty")
	}
	if top := stats.TopN(stats.Totals{}, 5); len(top) != 0 {
		t.Error("TopN over empty totals not empty")
	}
}
