package stats_test

import (
	"testing"
	"time"

	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/domain/stats"
)

func TestModelTrends(t *testing.T) {
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	events := []event.Event{
		{Timestamp: end.AddDate(0, 0, -2), Model: "gpt-4o", Requests: 3},
		{Timestamp: end.AddDate(0, 0, -2), Model: "gpt-4o", Requests: 2},
		{Timestamp: end.AddDate(0, 0, -1), Model: "claude-3", Requests: 7},
		{Timestamp: end.AddDate(0, 0, -45), Model: "old", Requests: 99}, // outside range
	}

	ts := stats.ModelTrends(events, end, 30)

	if len(ts.Dates) != 31 {
		t.Fatalf("got %d dates, want 31", len(ts.Dates))
	}
	if ts.Dates[0] != "2024-05-31" || ts.Dates[30] != "2024-06-30" {
		t.Errorf("date range = %s .. %s", ts.Dates[0], ts.Dates[30])
	}
	if len(ts.Models) != 2 {
		t.Fatalf("Models = %v, want 2 in-range models", ts.Models)
	}

	gpt := ts.Series["gpt-4o"]
	if gpt[28] != 5 {
		t.Errorf("gpt-4o on -2 day = %v, want 5", gpt[28])
	}
	// Zero-filled everywhere without activity.
	if gpt[0] != 0 || gpt[30] != 0 {
		t.Errorf("series not zero-filled: first=%v last=%v", gpt[0], gpt[30])
	}
}

func TestModelTrends_Empty(t *testing.T) {
	ts := stats.ModelTrends(nil, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 30)
	if len(ts.Models) != 0 {
		t.Errorf("Models = %v, want empty", ts.Models)
	}
	if len(ts.Dates) != 31 {
		t.Errorf("got %d dates, want 31", len(ts.Dates))
	}
}

func TestUserBreakdown(t *testing.T) {
	events := []event.Event{
		{User: "alice", Model: "gpt-4o", Requests: 30},
		{User: "bob", Model: "gpt-4o", Requests: 10},
		{User: "bob", Model: "claude-3", Requests: 99},
	}

	rows := stats.UserBreakdown(events, "gpt-4o")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Key != "alice" || rows[0].Requests != 30 {
		t.Errorf("top row = %+v", rows[0])
	}
	if rows[0].Share != "75.0" {
		t.Errorf("alice share = %q, want 75.0", rows[0].Share)
	}
	if rows[1].Share != "25.0" {
		t.Errorf("bob share = %q, want 25.0", rows[1].Share)
	}
}

func TestModelShares(t *testing.T) {
	events := []event.Event{
		{User: "a", Model: "m1", Requests: 6},
		{User: "a", Model: "m2", Requests: 2},
	}
	rows := stats.ModelShares(events)
	if rows[0].Key != "m1" || rows[0].Share != "75.0" {
		t.Errorf("rows = %+v", rows)
	}
}
