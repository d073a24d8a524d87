package quota_test

import (
	"testing"
	"time"

	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/domain/quota"
)

func ev(user, model string, requests float64, monthlyQuota int) event.Event {
	return event.Event{
		Timestamp:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		User:         user,
		Model:        model,
		Requests:     requests,
		MonthlyQuota: monthlyQuota,
	}
}

func one(t *testing.T, records []quota.Record, user string) quota.Record {
	t.Helper()
	for _, r := range records {
		if r.User == user {
			return r
		}
	}
	t.Fatalf("no record for %s in %+v", user, records)
	return quota.Record{}
}

func TestComputeRecords_OverQuota(t *testing.T) {
	// 3 rows for alice totaling 350 against a quota of 300.
	records := quota.ComputeRecords([]event.Event{
		ev("alice", "gpt-4o", 100, 300),
		ev("alice", "gpt-4o", 150, 300),
		ev("alice", "claude-3", 100, 300),
	})

	r := one(t, records, "alice")
	if r.TotalRequests != 350 {
		t.Errorf("TotalRequests = %v, want 350", r.TotalRequests)
	}
	if got := r.UsagePercent; got < 116.66 || got > 116.67 {
		t.Errorf("UsagePercent = %v, want ~116.67", got)
	}
	if r.Status != quota.StatusOverQuota {
		t.Errorf("Status = %s, want over_quota", r.Status)
	}
	if r.NormalPortion != 300 {
		t.Errorf("NormalPortion = %v, want 300", r.NormalPortion)
	}
	if r.ExceedingPortion != 50 {
		t.Errorf("ExceedingPortion = %v, want 50", r.ExceedingPortion)
	}
	if r.RemainingQuota != 0 {
		t.Errorf("RemainingQuota = %v, want 0", r.RemainingQuota)
	}
	if len(r.Timestamps) != 3 {
		t.Errorf("Timestamps = %d, want 3", len(r.Timestamps))
	}
}

// The model exclusion rule and the "quota from an arbitrary contributing
// event" behavior are load-bearing; these tests pin them down.

func TestComputeRecords_ModelExclusion(t *testing.T) {
	records := quota.ComputeRecords([]event.Event{
		ev("alice", "gpt-4.1-mini", 500, 300),
		ev("alice", "gpt-4o", 10, 300),
	})

	r := one(t, records, "alice")
	if r.TotalRequests != 10 {
		t.Errorf("TotalRequests = %v, want 10 (gpt-4.1 excluded)", r.TotalRequests)
	}
}

func TestComputeRecords_ExclusionIsCaseInsensitive(t *testing.T) {
	records := quota.ComputeRecords([]event.Event{
		ev("bob", "GPT-4.0-Turbo", 500, 300),
	})
	if len(records) != 0 {
		t.Errorf("user with only excluded events got a record: %+v", records)
	}
}

func TestComputeRecords_QuotaFromArbitraryEvent(t *testing.T) {
	// Varying quotas per user: whichever event is processed wins.
	records := quota.ComputeRecords([]event.Event{
		ev("carol", "gpt-4o", 1, 300),
		ev("carol", "gpt-4o", 1, 500),
	})
	r := one(t, records, "carol")
	if r.MonthlyQuota != 300 && r.MonthlyQuota != 500 {
		t.Errorf("MonthlyQuota = %d, want one of the contributing values", r.MonthlyQuota)
	}
}

func TestStatusBoundaries(t *testing.T) {
	tests := []struct {
		requests float64
		want     quota.Status
	}{
		{80, quota.StatusNormal},      // exactly 80.0%
		{80.1, quota.StatusNearQuota}, // 80.1%
		{100, quota.StatusNearQuota},  // exactly 100.0%
		{100.1, quota.StatusOverQuota},
	}
	for _, tt := range tests {
		records := quota.ComputeRecords([]event.Event{ev("u", "gpt-4o", tt.requests, 100)})
		r := one(t, records, "u")
		if r.Status != tt.want {
			t.Errorf("%v requests of 100: Status = %s, want %s", tt.requests, r.Status, tt.want)
		}
	}
}

func TestComputeRecords_ZeroQuota(t *testing.T) {
	records := quota.ComputeRecords([]event.Event{ev("dave", "gpt-4o", 50, 0)})
	r := one(t, records, "dave")
	if r.UsagePercent != 0 {
		t.Errorf("UsagePercent = %v, want 0 for zero quota", r.UsagePercent)
	}
	if r.Status != quota.StatusNormal {
		t.Errorf("Status = %s, want normal", r.Status)
	}
	if r.ExceedingPortion != 50 {
		t.Errorf("ExceedingPortion = %v, want 50", r.ExceedingPortion)
	}
}

func TestComputeRecords_OrderedByUser(t *testing.T) {
	records := quota.ComputeRecords([]event.Event{
		ev("zed", "gpt-4o", 1, 300),
		ev("amy", "gpt-4o", 1, 300),
	})
	if len(records) != 2 || records[0].User != "amy" || records[1].User != "zed" {
		t.Errorf("records not ordered by user: %+v", records)
	}
}

func TestFilterByStatus(t *testing.T) {
	records := quota.ComputeRecords([]event.Event{
		ev("a", "gpt-4o", 50, 100),
		ev("b", "gpt-4o", 150, 100),
	})
	over := quota.FilterByStatus(records, quota.StatusOverQuota)
	if len(over) != 1 || over[0].User != "b" {
		t.Errorf("FilterByStatus = %+v", over)
	}
}

func TestComputeRecords_Empty(t *testing.T) {
	if records := quota.ComputeRecords(nil); len(records) != 0 {
		t.Errorf("records over empty input: %+v", records)
	}
}
