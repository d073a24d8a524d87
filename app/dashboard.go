package app

import (
	"context"

	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/domain/filter"
	"github.com/artpar/usagelens/domain/quota"
	"github.com/artpar/usagelens/domain/stats"
	"github.com/artpar/usagelens/ports"
)

// DashboardService composes chart and table view-models over the active
// dataset. Every call re-filters and re-aggregates from the source events;
// nothing here is cached or mutated in place.
type DashboardService struct {
	store ports.DatasetStore
	clock ports.Clock
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store ports.DatasetStore, clock ports.Clock) *DashboardService {
	return &DashboardService{store: store, clock: clock}
}

// Filtered returns the active dataset's events after applying criteria.
// ok is false when no dataset has been ingested.
func (s *DashboardService) Filtered(ctx context.Context, c filter.Criteria) ([]event.Event, ports.DatasetMeta, bool, error) {
	ds, ok, err := s.store.Current(ctx)
	if err != nil || !ok {
		return nil, ports.DatasetMeta{}, false, err
	}
	return filter.Apply(ds.Events, c, s.clock.Now()), ds.Meta, true, nil
}

// Summary is the stat-card view-model.
type Summary struct {
	TotalUsers       int          `json:"total_users"`
	TotalModels      int          `json:"total_models"`
	TotalRequests    float64      `json:"total_requests"`
	ActiveDays       int          `json:"active_days"`
	AvgPerUser       float64      `json:"avg_requests_per_user"`
	DailyAverage     float64      `json:"daily_average"`
	MostPopularModel string       `json:"most_popular_model"`
	PeakHour         int          `json:"peak_hour"`
	PeakHourRequests float64      `json:"peak_hour_requests"`
	WeeklyGrowth     stats.Growth `json:"weekly_growth"`
	MonthlyGrowth    stats.Growth `json:"monthly_growth"`
}

// Summarize builds the stat cards for the filtered view.
func Summarize(events []event.Event) Summary {
	card := stats.CountDistinct(events)
	peakHour, peakRequests := stats.PeakHour(events)
	return Summary{
		TotalUsers:       card.Users,
		TotalModels:      card.Models,
		TotalRequests:    stats.TotalRequests(events),
		ActiveDays:       card.ActiveDays,
		AvgPerUser:       stats.AvgRequestsPerUser(events),
		DailyAverage:     stats.DailyAverage(events),
		MostPopularModel: stats.MostPopularModel(events),
		PeakHour:         peakHour,
		PeakHourRequests: peakRequests,
		WeeklyGrowth:     stats.ComputeGrowth(events, stats.GrowthWeek),
		MonthlyGrowth:    stats.ComputeGrowth(events, stats.GrowthMonth),
	}
}

// Charts is the full chart-series view-model for one filtered view.
type Charts struct {
	Timeline   []stats.Entry     `json:"timeline"`
	Cumulative []stats.Entry     `json:"cumulative"`
	ByModel    []stats.Entry     `json:"by_model"`
	TopUsers   []stats.Entry     `json:"top_users"`
	ByHour     [24]float64       `json:"by_hour"`
	ByWeekday  [7]float64        `json:"by_weekday"`
	Trends     stats.TrendSeries `json:"trends"`
}

// topUsersN caps the user leaderboard.
const topUsersN = 10

// BuildCharts derives every chart series from the filtered view.
func (s *DashboardService) BuildCharts(events []event.Event) Charts {
	daily := stats.SortedByKey(stats.TotalsByDay(events))
	return Charts{
		Timeline:   daily,
		Cumulative: stats.Cumulative(daily),
		ByModel:    stats.TopN(stats.TotalsByModel(events), 0),
		TopUsers:   stats.TopN(stats.TotalsByUser(events), topUsersN),
		ByHour:     stats.TotalsByHour(events),
		ByWeekday:  stats.TotalsByWeekday(events),
		Trends:     stats.ModelTrends(events, s.clock.Now(), 30),
	}
}

// RecordPage is one page of the searchable record table.
type RecordPage struct {
	Total   int           `json:"total"`
	Offset  int           `json:"offset"`
	Records []event.Event `json:"records"`
}

// Page slices the filtered view for the record table. Offset past the end
// yields an empty page with the true total.
func Page(events []event.Event, offset, limit int) RecordPage {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}
	page := RecordPage{Total: len(events), Offset: offset}
	if offset >= len(events) {
		return page
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	page.Records = events[offset:end]
	return page
}

// QuotaReport is the per-user quota view plus its status tallies.
type QuotaReport struct {
	Records []quota.Record `json:"records"`
	Normal  int            `json:"normal"`
	Near    int            `json:"near"`
	Over    int            `json:"over"`
}

// BuildQuotaReport recomputes all quota records from the filtered view.
func BuildQuotaReport(events []event.Event) QuotaReport {
	records := quota.ComputeRecords(events)
	report := QuotaReport{Records: records}
	for _, r := range records {
		switch r.Status {
		case quota.StatusNearQuota:
			report.Near++
		case quota.StatusOverQuota:
			report.Over++
		default:
			report.Normal++
		}
	}
	return report
}

// FilterOptions lists the distinct dimension values for dropdowns.
type FilterOptions struct {
	Users  []string `json:"users"`
	Models []string `json:"models"`
}

// Options derives the dropdown contents from the unfiltered dataset.
func (s *DashboardService) Options(ctx context.Context) (FilterOptions, error) {
	ds, ok, err := s.store.Current(ctx)
	if err != nil || !ok {
		return FilterOptions{}, err
	}
	return FilterOptions{
		Users:  filter.Users(ds.Events),
		Models: filter.Models(ds.Events),
	}, nil
}
