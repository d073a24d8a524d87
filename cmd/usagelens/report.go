package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/usagelens/adapters/clock"
	"github.com/artpar/usagelens/adapters/idgen"
	"github.com/artpar/usagelens/adapters/memory"
	"github.com/artpar/usagelens/app"
	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/domain/filter"
)

var filterFlags struct {
	window int
	user   string
	model  string
	search string
}

var reportCmd = &cobra.Command{
	Use:   "report <file.csv>",
	Short: "Print a usage summary for a CSV file",
	Long: `Ingest a CSV file and print the dashboard summary to the terminal:
totals, growth, peak hour, and the per-user quota table.

Examples:
  usagelens report usage.csv
  usagelens report usage.csv --window 30 --model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

// loadEvents ingests a CSV file into a throwaway in-memory dataset and
// returns the filtered view.
func loadEvents(path string) ([]event.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	store := memory.NewDatasetStore()
	svc := app.NewIngestService(app.IngestDeps{
		Store:  store,
		Clock:  clock.Real{},
		IDGen:  idgen.UUID{},
		Logger: zerolog.Nop(),
	})
	result, err := svc.Ingest(context.Background(), path, string(data))
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	if rejected := result.RejectedTotal(); rejected > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d rows rejected\n", rejected)
	}

	dash := app.NewDashboardService(store, clock.Real{})
	events, _, _, err := dash.Filtered(context.Background(), criteriaFromFlags())
	return events, err
}

func criteriaFromFlags() filter.Criteria {
	return filter.Criteria{
		WindowDays: filterFlags.window,
		User:       filterFlags.user,
		Model:      filterFlags.model,
		Search:     filterFlags.search,
	}
}

func registerFilterFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&filterFlags.window, "window", 0, "Only include the trailing N days (0 = all)")
	cmd.Flags().StringVar(&filterFlags.user, "user", "", "Only include one user")
	cmd.Flags().StringVar(&filterFlags.model, "model", "", "Only include one model")
	cmd.Flags().StringVar(&filterFlags.search, "q", "", "Substring search over user, model, and date")
}

func runReport(cmd *cobra.Command, args []string) error {
	events, err := loadEvents(args[0])
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No records match the filters.")
		return nil
	}

	s := app.Summarize(events)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total requests:\t%.0f\n", s.TotalRequests)
	fmt.Fprintf(w, "Users:\t%d\n", s.TotalUsers)
	fmt.Fprintf(w, "Models:\t%d\n", s.TotalModels)
	fmt.Fprintf(w, "Active days:\t%d\n", s.ActiveDays)
	fmt.Fprintf(w, "Daily average:\t%.1f\n", s.DailyAverage)
	fmt.Fprintf(w, "Avg per user:\t%.1f\n", s.AvgPerUser)
	fmt.Fprintf(w, "Most popular model:\t%s\n", s.MostPopularModel)
	fmt.Fprintf(w, "Peak hour:\t%02d:00 (%.0f requests)\n", s.PeakHour, s.PeakHourRequests)
	fmt.Fprintf(w, "Weekly growth:\t%+.1f%%\n", s.WeeklyGrowth.DeltaPct)
	fmt.Fprintf(w, "Monthly growth:\t%+.1f%%\n", s.MonthlyGrowth.DeltaPct)
	w.Flush()

	report := app.BuildQuotaReport(events)
	if len(report.Records) == 0 {
		return nil
	}

	fmt.Println()
	qw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(qw, "USER\tREQUESTS\tQUOTA\tUSED\tSTATUS")
	for _, r := range report.Records {
		fmt.Fprintf(qw, "%s\t%.0f\t%d\t%.1f%%\t%s\n",
			r.User, r.TotalRequests, r.MonthlyQuota, r.UsagePercent, r.Status)
	}
	qw.Flush()
	fmt.Printf("\n%d normal, %d near quota, %d over quota\n", report.Normal, report.Near, report.Over)
	return nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	registerFilterFlags(reportCmd)
}
