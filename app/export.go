package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/artpar/usagelens/adapters/metrics"
	"github.com/artpar/usagelens/domain/csvtext"
	"github.com/artpar/usagelens/domain/event"
)

// ExportService renders filtered events back into CSV text. The output uses
// the canonical column set and the same escaping rules the parser reverses,
// so an exported file re-ingests to the same events.
type ExportService struct {
	metrics *metrics.Collector
}

// NewExportService creates a new export service. metrics may be nil.
func NewExportService(m *metrics.Collector) *ExportService {
	return &ExportService{metrics: m}
}

// CSV renders events as CSV text with a header row and a trailing newline.
// Field values come from the event's original row where available, so values
// the importer defaulted are written back exactly as they arrived.
func (s *ExportService) CSV(events []event.Event) string {
	var b strings.Builder
	b.WriteString(csvtext.FormatLine(event.RequiredColumns))
	b.WriteByte('\n')
	for _, e := range events {
		fields := make([]string, len(event.RequiredColumns))
		for i, col := range event.RequiredColumns {
			fields[i] = exportField(e, col)
		}
		b.WriteString(csvtext.FormatLine(fields))
		b.WriteByte('\n')
	}
	if s.metrics != nil {
		s.metrics.ExportsTotal.Inc()
	}
	return b.String()
}

// exportField prefers the value as it appeared in the source row and falls
// back to rendering the normalized field for synthetic events.
func exportField(e event.Event, col string) string {
	if v, ok := e.Raw[col]; ok {
		return v
	}
	switch col {
	case event.ColTimestamp:
		return e.Timestamp.UTC().Format(time.RFC3339)
	case event.ColUser:
		return e.User
	case event.ColModel:
		return e.Model
	case event.ColRequests:
		return strconv.FormatFloat(e.Requests, 'f', -1, 64)
	case event.ColExceedsQuota:
		if e.ExceedsQuotaFlag {
			return "TRUE"
		}
		return "FALSE"
	case event.ColMonthlyQuota:
		return strconv.Itoa(e.MonthlyQuota)
	}
	return ""
}
