// Package app contains the use-case services: ingestion, export, and the
// dashboard view composition over the active dataset.
package app

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/artpar/usagelens/adapters/metrics"
	"github.com/artpar/usagelens/domain/csvtext"
	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/ports"
)

// ErrSuperseded is returned when a newer ingest replaced an in-flight one.
// The superseded run leaves the dataset store untouched.
var ErrSuperseded = errors.New("app: ingest superseded by a newer one")

// IngestResult summarizes one completed ingest.
type IngestResult struct {
	Meta     ports.DatasetMeta
	Accepted int
	// Rejected counts dropped rows per reason. Rejections never abort the
	// pipeline; only an empty input or a fully rejected input does.
	Rejected map[event.RejectReason]int
}

// RejectedTotal sums the rejection counts.
func (r IngestResult) RejectedTotal() int {
	var n int
	for _, c := range r.Rejected {
		n += c
	}
	return n
}

// IngestDeps contains dependencies for the ingest service.
type IngestDeps struct {
	Store   ports.DatasetStore
	Archive ports.DatasetArchive // optional
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Metrics *metrics.Collector // optional
	Logger  zerolog.Logger
	// BatchSize is the number of lines normalized between cancellation
	// checks. Zero means csvtext.DefaultBatchSize. The batch size never
	// affects the resulting dataset, only scheduling granularity.
	BatchSize int
	Normalize event.NormalizeOptions
}

// IngestService turns raw CSV text into the active dataset.
//
// Ingestion is chunked: rows are normalized in fixed-size batches with a
// cancellation check between batches, so a long parse cannot starve the
// caller and a newer upload supersedes an older in-flight one via a
// generation counter.
type IngestService struct {
	deps       IngestDeps
	generation atomic.Uint64
}

// NewIngestService creates a new ingest service.
func NewIngestService(deps IngestDeps) *IngestService {
	if deps.BatchSize <= 0 {
		deps.BatchSize = csvtext.DefaultBatchSize
	}
	if deps.Normalize == (event.NormalizeOptions{}) {
		deps.Normalize = event.DefaultNormalizeOptions()
	}
	return &IngestService{deps: deps}
}

// Ingest parses, normalizes, sorts, and installs a new dataset.
//
// Typed failures: csvtext.ErrEmptyInput for empty or header-only text,
// event.ErrNoValidRecords when every row was rejected, ErrSuperseded when
// a newer Ingest started while this one was still chunking.
func (s *IngestService) Ingest(ctx context.Context, name, text string) (IngestResult, error) {
	return s.ingest(ctx, name, text, true)
}

func (s *IngestService) ingest(ctx context.Context, name, text string, archive bool) (IngestResult, error) {
	gen := s.generation.Add(1)
	logger := s.deps.Logger.With().Str("dataset", name).Uint64("generation", gen).Logger()

	result := IngestResult{Rejected: make(map[event.RejectReason]int)}

	doc, err := csvtext.SplitDocument(text)
	if err != nil {
		s.countFailure("empty_input")
		return result, err
	}

	header := csvtext.ParseFields(doc.Header)
	events := make([]event.Event, 0, len(doc.Rows))

	for _, batch := range csvtext.Batches(doc.Rows, s.deps.BatchSize) {
		// Cooperative scheduling point: between batches a cancelled context
		// or a newer ingest stops this one before it can touch the store.
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if s.generation.Load() != gen {
			s.countSuperseded()
			logger.Debug().Msg("ingest superseded mid-parse")
			return result, ErrSuperseded
		}

		for _, line := range batch {
			values := csvtext.ParseFields(line)
			ev, reason, ok := event.Normalize(header, values, s.deps.Normalize)
			if !ok {
				result.Rejected[reason]++
				continue
			}
			events = append(events, ev)
		}
	}

	if len(events) == 0 {
		s.countFailure("no_valid_records")
		logger.Warn().Int("rejected", result.RejectedTotal()).Msg("ingest produced no valid records")
		return result, event.ErrNoValidRecords
	}

	event.SortByTimestamp(events)

	result.Accepted = len(events)
	result.Meta = ports.DatasetMeta{
		ID:           s.deps.IDGen.New(),
		Name:         name,
		RowCount:     len(events),
		RejectedRows: result.RejectedTotal(),
		UploadedAt:   s.deps.Clock.Now().UTC(),
	}

	// Last-writer check before the swap: a stale run must not clobber a
	// newer dataset.
	if s.generation.Load() != gen {
		s.countSuperseded()
		return result, ErrSuperseded
	}

	if err := s.deps.Store.Replace(ctx, ports.Dataset{Meta: result.Meta, Events: events}); err != nil {
		return result, err
	}

	if archive && s.deps.Archive != nil {
		if err := s.deps.Archive.Save(ctx, result.Meta, text); err != nil {
			// The in-memory dataset is already live; archiving is a cache.
			logger.Error().Err(err).Msg("dataset archive save failed")
		}
	}

	s.countSuccess(result)
	logger.Info().
		Int("accepted", result.Accepted).
		Int("rejected", result.RejectedTotal()).
		Msg("dataset ingested")
	return result, nil
}

// Restore re-ingests the most recently archived dataset, if any.
// Used at startup so the dashboard survives restarts.
func (s *IngestService) Restore(ctx context.Context) (IngestResult, bool, error) {
	if s.deps.Archive == nil {
		return IngestResult{}, false, nil
	}
	meta, raw, ok, err := s.deps.Archive.Latest(ctx)
	if err != nil || !ok {
		return IngestResult{}, false, err
	}
	result, err := s.ingest(ctx, meta.Name, raw, false)
	if err != nil {
		return result, false, err
	}
	return result, true, nil
}

func (s *IngestService) countFailure(reason string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.IngestFailures.WithLabelValues(reason).Inc()
	}
}

func (s *IngestService) countSuperseded() {
	if s.deps.Metrics != nil {
		s.deps.Metrics.IngestSuperseded.Inc()
	}
}

func (s *IngestService) countSuccess(result IngestResult) {
	if s.deps.Metrics == nil {
		return
	}
	s.deps.Metrics.IngestsTotal.Inc()
	s.deps.Metrics.RowsIngested.Add(float64(result.Accepted))
	s.deps.Metrics.DatasetRows.Set(float64(result.Accepted))
	for reason, count := range result.Rejected {
		s.deps.Metrics.RowsRejected.WithLabelValues(string(reason)).Add(float64(count))
	}
}
