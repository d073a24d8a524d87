// Package web provides the JSON API for the usage dashboard.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/artpar/usagelens/adapters/metrics"
	"github.com/artpar/usagelens/app"
	"github.com/artpar/usagelens/config"
	"github.com/artpar/usagelens/domain/csvtext"
	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/domain/filter"
	"github.com/artpar/usagelens/domain/quota"
	"github.com/artpar/usagelens/domain/stats"
	"github.com/artpar/usagelens/ports"
)

// Handler provides the dashboard API endpoints.
type Handler struct {
	ingest    *app.IngestService
	dashboard *app.DashboardService
	export    *app.ExportService
	archive   ports.DatasetArchive
	holder    *config.Holder
	hasher    ports.Hasher
	metrics   *metrics.Collector
	registry  *prometheus.Registry
	logger    zerolog.Logger
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Ingest    *app.IngestService
	Dashboard *app.DashboardService
	Export    *app.ExportService
	Archive   ports.DatasetArchive // optional
	Holder    *config.Holder
	Hasher    ports.Hasher
	Metrics   *metrics.Collector   // optional
	Registry  *prometheus.Registry // optional, backs /metrics
	Logger    zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		ingest:    deps.Ingest,
		dashboard: deps.Dashboard,
		export:    deps.Export,
		archive:   deps.Archive,
		holder:    deps.Holder,
		hasher:    deps.Hasher,
		metrics:   deps.Metrics,
		registry:  deps.Registry,
		logger:    deps.Logger,
	}
}

// Router returns the HTTP router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	if h.metrics != nil {
		r.Use(NewMetricsMiddleware(h.metrics))
	}

	r.Get("/healthz", h.Health)
	if h.registry != nil {
		cfg := h.holder.Get()
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		if cfg.Metrics.Enabled {
			r.Handle(path, promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
		}
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Post("/datasets", h.Upload)
		r.Get("/datasets", h.ListDatasets)

		r.Get("/summary", h.Summary)
		r.Get("/records", h.Records)
		r.Get("/quota", h.Quota)
		r.Get("/export", h.Export)
		r.Get("/filters", h.Filters)

		r.Get("/models", h.Models)
		r.Get("/models/{model}/users", h.ModelUsers)
		r.Get("/users", h.Users)

		r.Route("/charts", func(r chi.Router) {
			r.Get("/timeline", h.chart(func(c app.Charts) any { return c.Timeline }))
			r.Get("/cumulative", h.chart(func(c app.Charts) any { return c.Cumulative }))
			r.Get("/models", h.chart(func(c app.Charts) any { return c.ByModel }))
			r.Get("/users", h.chart(func(c app.Charts) any { return c.TopUsers }))
			r.Get("/hours", h.chart(func(c app.Charts) any { return c.ByHour }))
			r.Get("/weekdays", h.chart(func(c app.Charts) any { return c.ByWeekday }))
			r.Get("/trends", h.chart(func(c app.Charts) any { return c.Trends }))
		})
	})

	return r
}

// Health reports liveness and whether a dataset is loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	_, _, ok, err := h.dashboard.Filtered(r.Context(), filter.Criteria{})
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"dataset": ok && err == nil,
	})
}

// Upload ingests a CSV body as the new active dataset.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.holder.Get().Server.MaxUploadBytes
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large",
			fmt.Sprintf("upload exceeds %d bytes", maxBytes))
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.csv"
	}

	result, err := h.ingest.Ingest(r.Context(), name, string(body))
	switch {
	case errors.Is(err, csvtext.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "empty_input", "CSV needs a header row and at least one data row")
		return
	case errors.Is(err, event.ErrNoValidRecords):
		writeError(w, http.StatusUnprocessableEntity, "no_valid_records", "every row was rejected during normalization")
		return
	case errors.Is(err, app.ErrSuperseded):
		writeError(w, http.StatusConflict, "superseded", "a newer upload replaced this one")
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("upload failed")
		writeError(w, http.StatusInternalServerError, "internal", "ingest failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":            result.Meta.ID,
		"name":          result.Meta.Name,
		"uploaded_at":   result.Meta.UploadedAt,
		"accepted_rows": result.Accepted,
		"rejected_rows": result.RejectedTotal(),
		"rejections":    result.Rejected,
	})
}

// ListDatasets lists archived uploads, newest first.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeJSON(w, http.StatusOK, []ports.DatasetMeta{})
		return
	}
	metas, err := h.archive.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("archive list failed")
		writeError(w, http.StatusInternalServerError, "internal", "archive unavailable")
		return
	}
	if metas == nil {
		metas = []ports.DatasetMeta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

// Summary returns the stat cards for the filtered view.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	events, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app.Summarize(events))
}

// Records returns one page of the filtered record table.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	events, ok := h.filtered(w, r)
	if !ok {
		return
	}
	offset := parseIntQuery(r, "offset", 0)
	limit := parseIntQuery(r, "limit", 100)
	writeJSON(w, http.StatusOK, app.Page(events, offset, limit))
}

// Quota returns the per-user quota report, optionally filtered by status.
func (h *Handler) Quota(w http.ResponseWriter, r *http.Request) {
	events, ok := h.filtered(w, r)
	if !ok {
		return
	}
	report := app.BuildQuotaReport(events)
	if s := r.URL.Query().Get("status"); s != "" {
		report.Records = quota.FilterByStatus(report.Records, quota.Status(s))
	}
	writeJSON(w, http.StatusOK, report)
}

// Export streams the filtered view as a CSV download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	events, meta, ok, err := h.dashboard.Filtered(r.Context(), criteriaFromQuery(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "internal", "dataset unavailable")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no_dataset", "no dataset has been uploaded")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(meta.Name)))
	io.WriteString(w, h.export.CSV(events))
}

// Filters returns the distinct user and model lists for dropdowns.
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.dashboard.Options(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("filter options failed")
		writeError(w, http.StatusInternalServerError, "internal", "dataset unavailable")
		return
	}
	if opts.Users == nil {
		opts.Users = []string{}
	}
	if opts.Models == nil {
		opts.Models = []string{}
	}
	writeJSON(w, http.StatusOK, opts)
}

// Models returns the per-model share table.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	events, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.ModelShares(events))
}

// Users returns the per-user share table.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	events, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.UserShares(events))
}

// ModelUsers returns who used one model and their shares of it.
func (h *Handler) ModelUsers(w http.ResponseWriter, r *http.Request) {
	events, ok := h.filtered(w, r)
	if !ok {
		return
	}
	model := chi.URLParam(r, "model")
	rows := stats.UserBreakdown(events, model)
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "unknown_model", fmt.Sprintf("no usage recorded for model %q", model))
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// chart adapts one series of the chart bundle into a handler.
func (h *Handler) chart(pick func(app.Charts) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, ok := h.filtered(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, pick(h.dashboard.BuildCharts(events)))
	}
}

// filtered resolves the filtered view or writes the no-dataset error.
func (h *Handler) filtered(w http.ResponseWriter, r *http.Request) ([]event.Event, bool) {
	events, _, ok, err := h.dashboard.Filtered(r.Context(), criteriaFromQuery(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("dataset read failed")
		writeError(w, http.StatusInternalServerError, "internal", "dataset unavailable")
		return nil, false
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no_dataset", "no dataset has been uploaded")
		return nil, false
	}
	return events, true
}

// criteriaFromQuery parses the shared filter query parameters. The window
// accepts a day count or "all"; user and model accept "all" as a wildcard.
func criteriaFromQuery(r *http.Request) filter.Criteria {
	c := filter.Criteria{
		User:   r.URL.Query().Get("user"),
		Model:  r.URL.Query().Get("model"),
		Search: r.URL.Query().Get("q"),
	}
	if v := r.URL.Query().Get("window"); v != "" && v != filter.All {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			c.WindowDays = days
		}
	}
	return c
}

func exportFilename(datasetName string) string {
	name := strings.TrimSuffix(datasetName, ".csv")
	if name == "" {
		name = "usage"
	}
	return name + "-export.csv"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func parseIntQuery(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
