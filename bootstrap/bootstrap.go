// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/artpar/usagelens/adapters/clock"
	"github.com/artpar/usagelens/adapters/hasher"
	"github.com/artpar/usagelens/adapters/idgen"
	"github.com/artpar/usagelens/adapters/memory"
	"github.com/artpar/usagelens/adapters/metrics"
	"github.com/artpar/usagelens/adapters/sqlite"
	"github.com/artpar/usagelens/app"
	"github.com/artpar/usagelens/config"
	"github.com/artpar/usagelens/domain/event"
	"github.com/artpar/usagelens/ports"
	"github.com/artpar/usagelens/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Holder     *config.Holder
	DB         *sqlite.DB
	Store      *memory.DatasetStore
	Archive    ports.DatasetArchive
	Metrics    *metrics.Collector
	Ingest     *app.IngestService
	Dashboard  *app.DashboardService
	Export     *app.ExportService
	HTTPServer *http.Server
}

// New creates and initializes the application from a config file path.
// An empty path falls back to environment-only configuration.
func New(configPath string) (*App, error) {
	cfg, err := config.LoadWithFallback(configPath)
	if err != nil {
		return nil, err
	}

	logger := SetupLogger(cfg.Logging)
	a := &App{Logger: logger}

	// Hot reload only works with a file-backed config.
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr == nil {
			holder, err := config.NewHolder(configPath, logger)
			if err != nil {
				return nil, err
			}
			a.Holder = holder
			if err := holder.WatchFile(); err != nil {
				logger.Warn().Err(err).Msg("config file watch unavailable")
			}
			holder.WatchSignals()
		}
	}
	if a.Holder == nil {
		a.Holder = config.StaticHolder(cfg)
	}

	logger.Info().Msg("initializing usagelens")

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.Metrics = metrics.New(registry)
		logger.Info().Msg("prometheus metrics enabled")
	}

	a.Store = memory.NewDatasetStore()

	if cfg.Archive.Enabled {
		db, err := sqlite.Open(cfg.Archive.DSN)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate archive: %w", err)
		}
		a.DB = db
		a.Archive = sqlite.NewDatasetArchive(db)
		logger.Info().Str("dsn", cfg.Archive.DSN).Msg("dataset archive enabled")
	}

	a.Ingest = app.NewIngestService(app.IngestDeps{
		Store:     a.Store,
		Archive:   a.Archive,
		Clock:     clock.Real{},
		IDGen:     idgen.UUID{},
		Metrics:   a.Metrics,
		Logger:    logger,
		BatchSize: cfg.Ingest.BatchSize,
		Normalize: event.NormalizeOptions{
			DefaultRequests:     float64(cfg.Ingest.DefaultRequests),
			DefaultMonthlyQuota: cfg.Ingest.DefaultMonthlyQuota,
		},
	})
	a.Dashboard = app.NewDashboardService(a.Store, clock.Real{})
	a.Export = app.NewExportService(a.Metrics)

	handler := web.NewHandler(web.Deps{
		Ingest:    a.Ingest,
		Dashboard: a.Dashboard,
		Export:    a.Export,
		Archive:   a.Archive,
		Holder:    a.Holder,
		Hasher:    hasher.NewBcrypt(0),
		Metrics:   a.Metrics,
		Registry:  registry,
		Logger:    logger,
	})

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// Restore replays the most recent archived dataset into memory.
func (a *App) Restore(ctx context.Context) {
	result, ok, err := a.Ingest.Restore(ctx)
	switch {
	case err != nil:
		a.Logger.Warn().Err(err).Msg("dataset restore failed, starting empty")
	case ok:
		a.Logger.Info().
			Str("dataset", result.Meta.Name).
			Int("rows", result.Accepted).
			Msg("dataset restored from archive")
	default:
		a.Logger.Info().Msg("no archived dataset, starting empty")
	}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown stops the server and releases resources.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.Holder != nil {
		a.Holder.Stop()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("archive close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// SetupLogger builds the process logger from the logging config.
func SetupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
