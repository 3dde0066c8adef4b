package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/okian/polo/internal/adapters/http/api"
	"github.com/okian/polo/internal/adapters/http/swagger"
	"github.com/okian/polo/internal/adapters/live"
	"github.com/okian/polo/internal/adapters/persistence"
	service "github.com/okian/polo/internal/app"
	"github.com/okian/polo/internal/config"
	"github.com/okian/polo/internal/domain/export"
	"github.com/okian/polo/internal/domain/views"
	"github.com/okian/polo/pkg/logger"
	"github.com/okian/polo/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithFormat(cfg.LogFormat, os.Stdout); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.SetEnabled(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		go metrics.RunSystemCollector(ctx)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "scorer exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	hub := live.NewHub(
		live.WithPingInterval(cfg.PingInterval()),
		live.WithSendBuffer(cfg.WSSendBuffer),
		live.WithCheckOrigin(originChecker(cfg.AllowedOrigins())),
		live.WithLogger(log.Named("live")),
	)
	go hub.Start(ctx)

	svc, err := newService(cfg, hub, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop(context.Background())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, hub),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

func newService(cfg *config.Config, hub *live.Hub, log logger.Logger) (*service.Service, error) {
	loc, err := export.LookupLocale(cfg.ExportLocale)
	if err != nil {
		return nil, err
	}
	var snapshots persistence.Store = persistence.NopStore{}
	if cfg.SnapshotPath != "" {
		snapshots = persistence.NewFileStore(cfg.SnapshotPath)
	}
	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithSnapshotStore(snapshots),
		service.WithNotifier(hub),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithLocale(loc),
		service.WithScreenPolicy(views.Policy{
			PeriodDescending: cfg.ScreenPeriodDescending,
			ClockAscending:   cfg.ScreenClockAscending,
		}),
	), nil
}

// newHandler builds the full route table behind CORS and h2c.
func newHandler(ctx context.Context, cfg *config.Config, svc *service.Service, hub *live.Hub) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, hub).Register(ctx, mux)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: cfg.AllowedOrigins(),
		AllowedHeaders: []string{"*"},
	})
	return h2c.NewHandler(c.Handler(mux), &http2.Server{})
}

// originChecker applies the CORS origin list to websocket upgrades.
func originChecker(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(origins, "*") {
			return true
		}
		return slices.Contains(origins, origin)
	}
}
