package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/okian/jobmarket/internal/adapters/http/api"
	"github.com/okian/jobmarket/internal/adapters/http/site"
	"github.com/okian/jobmarket/internal/adapters/http/swagger"
	app "github.com/okian/jobmarket/internal/app"
	"github.com/okian/jobmarket/internal/config"
	"github.com/okian/jobmarket/internal/domain/generate"
	"github.com/okian/jobmarket/pkg/logger"
	"github.com/okian/jobmarket/pkg/metrics"
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
	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := run(); err != nil {
		os.Stderr.WriteString("jobmarket: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.InitWith(cfg.LogFormat, os.Stderr); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	srv := newServer(ctx, cfg, svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metrics.RunSystemCollector(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info(context.Background(), "server stopped")
	return err
}

// newService builds the orchestrator from configuration. Non-zero seeds make
// the generators reproducible.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithQueueSize(cfg.TriggerQueueSize),
		app.WithDefaults(cfg.Defaults()),
		app.WithInitialFilter(cfg.InitialFilter()),
		app.WithPublishTimeout(cfg.PublishTimeout()),
		app.WithRetention(cfg.SnapshotRetention),
	}
	if cfg.RegionalSeed != 0 {
		opts = append(opts, app.WithRandomSource(generate.NewSource(cfg.RegionalSeed)))
	}
	if cfg.HistorySeed != 0 {
		opts = append(opts, app.WithHistorySource(generate.NewSource(cfg.HistorySeed)))
	}
	return app.New(opts...)
}

// newServer wires the JSON API, the live stream, the dashboard page and the
// docs into one server. Shutdown also ends the live streams.
func newServer(ctx context.Context, cfg *config.Config, svc *app.Service) *http.Server {
	hub := api.NewStreamHub(cfg.StreamBuffer)
	svc.SubscribeAll(hub)
	svc.Observe(hub)

	mux := http.NewServeMux()
	api.NewServer(svc, svc,
		api.WithStreamHub(hub),
		api.WithRequestTimeout(cfg.RequestTimeout()),
	).Register(ctx, mux)
	site.Register(ctx, mux, svc)
	swagger.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv.RegisterOnShutdown(hub.Close)
	return srv
}
