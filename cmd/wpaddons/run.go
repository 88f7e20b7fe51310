package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/dnscache"

	addons "github.com/eugener/wpaddons/internal"
	"github.com/eugener/wpaddons/internal/app"
	"github.com/eugener/wpaddons/internal/cache"
	"github.com/eugener/wpaddons/internal/config"
	"github.com/eugener/wpaddons/internal/logging"
	"github.com/eugener/wpaddons/internal/remote"
	"github.com/eugener/wpaddons/internal/render"
	"github.com/eugener/wpaddons/internal/server"
	"github.com/eugener/wpaddons/internal/storage/sqlite"
	"github.com/eugener/wpaddons/internal/telemetry"
	"github.com/eugener/wpaddons/internal/worker"
)

func run(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.Info("starting wpaddons", "version", version, "addr", cfg.Server.Addr)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Tracing
	if cfg.Telemetry.Tracing.Enabled {
		shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingOptions{
			Endpoint:       cfg.Telemetry.Tracing.Endpoint,
			Insecure:       cfg.Telemetry.Tracing.Insecure,
			SampleRate:     cfg.Telemetry.Tracing.SampleRate,
			ServiceVersion: version,
		})
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				slog.Warn("tracing shutdown", "error", err)
			}
		}()
	}

	// Metrics
	var (
		metrics        *telemetry.Metrics
		metricsHandler http.Handler
	)
	if cfg.Telemetry.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = telemetry.NewMetrics(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	// Payload cache
	var (
		store      *sqlite.Store
		payloads   app.Cache
		readyCheck server.ReadyChecker
	)
	switch cfg.Cache.Backend {
	case config.BackendSQLite:
		store, err = sqlite.New(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		payloads = store
		readyCheck = store.Ping
	default:
		mem, err := cache.NewMemory(cfg.Cache.MaxSize, addons.TransientTTL)
		if err != nil {
			return err
		}
		payloads = mem
	}

	// Remote API client
	var resolver *dnscache.Resolver
	if cfg.Remote.DNSCache {
		resolver = &dnscache.Resolver{}
		go refreshDNS(ctx, resolver, cfg.Remote.DNSRefresh)
	}
	if cfg.Remote.InsecureSkipVerify {
		slog.Warn("TLS certificate verification disabled for the addons API", "base_url", cfg.Remote.BaseURL)
	}
	client := remote.New(cfg.Remote.BaseURL, &http.Client{
		Transport: remote.NewTransport(resolver, cfg.Remote.InsecureSkipVerify),
		Timeout:   cfg.Remote.Timeout,
	})

	// Wire services
	addonSvc := app.NewAddonService(payloads, client, metrics)

	renderer, err := render.New(render.Options{
		ViewsDir:      cfg.Render.ViewsDir,
		StylesheetURL: cfg.Render.StylesheetURL,
	})
	if err != nil {
		return err
	}
	slog.Info("views loaded", "views", renderer.Views())

	// Background workers
	var workers []worker.Worker
	if store != nil {
		workers = append(workers, worker.NewTransientSweeper(store, cfg.Workers.SweepInterval, metrics))
	}
	if len(cfg.Workers.WarmSlugs) > 0 {
		workers = append(workers, worker.NewCacheWarmer(addonSvc, cfg.Workers.WarmSlugs, cfg.Workers.WarmInterval))
	}
	runner := worker.NewRunner(workers...)
	workerErr := make(chan error, 1)
	go func() {
		if err := runner.Run(ctx); err != nil {
			workerErr <- err
		}
	}()

	// Create HTTP server
	handler := server.New(server.Deps{
		Addons:         addonSvc,
		Renderer:       renderer,
		Stylesheet:     render.Stylesheet(),
		AdminKey:       cfg.Auth.AdminKey,
		ReadyCheck:     readyCheck,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("wpaddons ready", "addr", cfg.Server.Addr, "cache", cfg.Cache.Backend, "workers", runner.Len())

	// Wait for signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		return err
	case err := <-workerErr:
		return fmt.Errorf("worker: %w", err)
	}

	// Shutdown
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("wpaddons stopped")
	return nil
}

// refreshDNS periodically drops unused entries from the resolver cache.
func refreshDNS(ctx context.Context, resolver *dnscache.Resolver, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			resolver.Refresh(true)
		}
	}
}
