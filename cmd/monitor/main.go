package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"crawl-mgmt-go/pkg/actions"
	"crawl-mgmt-go/pkg/api"
	"crawl-mgmt-go/pkg/cli/client"
	"crawl-mgmt-go/pkg/cli/logger"
	"crawl-mgmt-go/pkg/config"
	"crawl-mgmt-go/pkg/dispatch"
	"crawl-mgmt-go/pkg/endpoints"
	"crawl-mgmt-go/pkg/metrics"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/poller"
	"crawl-mgmt-go/pkg/store"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(logger.Options{
		Dir:         cfg.CLI.LogDir,
		Name:        "monitor",
		Development: cfg.CLI.LogDevelopment,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()

	st := store.New()
	httpClient := client.NewClient(time.Duration(cfg.CLI.RequestTimeout)*time.Second, zl)
	dispatcher := dispatch.New(httpClient, st, dispatch.WithLogger(zl))
	svc := actions.NewService(endpoints.NewResolver(endpoints.FromConfig(cfg)), dispatcher, zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Poll the backend and keep the crawl gauges current
	p := poller.New(svc, time.Duration(cfg.CLI.PollInterval)*time.Second, zl)
	p.OnTick = func(actions.Result) { metrics.ObserveStore(st.List()) }
	go func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zl.Error("poller stopped", zap.Error(err))
		}
	}()

	router := api.NewRouter(st, svc, api.Options{
		Token:  cfg.Monitor.Token,
		Logger: zl,
		CreateDefaults: models.CreateCrawlRequest{
			NumBrowsers: cfg.Defaults.NumBrowsers,
			NumTabs:     cfg.Defaults.NumTabs,
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Monitor.Host, cfg.Monitor.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("monitor starting on %s (backend %s)", srv.Addr, cfg.Endpoints.Root)
		zl.Info("monitor starting", zap.String("addr", srv.Addr), zap.String("backend", cfg.Endpoints.Root))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Println("shutting down monitor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("monitor exited")
}
