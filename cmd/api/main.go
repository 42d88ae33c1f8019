package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wikindex/internal/config"
	"wikindex/internal/fetch"
	"wikindex/internal/http"
	"wikindex/internal/indexer"
	"wikindex/internal/loader"
	"wikindex/internal/metrics"
	"wikindex/internal/service"
	"wikindex/internal/storage"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API indexes the pages of an XWiki space and resolves page names to
// their REST URI and breadcrumb trail.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: wikindex API
//   description: |
//     Indexes an XWiki page hierarchy into a flat name lookup and serves
//     the indexed stories.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	runRepo := storage.NewRunRepo(db)
	resourceRepo := storage.NewResourceRepo(db)

	collector := metrics.NewCollector("wikindex")

	wiki := fetch.NewClient(fetch.Options{
		Timeout:  cfg.FetchTimeout,
		Username: cfg.Username,
		Password: cfg.Password,
		Breaker: fetch.BreakerSettings{
			Name:         "xwiki",
			MaxRequests:  cfg.BreakerMaxRequests,
			Interval:     cfg.BreakerInterval,
			Timeout:      cfg.BreakerTimeout,
			FailureRatio: cfg.BreakerFailureRatio,
			MinRequests:  cfg.BreakerMinRequests,
		},
	})
	slog.Info("Wiki client configured", "root_path", cfg.RootPath, "source_url", cfg.SourceURL, "format", cfg.Format)

	pipeline := indexer.NewPipeline(
		wiki,
		runRepo,
		cfg.IndexerOptions,
		fetch.AcceptFor,
		indexer.Request{RootPath: cfg.RootPath, SourceURL: cfg.SourceURL, Format: cfg.Format},
		collector,
	)

	indexService := service.NewIndexService(pipeline)
	resourceService := service.NewResourceService(runRepo, resourceRepo)
	storyLoader := loader.NewStoryLoader(resourceService, wiki)

	// Create router with dependencies
	deps := &http.Deps{
		IndexService:    indexService,
		ResourceService: resourceService,
		StoryLoader:     storyLoader,
		DB:              db,
		Runs:            runRepo,
		Wiki:            wiki,
		Metrics:         collector,
		CORSOrigins:     cfg.CORSOrigins,
	}
	router := http.NewRouter(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start indexing in background after router is ready
	if cfg.IndexOnStart {
		if err := indexService.Start(ctx, service.IndexRequest{}); err != nil {
			slog.Error("Failed to start initial indexing", "error", err)
		}
	}

	// Start API server
	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Shutting down API server")
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("Starting API server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
	<-shutdownDone

	// Runs still in flight write to the database closed below.
	slog.Info("Waiting for indexing runs to finish")
	indexService.Wait()
}
