package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vidforge/vidforge/internal/api"
	"github.com/vidforge/vidforge/internal/api/handler"
	"github.com/vidforge/vidforge/internal/authwait"
	"github.com/vidforge/vidforge/internal/batch"
	"github.com/vidforge/vidforge/internal/config"
	"github.com/vidforge/vidforge/internal/pipeline"
	"github.com/vidforge/vidforge/internal/repository"
	"github.com/vidforge/vidforge/internal/service"
	"github.com/vidforge/vidforge/internal/worker"
	"github.com/vidforge/vidforge/pkg/capability"
	"github.com/vidforge/vidforge/pkg/cookies"
	"github.com/vidforge/vidforge/pkg/ffmpeg"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// authWaitTTL bounds how long a parked request survives without fresh
// credentials arriving.
const authWaitTTL = 24 * time.Hour

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vidforge %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Optional .env for local development; absence is not an error.
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting vidforge",
		"version", Version,
		"build_time", BuildTime,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Storage.TempPath, 0755); err != nil {
		logger.Error("failed to create temp directory", "error", err)
		os.Exit(1)
	}

	caps := capability.Detect(cfg.Acquire.ToolPath, logger)

	// Credential store
	cookieStore, err := cookies.NewStore(cfg.Storage.CookiePath, cfg.Cookies.Passphrase)
	if err != nil {
		logger.Error("failed to open cookie store", "error", err)
		os.Exit(1)
	}

	// Repositories
	jobRepo := repository.NewInMemoryJobRepository()
	history, err := repository.NewSQLiteHistoryRepository(cfg.Storage.HistoryDB)
	if err != nil {
		logger.Error("failed to open history database", "error", err)
		os.Exit(1)
	}
	defer history.Close()

	// Acquisition chain
	runner := pipeline.NewToolRunner(caps.AcquireTool, cfg.Acquire.Timeout, cfg.Acquire.MaxFileSize, logger)
	relay := pipeline.NewRelayClient(cfg.Relay.Instances, cfg.Relay.Timeout, cfg.Relay.UserAgent, logger)

	var strategies []pipeline.Strategy
	if caps.HasAcquireTool() {
		strategies = pipeline.BuildStrategies(runner, cookieStore, cfg.Acquire.Browsers)
	} else {
		logger.Warn("acquisition tool missing, relying on relay fallback only")
	}
	chain := pipeline.NewChain(strategies, relay, cfg.Storage.TempPath, logger)

	// Media post-processing
	var media service.MediaProcessor
	if caps.HasFFmpeg() {
		media = ffmpeg.NewProcessor(caps.FFmpeg, caps.FFprobe, cfg.Transcode.Timeout, logger)
	}

	// Batch extraction: headless browser first, plain scrape fallback.
	scrape := batch.NewScrapeLister(cfg.Batch.Timeout, cfg.Batch.UserAgent)
	var extractor *batch.Extractor
	if caps.HasBrowser() {
		browserLister := batch.NewBrowserLister(batch.BrowserConfig{
			ExecPath:    caps.Browser,
			UserAgent:   cfg.Batch.UserAgent,
			Patience:    cfg.Batch.Patience,
			ScrollDelay: cfg.Batch.ScrollDelay,
			Timeout:     cfg.Batch.Timeout,
		}, cookieStore, logger)
		extractor = batch.NewExtractor(browserLister, scrape, logger)
	} else {
		extractor = batch.NewExtractor(nil, scrape, logger)
	}

	// Services
	pending := authwait.NewStore(authWaitTTL)
	acquireSvc := service.NewAcquireService(chain, media, jobRepo, history, pending, cfg.Worker, logger)
	cookieSvc := service.NewCookieService(cookieStore, pending, acquireSvc, logger)

	// Handlers and router
	router := api.NewRouter(
		handler.NewAcquisitionHandler(acquireSvc, logger),
		handler.NewCookieHandler(cookieSvc, logger),
		handler.NewCollectionHandler(extractor, logger),
		handler.NewHealthHandler(jobRepo, caps),
		cfg.Server.APIKey,
	)

	// Worker pool
	pool := worker.NewPool(
		worker.Config{
			Workers:      cfg.Worker.Count,
			PollInterval: cfg.Worker.PollInterval,
		},
		jobRepo,
		acquireSvc,
		logger,
	)
	pool.Start()

	// Periodic sweep of expired parked requests
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				pending.Sweep()
			}
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	cancelSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop workers (allow in-flight jobs to complete)
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
