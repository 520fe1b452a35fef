package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itchan-dev/forum/backend/internal/router"
	"github.com/itchan-dev/forum/backend/internal/setup"
	"github.com/itchan-dev/forum/shared/config"
	"github.com/itchan-dev/forum/shared/logger"
	"github.com/itchan-dev/forum/shared/tracing"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	shutdownTimeout = 15 * time.Second
	rankingTimeout  = 5 * time.Minute
	sweepInterval   = 10 * time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("no .env file found, using system environment variables")
	}

	var configFolder string
	flag.StringVar(&configFolder, "config_folder", envOr("CONFIG_FOLDER", "backend/config"), "path to folder with configs")
	flag.Parse()
	cfg := config.MustLoad(configFolder)

	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)
	log := logger.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(cfg.Public.Tracing)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Cleanup()

	scheduler := cron.New()
	if _, err := deps.Ranking.Schedule(scheduler, cfg.Public.Ranking.Schedule, rankingTimeout); err != nil {
		log.Error("failed to schedule ranking", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	go deps.Limiter.Run(ctx, sweepInterval)

	server := &http.Server{
		Addr:              ":" + envOr("PORT", "8080"),
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	<-scheduler.Stop().Done()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("failed to flush traces", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
