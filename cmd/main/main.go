package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connector-finder/internal/config"
	"connector-finder/internal/finder/service"
	"connector-finder/internal/observability"
	"connector-finder/internal/store"
	serverhttp "connector-finder/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := store.Open(cfg.StoreDSN, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("dsn", cfg.StoreDSN).Msg("open store")
	}
	finder, err := service.Build(ctx, src, cfg.Build, logger)
	// the datasets are in memory from here on
	if cerr := src.Close(); cerr != nil {
		logger.Warn().Err(cerr).Msg("close store")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("build datasets")
	}

	metrics := observability.NewMetrics()
	metrics.ObserveDataset(finder.Stats())

	r := serverhttp.NewRouter(cfg, logger, finder, metrics)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("bye")
}
