package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/impilo/fieldreport/internal/alerts"
	"github.com/impilo/fieldreport/internal/config"
	"github.com/impilo/fieldreport/internal/db"
	internalhttp "github.com/impilo/fieldreport/internal/http"
	"github.com/impilo/fieldreport/internal/observability"
	"github.com/impilo/fieldreport/internal/watch"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api stopped with error")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	emitter := alerts.NewEmitter()
	stopAlerts := alerts.LogListener(emitter, log.With().Str("component", "alerts").Logger())
	defer stopAlerts()

	hub := watch.NewHub(redisClient, log.With().Str("component", "watch").Logger())
	go func() {
		if err := hub.Run(ctx); err != nil {
			log.Error().Err(err).Msg("watch relay stopped")
		}
	}()

	handler, err := internalhttp.NewRouter(cfg, pool, redisClient, hub, emitter, metrics)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API listening on :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
