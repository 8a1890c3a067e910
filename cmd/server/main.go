package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maruko-pickup/api/internal/config"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/logger"
	"github.com/maruko-pickup/api/internal/metrics"
	"github.com/maruko-pickup/api/internal/notify"
	"github.com/maruko-pickup/api/internal/render"
	"github.com/maruko-pickup/api/internal/router"
	"github.com/maruko-pickup/api/internal/ws"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse redis url")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("ping redis")
	}

	m := metrics.New()

	queue, closeQueue := newQueue(cfg, m)

	hub := ws.NewHub()
	go hub.Run(ctx)

	r := router.New(cfg, database.New(pool), pool, hub, router.Deps{
		Metrics: m,
		Queue:   queue,
		Redis:   rdb,
		Renderer: render.NewChrome(render.ChromeOptions{
			ExecPath: cfg.ChromePath,
			Settle:   cfg.RenderSettle,
		}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("notify_backend", cfg.NotifyBackend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := closeQueue(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("notification queue shutdown")
	}
}

// newQueue builds the confirmation mail queue for the configured backend.
// The local queue sends from in-process workers; the kafka queue only
// publishes and leaves sending to cmd/notifier.
func newQueue(cfg *config.Config, m *metrics.Metrics) (notify.Queue, func(context.Context) error) {
	if cfg.NotifyBackend == config.NotifyBackendKafka {
		q := notify.NewKafkaQueue(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaNotifyTopic, m))
		return q, func(context.Context) error { return q.Close() }
	}

	q := notify.NewLocalQueue(notify.SenderFromConfig(cfg), 256, notify.PolicyFromConfig(cfg), m)
	q.Start(cfg.NotifyWorkers)
	return q, q.Close
}
