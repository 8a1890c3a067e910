// Command notifier consumes order confirmations from Kafka and sends them
// by mail. It is only needed when the API runs with NOTIFY_BACKEND=kafka.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/maruko-pickup/api/internal/config"
	"github.com/maruko-pickup/api/internal/logger"
	"github.com/maruko-pickup/api/internal/metrics"
	"github.com/maruko-pickup/api/internal/notify"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := notify.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaNotifyTopic, cfg.KafkaGroupID)
	defer reader.Close()

	consumer := notify.NewConsumer(reader, notify.SenderFromConfig(cfg), notify.PolicyFromConfig(cfg), metrics.New())

	log.Info().
		Strs("brokers", cfg.KafkaBrokers).
		Str("topic", cfg.KafkaNotifyTopic).
		Str("group", cfg.KafkaGroupID).
		Msg("starting notifier")
	if err := consumer.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("consume notifications")
	}
	log.Info().Msg("notifier stopped")
}
