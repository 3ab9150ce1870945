package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"notes_service/internal/config"
	"notes_service/internal/kafka"
	"notes_service/internal/redis"
	"notes_service/pkg/logger"
)

func main() {
	boot := logger.New(os.Stderr, zerolog.InfoLevel)
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	logFile, err := logger.InitLogger(cfg.LogFile, zerolog.InfoLevel)
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to initialise logger")
	}
	defer logFile.Close()
	log := logger.Component("consumer")

	if len(cfg.KafkaBrokers) == 0 || cfg.RedisAddr == "" {
		log.Fatal().Msg("KAFKA_BROKERS and REDIS_ADDR are required")
	}

	cache, err := redis.NewService(cfg.RedisAddr, cfg.RedisPassword, 0, cfg.PublicPageTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer cache.Close()

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, log)
	defer consumer.Close()
	register(consumer, newActivityHandlers(cache, log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("group", cfg.KafkaGroupID).Msg("consumer started")
	if err := consumer.Start(ctx); err != nil {
		log.Error().Err(err).Msg("consumer stopped")
		return
	}
	log.Info().Msg("consumer exited")
}
