package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/clients/kafka"
	"max.ks1230/expense-tracker/internal/config"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/events"
)

func main() {
	defer logger.Sync()
	logger.Info("Journal init - start")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env", zap.Error(err))
	}

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}
	if !conf.Kafka().Enabled() {
		logger.Fatal("kafka brokers are not configured")
	}

	consumer, err := kafka.NewConsumer(conf.Kafka(), events.NewJournal())
	if err != nil {
		logger.Fatal("failed to init kafka consumer", zap.Error(err))
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close kafka consumer", zap.Error(err))
		}
	}()

	logger.Info("Journal init - end", zap.String("topic", conf.Kafka().EventsTopic()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = consumer.StartConsuming(ctx); err != nil {
		logger.Error("failed to consume", zap.Error(err))
	}
}
