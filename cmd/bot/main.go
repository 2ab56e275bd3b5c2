package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"max.ks1230/expense-tracker/internal/clients/amqp"
	"max.ks1230/expense-tracker/internal/clients/kafka"
	"max.ks1230/expense-tracker/internal/clients/tg"
	"max.ks1230/expense-tracker/internal/config"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/customerr"
	"max.ks1230/expense-tracker/internal/model/events"
	"max.ks1230/expense-tracker/internal/model/messages"
	"max.ks1230/expense-tracker/internal/model/storage"
	"max.ks1230/expense-tracker/internal/model/store"
	"max.ks1230/expense-tracker/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

type botConfig struct {
	*config.AppConfig
	*config.TelegramConfig
}

type sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

func main() {
	defer logger.Sync()
	logger.Info("Bot init - start")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env", zap.Error(err))
	}

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	tracer, err := tracing.Init(conf.Tracing())
	if err != nil {
		logger.Fatal("failed to init tracing:", zap.Error(err))
	}
	defer tracer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backend, err := storage.Open(ctx, conf.Storage(), conf.Postgres(), conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init storage:", zap.Error(err))
	}
	defer backend.Close()

	expenses, err := store.New(ctx, conf.App(), backend)
	switch {
	case customerr.IsCorruptStateError(err):
		logger.Warn("starting with an empty collection", zap.Error(err))
	case err != nil:
		logger.Fatal("failed to init store:", zap.Error(err))
	}

	eventSink, closeSink, err := openSink(conf)
	if err != nil {
		logger.Fatal("failed to init event sink:", zap.Error(err))
	}
	defer closeSink()
	var publisher *events.Publisher
	if eventSink != nil {
		publisher = events.NewPublisher(eventSink, events.DefaultBufferSize)
		defer expenses.Subscribe(publisher.OnChange)()
	}

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init client:", zap.Error(err))
	}
	if err = client.RegisterCommands(messages.Commands()); err != nil {
		logger.Warn("failed to register bot commands", zap.Error(err))
	}

	if !conf.Telegram().OwnerConfigured() {
		logger.Warn("telegram owner-id is not set, the bot will refuse every user")
	}
	msgService := messages.NewService(client, expenses, botConfig{conf.App(), conf.Telegram()})

	logger.Info("Bot init - end", zap.Int("expenses", expenses.Len()))

	g, ctx := errgroup.WithContext(ctx)
	srv := metricsServer(conf.Metrics().ListenAddr())

	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "metrics server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		client.ListenUpdates(ctx, msgService)
		return nil
	})
	if publisher != nil {
		g.Go(func() error {
			return publisher.Run(ctx)
		})
	}

	if err = g.Wait(); err != nil {
		logger.Error("bot stopped with error", zap.Error(err))
		return
	}
	logger.Info("Bot stopped")
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}
}

// openSink picks Kafka, then RabbitMQ. With neither configured no events are sent.
func openSink(conf *config.Service) (sink, func(), error) {
	switch {
	case conf.Kafka().Enabled():
		producer, err := kafka.NewProducer(conf.Kafka())
		if err != nil {
			return nil, nil, err
		}
		logger.Info("publishing change events to kafka", zap.String("topic", conf.Kafka().EventsTopic()))
		return producer, producer.Close, nil
	case conf.AMQP().Enabled():
		client, err := amqp.NewClient(conf.AMQP())
		if err != nil {
			return nil, nil, err
		}
		return client, func() {
			if err := client.Close(); err != nil {
				logger.Error("failed to close amqp client", zap.Error(err))
			}
		}, nil
	default:
		logger.Info("change events disabled")
		return nil, func() {}, nil
	}
}
