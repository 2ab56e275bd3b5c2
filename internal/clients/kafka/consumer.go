package kafka

import (
	"context"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/events"
)

type consumerConfig interface {
	producerConfig
	ConsumerGroup() string
}

type eventHandler interface {
	HandleEvent(ctx context.Context, ev events.Event) error
}

type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	handler       eventHandler
}

func NewConsumer(cfg consumerConfig, handler eventHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers(), cfg.ConsumerGroup(), config)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka consumer group")
	}
	return &Consumer{
		consumerGroup: consumerGroup,
		topic:         cfg.EventsTopic(),
		handler:       handler,
	}, nil
}

func (c *Consumer) StartConsuming(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
			if err != nil {
				return errors.Wrapf(err, "consume from %s", c.topic)
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.consumerGroup.Close()
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - setup")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - cleanup")
	return nil
}

// ConsumeClaim marks every message, including ones that fail to decode or
// handle: a broken event is logged and skipped rather than retried forever.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		ev, err := events.Decode(message.Value)
		if err != nil {
			logger.Error("cannot decode kafka message", zap.ByteString("key", message.Key), zap.Error(err))
		} else if err = c.handler.HandleEvent(session.Context(), ev); err != nil {
			logger.Error("failed to handle event", zap.String("id", ev.ID), zap.Error(err))
		}
		session.MarkMessage(message, "")
	}
	return nil
}
