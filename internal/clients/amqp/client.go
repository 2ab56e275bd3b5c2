package amqp

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

const publishTimeout = 5 * time.Second

type config interface {
	URL() string
	Exchange() string
	Queue() string
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Client publishes change events to a durable direct exchange bound to one queue.
type Client struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	queue    string
}

func NewClient(cfg config) (*Client, error) {
	conn, err := amqp091.Dial(cfg.URL())
	if err != nil {
		return nil, errors.Wrap(err, "dial amqp")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if err = declare(ch, cfg.Exchange(), cfg.Queue()); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "setup exchange and queue")
	}

	logger.Info("amqp connected", zap.String("exchange", cfg.Exchange()), zap.String("queue", cfg.Queue()))
	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange(),
		queue:    cfg.Queue(),
	}, nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "declare exchange")
	}
	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare queue")
	}
	// routing key equals the queue name
	if err = ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return errors.Wrap(err, "bind queue")
	}
	return nil
}

// Publish sends a persistent JSON message. key becomes the message id.
func (c *Client) Publish(ctx context.Context, key string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.channel.PublishWithContext(ctx, c.exchange, c.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    key,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		return errors.Wrap(err, "publish message")
	}
	logger.Debug("event published", zap.String("key", key), zap.String("exchange", c.exchange))
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
