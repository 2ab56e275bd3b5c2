package amqp

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelStub struct {
	exchange, key string
	msg           amqp091.Publishing
	hasDeadline   bool
	err           error
	closed        bool
}

func (c *channelStub) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	_, c.hasDeadline = ctx.Deadline()
	return c.err
}

func (c *channelStub) Close() error {
	c.closed = true
	return nil
}

func Test_Publish_ShouldSendPersistentJSON(t *testing.T) {
	ch := &channelStub{}
	c := &Client{channel: ch, exchange: "expenses", queue: "expense-events"}

	require.NoError(t, c.Publish(context.Background(), "id-1", []byte(`{"kind":"created"}`)))

	assert.Equal(t, "expenses", ch.exchange)
	assert.Equal(t, "expense-events", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "id-1", ch.msg.MessageId)
	assert.Equal(t, []byte(`{"kind":"created"}`), ch.msg.Body)
	assert.True(t, ch.hasDeadline)

	require.NoError(t, c.Close())
	assert.True(t, ch.closed)
}

func Test_Publish_OnChannelError_ShouldWrap(t *testing.T) {
	c := &Client{channel: &channelStub{err: errors.New("channel closed")}}

	err := c.Publish(context.Background(), "id-1", nil)

	assert.EqualError(t, err, "publish message: channel closed")
}
