package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/model/events"
	"max.ks1230/expense-tracker/internal/model/store"
)

func Test_Publish_ShouldSendPayloadToTopic(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"kind":"deleted"}` {
			return errors.Errorf("unexpected payload %s", val)
		}
		return nil
	})
	p := newProducer(mp, "expense-events")

	require.NoError(t, p.Publish(context.Background(), "id-1", []byte(`{"kind":"deleted"}`)))
	p.Close()
}

func Test_Publish_OnBrokerError_ShouldWrap(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p := newProducer(mp, "expense-events")

	err := p.Publish(context.Background(), "id-1", []byte(`{}`))

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Contains(t, err.Error(), "send to expense-events")
	p.Close()
}

type sessionStub struct {
	sarama.ConsumerGroupSession
	marked []int64
}

func (s *sessionStub) Context() context.Context {
	return context.Background()
}

func (s *sessionStub) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type claimStub struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *claimStub) Messages() <-chan *sarama.ConsumerMessage {
	return c.messages
}

type handlerStub struct {
	handled []events.Event
	err     error
}

func (h *handlerStub) HandleEvent(_ context.Context, ev events.Event) error {
	h.handled = append(h.handled, ev)
	return h.err
}

func Test_ConsumeClaim_ShouldHandleEventsAndMarkAll(t *testing.T) {
	payload, err := events.Encode(events.Event{Kind: store.Deleted, ID: "id-1", OccurredAt: time.Now()})
	require.NoError(t, err)

	claim := &claimStub{messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 1, Value: payload}
	claim.messages <- &sarama.ConsumerMessage{Offset: 2, Value: []byte("garbage")}
	close(claim.messages)

	handler := &handlerStub{}
	session := &sessionStub{}
	c := &Consumer{topic: "expense-events", handler: handler}

	require.NoError(t, c.ConsumeClaim(session, claim))

	require.Len(t, handler.handled, 1)
	assert.Equal(t, "id-1", handler.handled[0].ID)
	assert.Equal(t, []int64{1, 2}, session.marked)
}

func Test_ConsumeClaim_OnHandlerError_ShouldStillMark(t *testing.T) {
	payload, err := events.Encode(events.Event{Kind: store.Deleted, ID: "id-1", OccurredAt: time.Now()})
	require.NoError(t, err)

	claim := &claimStub{messages: make(chan *sarama.ConsumerMessage, 1)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 7, Value: payload}
	close(claim.messages)

	session := &sessionStub{}
	c := &Consumer{handler: &handlerStub{err: errors.New("boom")}}

	require.NoError(t, c.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{7}, session.marked)
}
