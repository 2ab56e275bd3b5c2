package events

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/store"
)

const DefaultBufferSize = 256

type sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

type pending struct {
	event Event
	trace opentracing.SpanContext
}

// Publisher forwards store changes to a broker. Changes are queued in a
// bounded buffer and sent by Run, so a slow or unreachable broker never
// holds up the store. Broker failures are logged and counted.
type Publisher struct {
	sink  sink
	now   func() time.Time
	queue chan pending
}

func NewPublisher(sink sink, bufferSize int) *Publisher {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Publisher{
		sink:  sink,
		now:   time.Now,
		queue: make(chan pending, bufferSize),
	}
}

// OnChange has the signature of store.Listener. It never blocks: when the
// buffer is full the event is dropped.
func (p *Publisher) OnChange(ctx context.Context, change store.Change) {
	item := pending{event: FromChange(change, p.now())}
	if span := opentracing.SpanFromContext(ctx); span != nil {
		item.trace = span.Context()
	}

	select {
	case p.queue <- item:
	default:
		countPublished(item.event.Kind, statusDropped)
		logger.Warn("event buffer is full, dropping change event",
			zap.String("kind", string(item.event.Kind)),
			zap.String("id", item.event.ID))
	}
}

// Run sends queued events in commit order until ctx is done, then sends
// whatever is still buffered.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case item := <-p.queue:
			p.publish(ctx, item)
		case <-ctx.Done():
			p.drain(context.WithoutCancel(ctx))
			return nil
		}
	}
}

func (p *Publisher) drain(ctx context.Context) {
	for {
		select {
		case item := <-p.queue:
			p.publish(ctx, item)
		default:
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, item pending) {
	var opts []opentracing.StartSpanOption
	if item.trace != nil {
		opts = append(opts, opentracing.FollowsFrom(item.trace))
	}
	span := opentracing.StartSpan("events.Publish", opts...)
	defer span.Finish()
	span.SetTag("kind", string(item.event.Kind))
	ctx = opentracing.ContextWithSpan(ctx, span)

	payload, err := Encode(item.event)
	if err == nil {
		err = p.sink.Publish(ctx, item.event.ID, payload)
	}

	if err != nil {
		countPublished(item.event.Kind, statusError)
		ext.Error.Set(span, true)
		logger.Error("failed to publish change event",
			zap.String("kind", string(item.event.Kind)),
			zap.String("id", item.event.ID),
			zap.Error(err))
		return
	}
	countPublished(item.event.Kind, statusOK)
}
