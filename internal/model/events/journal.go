package events

import (
	"context"

	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

// Journal is the consumer side of the feed: it writes every event to the log.
type Journal struct{}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) HandleEvent(_ context.Context, ev Event) error {
	fields := []zap.Field{
		zap.String("kind", string(ev.Kind)),
		zap.String("id", ev.ID),
		zap.Time("occurredAt", ev.OccurredAt),
	}
	if ev.Record != nil {
		fields = append(fields,
			zap.String("amount", ev.Record.Amount.String()),
			zap.String("category", ev.Record.Category),
			zap.String("date", ev.Record.Date),
			zap.String("description", ev.Record.Description),
		)
	}
	logger.Info("expense changed", fields...)
	countConsumed(ev.Kind)
	return nil
}
