// Package events turns committed store changes into an outbound JSON feed.
package events

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/store"
)

type Record struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// Event describes one committed change. Record is nil for deletions.
type Event struct {
	Kind       store.ChangeKind `json:"kind"`
	ID         expense.ID       `json:"id"`
	Record     *Record          `json:"record,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

func FromChange(change store.Change, occurredAt time.Time) Event {
	ev := Event{
		Kind:       change.Kind,
		ID:         change.Record.ID,
		OccurredAt: occurredAt.UTC(),
	}
	if change.Kind != store.Deleted {
		r := change.Record
		ev.Record = &Record{
			Amount:      r.Amount,
			Category:    r.Category.String(),
			Description: r.Description,
			Date:        r.Date.String(),
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return ev
}

func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Wrap(err, "encode event")
	}
	return data, nil
}

func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, errors.Wrap(err, "decode event")
	}
	switch ev.Kind {
	case store.Created, store.Updated, store.Deleted:
	default:
		return Event{}, errors.Errorf("unknown event kind %q", ev.Kind)
	}
	if ev.ID == "" {
		return Event{}, errors.New("event without id")
	}
	return ev, nil
}
