// Package snapshot converts the expense collection to and from its stored form:
// a JSON array of records in collection order.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

const timestampLayout = time.RFC3339Nano

type record struct {
	ID          string      `json:"id"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
}

// Encode serializes the records, keeping their order.
func Encode(records []expense.Record) ([]byte, error) {
	out := make([]record, 0, len(records))
	for _, r := range records {
		wire := record{
			ID:          r.ID,
			Amount:      json.Number(r.Amount.String()),
			Category:    r.Category.String(),
			Description: r.Description,
			Date:        r.Date.String(),
			CreatedAt:   r.CreatedAt.UTC().Format(timestampLayout),
		}
		if r.UpdatedAt != nil {
			wire.UpdatedAt = r.UpdatedAt.UTC().Format(timestampLayout)
		}
		out = append(out, wire)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// Decode parses a snapshot. Anything that would break a record invariant
// is reported as *customerr.CorruptStateError.
func Decode(data []byte) ([]expense.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var wire []record
	if err := dec.Decode(&wire); err != nil {
		return nil, corrupt(errors.Wrap(err, "parse json"))
	}
	if dec.More() {
		return nil, corrupt(errors.New("trailing data after snapshot"))
	}

	records := make([]expense.Record, 0, len(wire))
	seen := make(map[string]struct{}, len(wire))
	for i, w := range wire {
		rec, err := w.toRecord()
		if err != nil {
			return nil, corrupt(errors.Wrapf(err, "record %d", i))
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, corrupt(fmt.Errorf("record %d: duplicate id %q", i, rec.ID))
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}
	return records, nil
}

func (w record) toRecord() (expense.Record, error) {
	if w.ID == "" {
		return expense.Record{}, errors.New("empty id")
	}

	amount, err := decimal.NewFromString(w.Amount.String())
	if err != nil {
		return expense.Record{}, errors.Wrapf(err, "amount %q", w.Amount)
	}
	if !amount.IsPositive() {
		return expense.Record{}, fmt.Errorf("amount %s is not positive", amount)
	}

	category := expense.Category(w.Category)
	if !category.Valid() {
		return expense.Record{}, fmt.Errorf("unknown category %q", w.Category)
	}

	date, err := parseDate(w.Date)
	if err != nil {
		return expense.Record{}, err
	}

	created, err := time.Parse(timestampLayout, w.CreatedAt)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "createdAt")
	}

	rec := expense.Record{
		ID:          w.ID,
		Amount:      amount,
		Category:    category,
		Description: w.Description,
		Date:        date,
		CreatedAt:   created.UTC(),
	}
	if w.UpdatedAt != "" {
		updated, err := time.Parse(timestampLayout, w.UpdatedAt)
		if err != nil {
			return expense.Record{}, errors.Wrap(err, "updatedAt")
		}
		updated = updated.UTC()
		rec.UpdatedAt = &updated
	}
	return rec, nil
}

// parseDate also takes full timestamps, which older snapshots may carry.
func parseDate(s string) (expense.Date, error) {
	if d, err := expense.ParseDate(expense.DateLayout, s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return expense.Date{}, errors.Wrapf(err, "date %q", s)
	}
	return expense.DateOf(t.UTC()), nil
}

func corrupt(err error) error {
	return &customerr.CorruptStateError{Err: err}
}
