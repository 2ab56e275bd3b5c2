package store

import (
	"iter"
	"strings"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

type CategoryTotal struct {
	Total decimal.Decimal
	Count int
}

// Query filters Search results. A zero Query matches every record.
type Query struct {
	// Term is matched case-insensitively against description and category label.
	Term     string
	Category *expense.Category
}

func (s *Store) Get(id expense.ID) (expense.Record, error) {
	current := s.current()
	if i := indexOf(current, id); i >= 0 {
		return clone(current[i]), nil
	}
	return expense.Record{}, &customerr.NotFoundError{ID: id}
}

func (s *Store) Len() int {
	return len(s.current())
}

// List yields the collection newest first, as it was when List was called.
func (s *Store) List() iter.Seq[expense.Record] {
	return filter(s.current(), func(expense.Record) bool { return true })
}

func (s *Store) TotalAmount() decimal.Decimal {
	return Sum(s.List())
}

// ByCategory totals each category that has at least one record.
func (s *Store) ByCategory() map[expense.Category]CategoryTotal {
	totals := make(map[expense.Category]CategoryTotal)
	for r := range s.List() {
		t := totals[r.Category]
		t.Total = t.Total.Add(r.Amount)
		t.Count++
		totals[r.Category] = t
	}
	return totals
}

// ByCurrentMonth yields records dated within the current calendar month
// in the store's time zone.
func (s *Store) ByCurrentMonth() iter.Seq[expense.Record] {
	month := now.With(s.now().In(s.location))
	first := expense.DateOf(month.BeginningOfMonth())
	last := expense.DateOf(month.EndOfMonth())

	return filter(s.current(), func(r expense.Record) bool {
		return !r.Date.Before(first) && !r.Date.After(last)
	})
}

func (s *Store) Search(q Query) iter.Seq[expense.Record] {
	term := strings.ToLower(strings.TrimSpace(q.Term))

	return filter(s.current(), func(r expense.Record) bool {
		if q.Category != nil && r.Category != *q.Category {
			return false
		}
		if term == "" {
			return true
		}
		return strings.Contains(strings.ToLower(r.Description), term) ||
			strings.Contains(strings.ToLower(r.Category.String()), term)
	})
}

// Sum adds up the amounts of a record sequence.
func Sum(records iter.Seq[expense.Record]) decimal.Decimal {
	total := decimal.Zero
	for r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

func filter(records []expense.Record, keep func(expense.Record) bool) iter.Seq[expense.Record] {
	return func(yield func(expense.Record) bool) {
		for _, r := range records {
			if !keep(r) {
				continue
			}
			if !yield(clone(r)) {
				return
			}
		}
	}
}
