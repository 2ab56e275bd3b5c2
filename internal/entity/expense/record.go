package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type ID = string

// Record is a stored expense. ID and CreatedAt are assigned by the store.
type Record struct {
	ID          ID
	Amount      decimal.Decimal
	Category    Category
	Description string
	Date        Date
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Candidate is the caller-supplied part of a new record.
type Candidate struct {
	Amount      decimal.Decimal
	Category    Category
	Description string
	Date        Date
}

// Patch holds the fields to overwrite on update; nil fields stay untouched.
type Patch struct {
	Amount      *decimal.Decimal
	Category    *Category
	Description *string
	Date        *Date
}

func (p Patch) Empty() bool {
	return p.Amount == nil && p.Category == nil && p.Description == nil && p.Date == nil
}

// Apply returns a copy of r with the patch merged in.
func (p Patch) Apply(r Record) Record {
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	return r
}
