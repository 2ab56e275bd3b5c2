package expense

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

const (
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldDate        = "date"
)

const MaxDescriptionLength = 100

// Rules validates record fields. Today is the latest accepted date unless AllowFuture is set.
type Rules struct {
	Today       Date
	AllowFuture bool
}

// Candidate checks every field of c and returns it normalized.
func (r Rules) Candidate(c Candidate) (Candidate, error) {
	verr := &customerr.ValidationError{}
	r.checkAmount(verr, c.Amount)
	c.Amount = CanonicalAmount(c.Amount)
	r.checkCategory(verr, c.Category)
	c.Description = r.checkDescription(verr, c.Description)
	r.checkDate(verr, c.Date)
	return c, verr.OrNil()
}

// Patch checks only the supplied fields of p and returns it normalized.
func (r Rules) Patch(p Patch) (Patch, error) {
	verr := &customerr.ValidationError{}
	if p.Amount != nil {
		r.checkAmount(verr, *p.Amount)
		amount := CanonicalAmount(*p.Amount)
		p.Amount = &amount
	}
	if p.Category != nil {
		r.checkCategory(verr, *p.Category)
	}
	if p.Description != nil {
		desc := r.checkDescription(verr, *p.Description)
		p.Description = &desc
	}
	if p.Date != nil {
		r.checkDate(verr, *p.Date)
	}
	return p, verr.OrNil()
}

func (r Rules) checkAmount(verr *customerr.ValidationError, amount decimal.Decimal) {
	if !amount.IsPositive() {
		verr.Add(FieldAmount, "must be greater than zero")
	}
}

func (r Rules) checkCategory(verr *customerr.ValidationError, c Category) {
	if !c.Valid() {
		verr.Add(FieldCategory, "unknown category "+strings.TrimSpace(string(c)))
	}
}

func (r Rules) checkDescription(verr *customerr.ValidationError, desc string) string {
	desc = strings.TrimSpace(desc)
	switch {
	case desc == "":
		verr.Add(FieldDescription, "must not be empty")
	case utf8.RuneCountInString(desc) > MaxDescriptionLength:
		verr.Add(FieldDescription, fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
	return desc
}

func (r Rules) checkDate(verr *customerr.ValidationError, d Date) {
	switch {
	case d.IsZero():
		verr.Add(FieldDate, "is required")
	case !r.AllowFuture && d.After(r.Today):
		verr.Add(FieldDate, "must not be in the future")
	}
}

// CanonicalAmount drops trailing fractional zeros so that an amount compares
// equal to itself after a trip through its decimal text form.
func CanonicalAmount(d decimal.Decimal) decimal.Decimal {
	canonical, err := decimal.NewFromString(d.String())
	if err != nil {
		return d
	}
	return canonical
}
