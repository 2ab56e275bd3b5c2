package expense

import (
	"strings"
)

type Category string

const (
	FoodAndDining     Category = "Food & Dining"
	Transportation    Category = "Transportation"
	Shopping          Category = "Shopping"
	Entertainment     Category = "Entertainment"
	BillsAndUtilities Category = "Bills & Utilities"
	Healthcare        Category = "Healthcare"
	Education         Category = "Education"
	Travel            Category = "Travel"
	Other             Category = "Other"
)

// Categories is the fixed category set in display order.
var Categories = []Category{
	FoodAndDining,
	Transportation,
	Shopping,
	Entertainment,
	BillsAndUtilities,
	Healthcare,
	Education,
	Travel,
	Other,
}

var slugs = map[Category]string{
	FoodAndDining:     "food",
	Transportation:    "transport",
	Shopping:          "shopping",
	Entertainment:     "entertainment",
	BillsAndUtilities: "bills",
	Healthcare:        "health",
	Education:         "education",
	Travel:            "travel",
	Other:             "other",
}

func (c Category) String() string {
	return string(c)
}

// Slug is the short single-word name used in chat commands.
func (c Category) Slug() string {
	return slugs[c]
}

func (c Category) Valid() bool {
	_, ok := slugs[c]
	return ok
}

// ParseCategory accepts a label or a slug, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, slugs[c]) {
			return c, true
		}
	}
	return "", false
}
