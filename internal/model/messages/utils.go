package messages

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/customerr"
	"max.ks1230/expense-tracker/internal/model/store"
)

const commandParts = 2

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", commandParts)

	if len(split) == commandParts {
		return split[0], strings.TrimSpace(split[1])
	}
	if strings.HasPrefix(text, "/") {
		return text, ""
	}
	return "", text
}

func parseAmount(s string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	return amount, err == nil
}

func parseDate(s string) (expense.Date, bool) {
	d, err := expense.ParseDate(dateInputLayout, s)
	return d, err == nil
}

// looksLikeDate reports whether s has the d.m.y shape, valid or not.
func looksLikeDate(s string) bool {
	if strings.Count(s, ".") != 2 {
		return false
	}
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// parseCategory falls back to the raw text so the store reports it as unknown.
func parseCategory(s string) expense.Category {
	if c, ok := expense.ParseCategory(s); ok {
		return c
	}
	return expense.Category(s)
}

// parseCandidate reads "<amount> <category> [date] <description...>".
// A non-empty message means the input could not be parsed.
func (s *HandlerService) parseCandidate(arg string) (expense.Candidate, string) {
	args := strings.Fields(arg)
	if len(args) < 3 {
		return expense.Candidate{}, incorrectUsageMessage + "\n" + commands[0].Usage
	}

	amount, ok := parseAmount(args[0])
	if !ok {
		return expense.Candidate{}, incorrectAmountMessage
	}

	date := expense.DateOf(s.now().In(s.location))
	rest := args[2:]
	if looksLikeDate(rest[0]) {
		d, ok := parseDate(rest[0])
		if !ok {
			return expense.Candidate{}, incorrectDateMessage
		}
		date = d
		rest = rest[1:]
	}

	return expense.Candidate{
		Amount:      amount,
		Category:    parseCategory(args[1]),
		Description: strings.Join(rest, " "),
		Date:        date,
	}, ""
}

// parsePatch reads "<id> <field> <value...>".
func (s *HandlerService) parsePatch(arg string) (expense.ID, expense.Patch, string) {
	args := strings.Fields(arg)
	if len(args) < 2 {
		return "", expense.Patch{}, incorrectUsageMessage + "\n" + commands[1].Usage
	}
	id, field, value := args[0], strings.ToLower(args[1]), strings.Join(args[2:], " ")

	var patch expense.Patch
	switch field {
	case expense.FieldAmount:
		amount, ok := parseAmount(value)
		if !ok {
			return "", patch, incorrectAmountMessage
		}
		patch.Amount = &amount
	case expense.FieldCategory:
		c := parseCategory(value)
		patch.Category = &c
	case expense.FieldDate:
		d, ok := parseDate(value)
		if !ok {
			return "", patch, incorrectDateMessage
		}
		patch.Date = &d
	case expense.FieldDescription:
		patch.Description = &value
	default:
		return "", patch, unknownFieldMessage
	}
	return id, patch, ""
}

func parseLimit(arg string) (int, bool) {
	if arg == "" {
		return defaultListSize, true
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseQuery reads "[category] <text>". A lone category lists the whole category.
func parseQuery(arg string) (store.Query, bool) {
	if arg == "" {
		return store.Query{}, false
	}
	first, rest := parseCommand(arg)
	if first == "" {
		first, rest = rest, ""
	}
	if c, ok := expense.ParseCategory(first); ok {
		return store.Query{Term: rest, Category: &c}, true
	}
	return store.Query{Term: arg}, true
}

// take collects up to limit records; limit 0 means all of them.
func take(seq iter.Seq[expense.Record], limit int) []expense.Record {
	var res []expense.Record
	for r := range seq {
		res = append(res, r)
		if limit > 0 && len(res) == limit {
			break
		}
	}
	return res
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatRecord(r expense.Record) string {
	return fmt.Sprintf("%s %s %s: %s\nid: %s",
		r.Date.Format(dateLayout), formatAmount(r.Amount), r.Category, r.Description, r.ID)
}

// formatRecords renders at most limit records (0 means no limit) and stops
// early once recordsRuneBudget is spent, so the reply always fits one message.
// Omitted records are counted in a trailing line.
func formatRecords(records []expense.Record, limit int) string {
	res := make([]string, 0, len(records)+1)
	used := 0
	for _, r := range records {
		if limit > 0 && len(res) == limit {
			break
		}
		line := formatRecord(r)
		size := utf8.RuneCountInString(line) + 2
		if used+size > recordsRuneBudget {
			break
		}
		res = append(res, line)
		used += size
	}
	if more := len(records) - len(res); more > 0 {
		res = append(res, fmt.Sprintf("...and %d more", more))
	}
	return strings.Join(res, "\n\n")
}

func formatAdded(r expense.Record) string {
	return "Gotcha!\n" + formatRecord(r)
}

func formatUpdated(r expense.Record) string {
	return "Updated\n" + formatRecord(r)
}

func formatTotal(total decimal.Decimal) string {
	return "Total: " + formatAmount(total)
}

func formatReport(byCategory map[expense.Category]store.CategoryTotal, total decimal.Decimal) string {
	type row struct {
		category expense.Category
		store.CategoryTotal
	}
	rows := make([]row, 0, len(byCategory))
	for c, t := range byCategory {
		rows = append(rows, row{category: c, CategoryTotal: t})
	}
	slices.SortFunc(rows, func(a, b row) int {
		if cmp := b.Total.Cmp(a.Total); cmp != 0 {
			return cmp
		}
		return strings.Compare(string(a.category), string(b.category))
	})

	res := make([]string, 0, len(rows)+2)
	for _, r := range rows {
		res = append(res, fmt.Sprintf("%s: %s (%d)", r.category, formatAmount(r.Total), r.Count))
	}
	res = append(res, "", formatTotal(total))
	return strings.Join(res, "\n")
}

func formatMonth(records []expense.Record, now time.Time) string {
	return fmt.Sprintf("%s %d\n\n%s\n\n%s",
		now.Month(), now.Year(), formatRecords(records, defaultListSize), formatTotal(store.Sum(slices.Values(records))))
}

func formatCategories() string {
	res := make([]string, 0, len(expense.Categories))
	for _, c := range expense.Categories {
		res = append(res, fmt.Sprintf("%s: %s", c.Slug(), c))
	}
	return strings.Join(res, "\n")
}

func formatValidation(verr *customerr.ValidationError) string {
	res := make([]string, 0, len(verr.Fields)+1)
	res = append(res, "Please fix:")
	for _, f := range verr.Fields {
		res = append(res, f.String())
	}
	return strings.Join(res, "\n")
}

func helpText() string {
	res := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		res = append(res, fmt.Sprintf("%s: %s", c.Usage, c.Description))
	}
	res = append(res, "", "Amounts accept 12.50 or 12,50. Dates default to today.")
	return strings.Join(res, "\n")
}
