package messages

import (
	"context"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/customerr"
	"max.ks1230/expense-tracker/internal/model/store"
)

const (
	dateLayout = "02.01.2006"
	// accepts 1.3.2024 as well as 01.03.2024
	dateInputLayout = "2.1.2006"
)

const defaultListSize = 10

const (
	// Telegram rejects longer messages.
	maxMessageRunes = 4096
	// leaves room for headers, totals and the error prefix
	recordsRuneBudget = 3500
)

const (
	dontUnderstandMessage = "I don't understand you :( Try /help"
	helloMessage          = "Hello! I keep track of your expenses 🤖"
	loveToTalkMessage     = "I would love to talk about it more! Try /help"
	noExpensesMessage     = "You have no expenses yet"
	noMonthExpenses       = "No expenses this month"
	nothingFoundMessage   = "Nothing found"
	deletedMessage        = "Deleted"

	incorrectUsageMessage  = "That is an incorrect command usage"
	incorrectAmountMessage = "amount: must be a number like 12.50"
	incorrectDateMessage   = "date: should be dd.mm.yyyy"
	unknownFieldMessage    = "You can edit amount, category, date or description"
	notSavedMessage        = "The change is applied but could not be saved. It may be lost on restart"
)

const (
	startCommand      = "/start"
	helpCommand       = "/help"
	categoriesCommand = "/categories"
	addCommand        = "/add"
	editCommand       = "/edit"
	deleteCommand     = "/delete"
	listCommand       = "/list"
	reportCommand     = "/report"
	monthCommand      = "/month"
	findCommand       = "/find"
)

// Command is a bot command with its usage line.
type Command struct {
	Name        string
	Usage       string
	Description string
}

var commands = []Command{
	{Name: addCommand, Usage: "/add <amount> <category> [dd.mm.yyyy] <description>", Description: "record an expense"},
	{Name: editCommand, Usage: "/edit <id> <amount|category|date|description> <value>", Description: "change one field of an expense"},
	{Name: deleteCommand, Usage: "/delete <id>", Description: "remove an expense"},
	{Name: listCommand, Usage: "/list [n]", Description: "latest expenses, newest first"},
	{Name: reportCommand, Usage: "/report", Description: "totals per category"},
	{Name: monthCommand, Usage: "/month", Description: "expenses of the current month"},
	{Name: findCommand, Usage: "/find [category] <text>", Description: "search expenses"},
	{Name: categoriesCommand, Usage: "/categories", Description: "list categories"},
	{Name: helpCommand, Usage: "/help", Description: "show this message"},
}

func Commands() []Command {
	return commands
}

type expenseStore interface {
	Add(ctx context.Context, candidate expense.Candidate) (expense.Record, error)
	Update(ctx context.Context, id expense.ID, patch expense.Patch) (expense.Record, error)
	Delete(ctx context.Context, id expense.ID) error
	List() iter.Seq[expense.Record]
	TotalAmount() decimal.Decimal
	ByCategory() map[expense.Category]store.CategoryTotal
	ByCurrentMonth() iter.Seq[expense.Record]
	Search(q store.Query) iter.Seq[expense.Record]
}

type config interface {
	Location() *time.Location
}

type handler func(ctx context.Context, arg string) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	store       expenseStore
	location    *time.Location
	now         func() time.Time
}

func newHandler(store expenseStore, config config) *HandlerService {
	loc := config.Location()
	if loc == nil {
		loc = time.UTC
	}
	res := &HandlerService{
		store:    store,
		location: loc,
		now:      time.Now,
	}
	res.handlersMap = newMap(res)
	return res
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[helpCommand] = s.handleHelp
	m[categoriesCommand] = s.handleCategories
	m[addCommand] = s.handleAdd
	m[editCommand] = s.handleEdit
	m[deleteCommand] = s.handleDelete
	m[listCommand] = s.handleList
	m[reportCommand] = s.handleReport
	m[monthCommand] = s.handleMonth
	m[findCommand] = s.handleFind

	m[""] = s.handleNoCommand

	return m
}

func (s *HandlerService) HandleMessage(ctx context.Context, text string) (string, error) {
	cmd, arg := parseCommand(text)

	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(ctx, arg)
	}
	return dontUnderstandMessage, nil
}

func (s *HandlerService) handleStart(_ context.Context, _ string) (string, error) {
	return helloMessage + "\n\n" + helpText(), nil
}

func (s *HandlerService) handleHelp(_ context.Context, _ string) (string, error) {
	return helpText(), nil
}

func (s *HandlerService) handleCategories(_ context.Context, _ string) (string, error) {
	return formatCategories(), nil
}

func (s *HandlerService) handleNoCommand(_ context.Context, _ string) (string, error) {
	return loveToTalkMessage, nil
}

func (s *HandlerService) handleAdd(ctx context.Context, arg string) (string, error) {
	candidate, errMsg := s.parseCandidate(arg)
	if errMsg != "" {
		return errMsg, nil
	}

	rec, err := s.store.Add(ctx, candidate)
	return s.mutationReply(formatAdded(rec), err, "handle add")
}

func (s *HandlerService) handleEdit(ctx context.Context, arg string) (string, error) {
	id, patch, errMsg := s.parsePatch(arg)
	if errMsg != "" {
		return errMsg, nil
	}

	rec, err := s.store.Update(ctx, id, patch)
	return s.mutationReply(formatUpdated(rec), err, "handle edit")
}

func (s *HandlerService) handleDelete(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 1 {
		return incorrectUsageMessage + "\n" + deleteCommand + " <id>", nil
	}

	err := s.store.Delete(ctx, args[0])
	return s.mutationReply(deletedMessage, err, "handle delete")
}

func (s *HandlerService) handleList(_ context.Context, arg string) (string, error) {
	limit, ok := parseLimit(arg)
	if !ok {
		return incorrectUsageMessage + "\n" + listCommand + " [n]", nil
	}

	records := take(s.store.List(), limit)
	if len(records) == 0 {
		return noExpensesMessage, nil
	}
	return formatRecords(records, 0), nil
}

func (s *HandlerService) handleReport(_ context.Context, _ string) (string, error) {
	byCategory := s.store.ByCategory()
	if len(byCategory) == 0 {
		return noExpensesMessage, nil
	}
	return formatReport(byCategory, s.store.TotalAmount()), nil
}

func (s *HandlerService) handleMonth(_ context.Context, _ string) (string, error) {
	records := take(s.store.ByCurrentMonth(), 0)
	if len(records) == 0 {
		return noMonthExpenses, nil
	}
	return formatMonth(records, s.now().In(s.location)), nil
}

func (s *HandlerService) handleFind(_ context.Context, arg string) (string, error) {
	q, ok := parseQuery(arg)
	if !ok {
		return incorrectUsageMessage + "\n" + findCommand + " [category] <text>", nil
	}

	records := take(s.store.Search(q), 0)
	if len(records) == 0 {
		return nothingFoundMessage, nil
	}
	return formatRecords(records, defaultListSize) + "\n\n" + formatTotal(store.Sum(slices.Values(records))), nil
}

// mutationReply turns store errors the user can fix into a reply. Anything
// else is returned to the caller.
func (s *HandlerService) mutationReply(okReply string, err error, op string) (string, error) {
	var (
		verr *customerr.ValidationError
		nerr *customerr.NotFoundError
		perr *customerr.PersistenceError
	)
	switch {
	case err == nil:
		return okReply, nil
	case errors.As(err, &verr):
		return formatValidation(verr), nil
	case errors.As(err, &nerr):
		return "No expense with id " + nerr.ID, nil
	case errors.As(err, &perr):
		return okReply + "\n\n" + notSavedMessage, errors.Wrap(err, op)
	default:
		return "", errors.Wrap(err, op)
	}
}
