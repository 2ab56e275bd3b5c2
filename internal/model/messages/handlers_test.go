package messages

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/store"
)

func newTestHandler(t *testing.T) (*HandlerService, *store.Store) {
	t.Helper()
	s := newStore(t)
	h := newHandler(s, configStub{})
	h.now = func() time.Time { return time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC) }
	return h, s
}

func send(t *testing.T, h *HandlerService, text string) string {
	t.Helper()
	resp, err := h.HandleMessage(context.Background(), text)
	require.NoError(t, err)
	return resp
}

func latestID(t *testing.T, s *store.Store) expense.ID {
	t.Helper()
	for r := range s.List() {
		return r.ID
	}
	t.Fatal("store is empty")
	return ""
}

func Test_OnAddWithoutDate_ShouldUseToday(t *testing.T) {
	h, s := newTestHandler(t)

	send(t, h, "/add 3 FOOD coffee to go")

	rec, err := s.Get(latestID(t, s))
	require.NoError(t, err)
	assert.Equal(t, expense.NewDate(2024, time.March, 15), rec.Date)
	assert.Equal(t, expense.FoodAndDining, rec.Category)
	assert.Equal(t, "coffee to go", rec.Description)
}

func Test_OnInvalidAdd_ShouldListEveryField(t *testing.T) {
	h, s := newTestHandler(t)

	resp := send(t, h, "/add -5 groceries 01.03.2024 Lunch")

	assert.Equal(t, "Please fix:\namount: must be greater than zero\ncategory: unknown category groceries", resp)
	assert.Zero(t, s.Len())
}

func Test_OnMalformedAdd_ShouldExplainUsage(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, incorrectAmountMessage, send(t, h, "/add ten food Lunch"))
	assert.Contains(t, send(t, h, "/add 10 food"), incorrectUsageMessage)
}

func Test_OnEdit_ShouldPatchOneField(t *testing.T) {
	h, s := newTestHandler(t)
	send(t, h, "/add 45.50 food 01.03.2024 Lunch")
	id := latestID(t, s)

	resp := send(t, h, "/edit "+id+" amount 50")
	assert.Contains(t, resp, "Updated\n01.03.2024 50.00 Food & Dining: Lunch")

	send(t, h, "/edit "+id+" description Team lunch")
	send(t, h, "/edit "+id+" date 02.03.2024")
	send(t, h, "/edit "+id+" category health")

	rec, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Team lunch", rec.Description)
	assert.Equal(t, expense.NewDate(2024, time.March, 2), rec.Date)
	assert.Equal(t, expense.Healthcare, rec.Category)
	require.NotNil(t, rec.UpdatedAt)
}

func Test_OnBadEdit_ShouldReplyWithReason(t *testing.T) {
	h, s := newTestHandler(t)
	send(t, h, "/add 45.50 food 01.03.2024 Lunch")
	id := latestID(t, s)

	assert.Equal(t, "No expense with id nope", send(t, h, "/edit nope amount 10"))
	assert.Equal(t, unknownFieldMessage, send(t, h, "/edit "+id+" colour red"))
	assert.Equal(t, incorrectDateMessage, send(t, h, "/edit "+id+" date yesterday"))
	assert.Equal(t, "Please fix:\ndate: must not be in the future", send(t, h, "/edit "+id+" date 01.01.2030"))
}

func Test_OnDelete_ShouldRemoveExpense(t *testing.T) {
	h, s := newTestHandler(t)
	send(t, h, "/add 45.50 food 01.03.2024 Lunch")
	id := latestID(t, s)

	assert.Equal(t, deletedMessage, send(t, h, "/delete "+id))
	assert.Equal(t, "No expense with id "+id, send(t, h, "/delete "+id))
	assert.Equal(t, noExpensesMessage, send(t, h, "/list"))
	assert.Contains(t, send(t, h, "/delete"), incorrectUsageMessage)
}

func Test_OnReport_ShouldSortCategoriesByTotal(t *testing.T) {
	h, _ := newTestHandler(t)
	assert.Equal(t, noExpensesMessage, send(t, h, "/report"))

	send(t, h, "/add 45.50 food 01.03.2024 Lunch")
	send(t, h, "/add 12 transport 02.03.2024 Taxi")
	send(t, h, "/add 8.25 food 03.03.2024 Coffee")

	assert.Equal(t, "Food & Dining: 53.75 (2)\nTransportation: 12.00 (1)\n\nTotal: 65.75", send(t, h, "/report"))
}

func Test_OnList_ShouldLimitNewestFirst(t *testing.T) {
	h, s := newTestHandler(t)
	send(t, h, "/add 1 food 01.03.2024 First")
	send(t, h, "/add 2 food 01.03.2024 Second")
	id := latestID(t, s)

	assert.Equal(t, "01.03.2024 2.00 Food & Dining: Second\nid: "+id, send(t, h, "/list 1"))
	assert.Contains(t, send(t, h, "/list x"), incorrectUsageMessage)
}

func Test_OnFind_ShouldFilterByCategoryAndText(t *testing.T) {
	h, _ := newTestHandler(t)
	send(t, h, "/add 8.25 food 03.03.2024 Coffee beans")
	send(t, h, "/add 3 entertainment 03.03.2024 Coffee with friends")
	send(t, h, "/add 45.50 food 01.03.2024 Lunch")

	resp := send(t, h, "/find food coffee")
	assert.Contains(t, resp, "Coffee beans")
	assert.NotContains(t, resp, "friends")
	assert.Contains(t, resp, "Total: 8.25")

	assert.Contains(t, send(t, h, "/find coffee"), "Total: 11.25")
	assert.Contains(t, send(t, h, "/find food"), "Total: 53.75")
	assert.Equal(t, nothingFoundMessage, send(t, h, "/find rent"))
}

func Test_OnMonth_ShouldShowCurrentMonthOnly(t *testing.T) {
	s := newStore(t)
	h := newHandler(s, configStub{})
	assert.Equal(t, noMonthExpenses, send(t, h, "/month"))

	send(t, h, "/add 10 food Today's lunch")
	send(t, h, "/add 99 travel 01.01.2001 Old trip")

	resp := send(t, h, "/month")
	assert.Contains(t, resp, "Today's lunch")
	assert.NotContains(t, resp, "Old trip")
	assert.Contains(t, resp, "Total: 10.00")
}

func Test_OnCategories_ShouldListSlugs(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := send(t, h, "/categories")
	for _, c := range expense.Categories {
		assert.Contains(t, resp, c.Slug()+": "+c.String())
	}
}

func Test_ParseCommand(t *testing.T) {
	tests := []struct {
		text, cmd, arg string
	}{
		{text: "/list", cmd: "/list"},
		{text: "  /list  5 ", cmd: "/list", arg: "5"},
		{text: "hello there", cmd: "", arg: "hello there"},
	}
	for _, tt := range tests {
		cmd, arg := parseCommand(tt.text)
		assert.Equal(t, tt.cmd, cmd, tt.text)
		assert.Equal(t, tt.arg, arg, tt.text)
	}
}

func Test_Commands_ShouldAllHaveHandlers(t *testing.T) {
	h, _ := newTestHandler(t)
	names := make([]string, 0, len(Commands()))
	for _, c := range Commands() {
		names = append(names, c.Name)
		assert.Contains(t, h.handlersMap, c.Name)
	}
	assert.True(t, slices.Contains(names, addCommand))
}

func Test_OnManyRecords_RepliesShouldFitOneMessage(t *testing.T) {
	s := newStore(t)
	h := newHandler(s, configStub{})
	description := "lunch " + strings.Repeat("x", 94)
	for i := 0; i < 60; i++ {
		send(t, h, "/add 10 food "+description)
	}

	for _, cmd := range []string{"/month", "/find lunch", "/list 60"} {
		resp := send(t, h, cmd)
		assert.LessOrEqual(t, utf8.RuneCountInString(resp), maxMessageRunes, cmd)
		assert.Contains(t, resp, "more", cmd)
	}

	month := send(t, h, "/month")
	assert.Contains(t, month, "...and 50 more")
	assert.Contains(t, month, "Total: 600.00")
	assert.Contains(t, send(t, h, "/find lunch"), "Total: 600.00")
}

func Test_OnAddWithBadDate_ShouldRejectInsteadOfUsingToday(t *testing.T) {
	h, s := newTestHandler(t)

	assert.Equal(t, incorrectDateMessage, send(t, h, "/add 10 food 31.02.2024 dinner"))
	assert.Equal(t, incorrectDateMessage, send(t, h, "/add 10 food 1.13.2024 dinner"))
	assert.Zero(t, s.Len())
}

func Test_OnAddWithShortDate_ShouldParseIt(t *testing.T) {
	h, s := newTestHandler(t)

	send(t, h, "/add 10 food 1.3.2024 dinner for 2.5 people")

	rec, err := s.Get(latestID(t, s))
	require.NoError(t, err)
	assert.Equal(t, expense.NewDate(2024, time.March, 1), rec.Date)
	assert.Equal(t, "dinner for 2.5 people", rec.Description)
}

func Test_FitMessage_ShouldCutToTelegramLimit(t *testing.T) {
	short := "ok"
	assert.Equal(t, short, fitMessage(short))

	long := strings.Repeat("я", maxMessageRunes+10)
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(fitMessage(long)))
}
