package snapshot

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

func sampleRecords() []expense.Record {
	updated := time.Date(2024, time.March, 3, 8, 30, 0, 123456789, time.UTC)
	return []expense.Record{
		{
			ID:          "b",
			Amount:      expense.CanonicalAmount(decimal.RequireFromString("12.30")),
			Category:    expense.Travel,
			Description: "Train",
			Date:        expense.NewDate(2024, time.March, 2),
			CreatedAt:   time.Date(2024, time.March, 2, 18, 0, 0, 0, time.UTC),
			UpdatedAt:   &updated,
		},
		{
			ID:          "a",
			Amount:      expense.CanonicalAmount(decimal.RequireFromString("45.50")),
			Category:    expense.FoodAndDining,
			Description: "Lunch",
			Date:        expense.NewDate(2024, time.March, 1),
			CreatedAt:   time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func Test_EncodeDecode_ShouldRoundTripExactly(t *testing.T) {
	records := sampleRecords()

	data, err := Encode(records)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func Test_Encode_ShouldWriteNumbersAndIsoStrings(t *testing.T) {
	data, err := Encode(sampleRecords()[1:])
	require.NoError(t, err)

	assert.JSONEq(t, `[{
		"id": "a",
		"amount": 45.5,
		"category": "Food & Dining",
		"description": "Lunch",
		"date": "2024-03-01",
		"createdAt": "2024-03-01T12:00:00Z"
	}]`, string(data))
}

func Test_Encode_EmptyCollection(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	records, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func Test_Decode_ShouldReadBrowserSnapshots(t *testing.T) {
	raw := `[{"id":"1709290000000","amount":45.5,"category":"Food & Dining","description":"Lunch",
		"date":"2024-03-01","createdAt":"2024-03-01T10:46:40.000Z"},
		{"id":"1709200000000","amount":"7","category":"Other","description":"Tip",
		"date":"2024-02-29","createdAt":"2024-02-29T09:46:40.000Z","updatedAt":"2024-03-01T09:00:00.000Z"}]`

	records, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1709290000000", records[0].ID)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("45.5")))
	assert.Nil(t, records[0].UpdatedAt)
	assert.True(t, records[1].Amount.Equal(decimal.NewFromInt(7)))
	require.NotNil(t, records[1].UpdatedAt)
	assert.Equal(t, time.March, records[1].UpdatedAt.Month())
}

func Test_Decode_ShouldRejectBrokenSnapshots(t *testing.T) {
	cases := map[string]string{
		"not json":         `{{{`,
		"object":           `{"id":"1"}`,
		"trailing data":    `[] []`,
		"empty id":         `[{"id":"","amount":1,"category":"Other","description":"x","date":"2024-03-01","createdAt":"2024-03-01T10:00:00Z"}]`,
		"negative amount":  `[{"id":"1","amount":-1,"category":"Other","description":"x","date":"2024-03-01","createdAt":"2024-03-01T10:00:00Z"}]`,
		"text amount":      `[{"id":"1","amount":"abc","category":"Other","description":"x","date":"2024-03-01","createdAt":"2024-03-01T10:00:00Z"}]`,
		"unknown category": `[{"id":"1","amount":1,"category":"Groceries","description":"x","date":"2024-03-01","createdAt":"2024-03-01T10:00:00Z"}]`,
		"bad date":         `[{"id":"1","amount":1,"category":"Other","description":"x","date":"March","createdAt":"2024-03-01T10:00:00Z"}]`,
		"bad created":      `[{"id":"1","amount":1,"category":"Other","description":"x","date":"2024-03-01","createdAt":"yesterday"}]`,
		"duplicate id": `[{"id":"1","amount":1,"category":"Other","description":"x","date":"2024-03-01","createdAt":"2024-03-01T10:00:00Z"},
			{"id":"1","amount":2,"category":"Other","description":"y","date":"2024-03-01","createdAt":"2024-03-01T10:00:00Z"}]`,
	}
	for name, raw := range cases {
		_, err := Decode([]byte(raw))
		assert.True(t, customerr.IsCorruptStateError(err), name)
	}
}
