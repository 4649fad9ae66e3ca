package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthKeyText(t *testing.T) {
	key := MonthKey{Year: 2024, Month: time.March}
	assert.Equal(t, "2024-03", key.String())
	assert.Equal(t, "March 2024", key.Label())

	raw, err := json.Marshal(struct {
		Month MonthKey `json:"month"`
	}{key})
	require.NoError(t, err)
	assert.JSONEq(t, `{"month":"2024-03"}`, string(raw))

	var parsed MonthKey
	require.NoError(t, parsed.UnmarshalText([]byte("2023-12")))
	assert.True(t, parsed.Before(key))
	assert.False(t, key.Before(parsed))

	assert.Error(t, parsed.UnmarshalText([]byte("March 2024")))
}

func TestSaleItemUnitCostDefaultsToZero(t *testing.T) {
	item := SaleItem{Price: decimal.NewFromInt(1000), Quantity: decimal.NewFromInt(2)}
	assert.True(t, item.UnitCost().IsZero())
	assert.True(t, item.Profit().Equal(decimal.NewFromInt(2000)))

	item.CostPrice = decimal.NewNullDecimal(decimal.NewFromInt(600))
	assert.True(t, item.Profit().Equal(decimal.NewFromInt(800)))
}

func TestStateCloneIsDeep(t *testing.T) {
	state := NewState()
	state.PurchaseInvoices = []PurchaseInvoice{{ID: "inv-1", Items: []PurchaseItem{{Name: "Flour"}}}}
	state.History = []ArchivedDay{{ID: "day-1", Items: []SaleItem{{Name: "Bread"}}}}

	clone := state.Clone()
	clone.PurchaseInvoices[0].Items[0].Name = "Sugar"
	clone.History[0].Items[0].Name = "Cake"

	assert.Equal(t, "Flour", state.PurchaseInvoices[0].Items[0].Name)
	assert.Equal(t, "Bread", state.History[0].Items[0].Name)
}

func TestNormalizeFillsCollections(t *testing.T) {
	var state State
	state.Normalize()
	assert.Equal(t, StateVersion, state.Version)
	assert.NotNil(t, state.Sales)
	assert.NotNil(t, state.History)
}
