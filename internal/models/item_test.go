// internal/models/item_test.go
package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEndingInventory(t *testing.T) {
	v := Variant{BeginningInventory: 50, Purchases: 20, Stock: 12}

	// Ending inventory counts the ledger, not on-hand stock.
	assert.Equal(t, 70, v.EndingInventory())

	v.Stock = 0
	assert.Equal(t, 70, v.EndingInventory())
}

func TestInventoryValue(t *testing.T) {
	v := Variant{
		BeginningInventory: 10,
		BeginningUnitCost:  decimal.NewFromInt(200),
		Purchases:          5,
		Price:              decimal.NewFromInt(250),
	}

	// 10 x 200 at the frozen cost + 5 x 250 at the current price.
	assert.True(t, v.InventoryValue().Equal(decimal.NewFromInt(3250)))
}

func TestBaselineExpired(t *testing.T) {
	now := time.Now()

	v := Variant{}
	assert.True(t, v.BaselineExpired(now), "missing baseline counts as expired")

	recent := now.Add(-30 * 24 * time.Hour)
	v.BaselineSetAt = &recent
	assert.False(t, v.BaselineExpired(now))

	old := now.Add(-366 * 24 * time.Hour)
	v.BaselineSetAt = &old
	assert.True(t, v.BaselineExpired(now))

	exactly := now.Add(-365 * 24 * time.Hour)
	v.BaselineSetAt = &exactly
	assert.False(t, v.BaselineExpired(now), "expiry is strictly past one year")
}

func TestResetBaseline(t *testing.T) {
	now := time.Now()
	v := Variant{
		BeginningInventory: 50,
		Purchases:          20,
		BeginningUnitCost:  decimal.NewFromInt(200),
		Price:              decimal.NewFromInt(250),
		Stock:              33,
	}

	v.ResetBaseline(now)

	assert.Equal(t, 70, v.BeginningInventory, "ending inventory becomes the new beginning")
	assert.Equal(t, 0, v.Purchases)
	assert.True(t, v.BeginningUnitCost.Equal(decimal.NewFromInt(250)), "unit cost frozen at current price")
	assert.Equal(t, 33, v.Stock, "on-hand stock is untouched")
	assert.Equal(t, now, *v.BaselineSetAt)

	// Roll-forward is idempotent on an already-reset ledger.
	v.ResetBaseline(now)
	assert.Equal(t, 70, v.BeginningInventory)
	assert.Equal(t, 0, v.Purchases)
}

func TestBelowReorderLevel(t *testing.T) {
	v := Variant{Stock: 5}
	assert.False(t, v.BelowReorderLevel(), "no threshold configured")

	threshold := 5
	v.ReorderLevel = &threshold
	assert.True(t, v.BelowReorderLevel())

	v.Stock = 6
	assert.False(t, v.BelowReorderLevel())
}

func TestItemAggregates(t *testing.T) {
	item := CatalogItem{
		Variants: []Variant{
			{Size: "Small", SizeKey: "small", Stock: 3, BeginningInventory: 3, BeginningUnitCost: decimal.NewFromInt(100)},
			{Size: "Medium", SizeKey: "medium", Stock: 7, Purchases: 2, Price: decimal.NewFromInt(150)},
		},
	}

	assert.Equal(t, 10, item.TotalStock())
	assert.True(t, item.TotalInventoryValue().Equal(decimal.NewFromInt(600)))
	assert.False(t, item.IsSingleStock())

	single := CatalogItem{Variants: []Variant{{Size: "", SizeKey: ""}}}
	assert.True(t, single.IsSingleStock())
}
