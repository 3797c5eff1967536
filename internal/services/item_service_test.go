// internal/services/item_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewVariantInitializesLedger(t *testing.T) {
	now := time.Now()
	itemID := uuid.New()

	req := &CreateItemRequest{
		Name:  "Polo Shirt",
		Level: "elementary",
		Size:  " Small (S) ",
		Stock: 40,
		Price: decimal.NewFromInt(350),
	}

	v := newVariant(itemID, req, now)

	assert.Equal(t, itemID, v.ItemID)
	assert.Equal(t, "Small (S)", v.Size)
	assert.Equal(t, "small", v.SizeKey)
	assert.Equal(t, 40, v.Stock)
	assert.Equal(t, 40, v.BeginningInventory, "initial stock is the baseline")
	assert.Equal(t, 0, v.Purchases)
	assert.True(t, v.BeginningUnitCost.Equal(decimal.NewFromInt(350)), "cost defaults to price")
	assert.Equal(t, now, *v.BaselineSetAt)
	assert.Equal(t, 40, v.EndingInventory())
}

func TestNewVariantExplicitUnitCost(t *testing.T) {
	cost := decimal.NewFromInt(280)
	req := &CreateItemRequest{
		Name:     "Polo Shirt",
		Level:    "elementary",
		Stock:    10,
		Price:    decimal.NewFromInt(350),
		UnitCost: &cost,
	}

	v := newVariant(uuid.New(), req, time.Now())
	assert.True(t, v.BeginningUnitCost.Equal(cost))
	assert.True(t, v.Price.Equal(decimal.NewFromInt(350)))
}
