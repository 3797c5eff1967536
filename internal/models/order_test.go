// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderLineItemsTotal(t *testing.T) {
	items := OrderLineItems{
		{Name: "Polo Shirt", Quantity: 2, UnitPrice: decimal.NewFromInt(350)},
		{Name: "PE Shirt", Quantity: 1, UnitPrice: decimal.NewFromFloat(199.50)},
	}

	assert.True(t, items[0].Subtotal().Equal(decimal.NewFromInt(700)))
	assert.True(t, items.Total().Equal(decimal.NewFromFloat(899.50)))
	assert.True(t, OrderLineItems{}.Total().Equal(decimal.Zero))
}

func TestOrderIsActive(t *testing.T) {
	active := []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusClaimed}
	for _, status := range active {
		o := Order{Status: status}
		assert.True(t, o.IsActive(), "status %s", status)
	}

	inactive := []OrderStatus{OrderStatusCancelled, OrderStatusVoided}
	for _, status := range inactive {
		o := Order{Status: status}
		assert.False(t, o.IsActive(), "status %s", status)
	}
}

func TestOrderBelongsTo(t *testing.T) {
	buyerID := uuid.New()
	o := Order{BuyerID: buyerID, BuyerEmail: "buyer@school.edu"}

	assert.True(t, o.BelongsTo(buyerID, ""))
	assert.True(t, o.BelongsTo(uuid.New(), "buyer@school.edu"))
	assert.False(t, o.BelongsTo(uuid.New(), "other@school.edu"))
	assert.False(t, o.BelongsTo(uuid.New(), ""), "empty email never matches")
}
