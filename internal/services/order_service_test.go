// internal/services/order_service_test.go
package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/javajoker/uniform-backend/internal/models"
	"github.com/javajoker/uniform-backend/internal/utils"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to models.OrderStatus }{
		{models.OrderStatusPending, models.OrderStatusPaid},
		{models.OrderStatusPending, models.OrderStatusClaimed},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusPending, models.OrderStatusVoided},
		{models.OrderStatusPaid, models.OrderStatusClaimed},
		{models.OrderStatusPaid, models.OrderStatusCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, canTransition(tt.from, tt.to), "%s to %s", tt.from, tt.to)
	}

	denied := []struct{ from, to models.OrderStatus }{
		{models.OrderStatusPaid, models.OrderStatusVoided},
		{models.OrderStatusPaid, models.OrderStatusPending},
		{models.OrderStatusClaimed, models.OrderStatusCancelled},
		{models.OrderStatusClaimed, models.OrderStatusPending},
		{models.OrderStatusCancelled, models.OrderStatusPaid},
		{models.OrderStatusVoided, models.OrderStatusPending},
		{models.OrderStatusVoided, models.OrderStatusPaid},
	}
	for _, tt := range denied {
		assert.False(t, canTransition(tt.from, tt.to), "%s to %s", tt.from, tt.to)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	terminal := []models.OrderStatus{
		models.OrderStatusClaimed,
		models.OrderStatusCancelled,
		models.OrderStatusVoided,
	}
	all := []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusPaid,
		models.OrderStatusClaimed,
		models.OrderStatusCancelled,
		models.OrderStatusVoided,
	}
	for _, from := range terminal {
		for _, to := range all {
			assert.False(t, canTransition(from, to), "%s to %s", from, to)
		}
	}
}

func TestReleasesStock(t *testing.T) {
	assert.True(t, releasesStock(models.OrderStatusCancelled))
	assert.True(t, releasesStock(models.OrderStatusVoided))
	assert.False(t, releasesStock(models.OrderStatusPaid))
	assert.False(t, releasesStock(models.OrderStatusClaimed))
}

func TestVoidableRequiresUnconfirmedPending(t *testing.T) {
	// The sweep may only void orders the buyer has not confirmed; the
	// same predicate backs the confirmed = false row guard on the void
	// update, so a confirmation landing mid-sweep wins the race.
	assert.True(t, voidable(&models.Order{Status: models.OrderStatusPending}))
	assert.False(t, voidable(&models.Order{Status: models.OrderStatusPending, Confirmed: true}))
	assert.False(t, voidable(&models.Order{Status: models.OrderStatusPaid}))
	assert.False(t, voidable(&models.Order{Status: models.OrderStatusVoided}))
}

func TestIsConfirmable(t *testing.T) {
	assert.True(t, isConfirmable(models.OrderStatusPending))
	assert.True(t, isConfirmable(models.OrderStatusPaid))

	// Once terminal, confirming must fail rather than report stale success.
	assert.False(t, isConfirmable(models.OrderStatusClaimed))
	assert.False(t, isConfirmable(models.OrderStatusCancelled))
	assert.False(t, isConfirmable(models.OrderStatusVoided))
}

func TestAuthorizeTransition(t *testing.T) {
	buyerID := uuid.New()
	order := &models.Order{
		OrderNumber: "ORD-20260828-ABCDEF01",
		BuyerID:     buyerID,
		BuyerEmail:  "buyer@school.edu",
		Status:      models.OrderStatusPending,
	}

	staff := Identity{UserID: uuid.New(), Staff: true}
	owner := Identity{UserID: buyerID, Email: "buyer@school.edu"}
	stranger := Identity{UserID: uuid.New(), Email: "other@school.edu"}

	// Staff may perform any transition.
	assert.NoError(t, authorizeTransition(staff, order, models.OrderStatusPaid))
	assert.NoError(t, authorizeTransition(staff, order, models.OrderStatusVoided))

	// The buyer may cancel their own order and nothing else.
	assert.NoError(t, authorizeTransition(owner, order, models.OrderStatusCancelled))
	err := authorizeTransition(owner, order, models.OrderStatusPaid)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	// Another buyer may not touch the order at all.
	err = authorizeTransition(stranger, order, models.OrderStatusCancelled)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestAuthorizeTransitionMatchesByEmail(t *testing.T) {
	order := &models.Order{
		BuyerID:    uuid.New(),
		BuyerEmail: "buyer@school.edu",
	}
	// Identity resolved from a different account but the same email.
	actor := Identity{UserID: uuid.New(), Email: "buyer@school.edu"}
	assert.NoError(t, authorizeTransition(actor, order, models.OrderStatusCancelled))
}

func TestCommittedQuantities(t *testing.T) {
	price := decimal.NewFromInt(350)
	orders := []models.Order{
		{
			Status: models.OrderStatusPending,
			Items: models.OrderLineItems{
				{Name: "Polo Shirt", Quantity: 2, UnitPrice: price},
				{Name: "PE Shirt", Quantity: 1, UnitPrice: price},
			},
		},
		{
			Status: models.OrderStatusPaid,
			Items: models.OrderLineItems{
				// Different spelling of the same canonical item.
				{Name: "Polo w/ Logo", Quantity: 1, UnitPrice: price},
			},
		},
		{
			// Cancelled orders release their allowance.
			Status: models.OrderStatusCancelled,
			Items: models.OrderLineItems{
				{Name: "Polo Shirt", Quantity: 3, UnitPrice: price},
			},
		},
		{
			// Voided orders too.
			Status: models.OrderStatusVoided,
			Items: models.OrderLineItems{
				{Name: "PE Shirt", Quantity: 2, UnitPrice: price},
			},
		},
	}

	committed := committedQuantities(orders)
	assert.Equal(t, 3, committed[utils.ItemKey("polo_shirt")])
	assert.Equal(t, 1, committed[utils.ItemKey("pe_shirt")])
}

func TestGenerateOrderNumber(t *testing.T) {
	n := generateOrderNumber()
	assert.True(t, strings.HasPrefix(n, "ORD-"))
	parts := strings.Split(n, "-")
	assert.Len(t, parts, 3)
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], 8)

	// Suffixes are random; two numbers generated back to back must differ.
	assert.NotEqual(t, n, generateOrderNumber())
}
