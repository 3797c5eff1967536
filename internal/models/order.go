// internal/models/order.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem is denormalized on purpose: an order's contents stay
// immutable even if the catalog item is later renamed or resized.
// VariantID is kept alongside so stock release resolves the exact bucket.
type OrderLineItem struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Name      string          `json:"name"`
	Size      string          `json:"size,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l OrderLineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderLineItems is stored as a JSONB column.
type OrderLineItems []OrderLineItem

func (l OrderLineItems) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *OrderLineItems) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("order line items: unsupported scan source")
	}

	return json.Unmarshal(bytes, l)
}

func (l OrderLineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l {
		total = total.Add(line.Subtotal())
	}
	return total
}

type Order struct {
	BaseModel
	OrderNumber string `json:"order_number" gorm:"size:30;uniqueIndex;not null"`

	BuyerID     uuid.UUID      `json:"buyer_id" gorm:"type:uuid;not null;index"`
	BuyerEmail  string         `json:"buyer_email" gorm:"size:255;not null"`
	Level       EducationLevel `json:"level" gorm:"type:varchar(20);not null"`
	StudentType StudentType    `json:"student_type" gorm:"type:varchar(10);not null"`
	Gender      Gender         `json:"gender" gorm:"type:varchar(10)"`

	Items  OrderLineItems  `json:"items" gorm:"type:jsonb;not null"`
	Total  decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Kind   OrderKind       `json:"kind" gorm:"type:varchar(10);default:'regular';index"`
	Status OrderStatus     `json:"status" gorm:"type:varchar(10);default:'pending';index"`

	// Confirmation clears the auto-void risk; it does not change status.
	Confirmed   bool       `json:"confirmed" gorm:"default:false;index"`
	ConfirmedAt *time.Time `json:"confirmed_at"`

	PaidAt      *time.Time `json:"paid_at"`
	ClaimedAt   *time.Time `json:"claimed_at"`
	VoidedAt    *time.Time `json:"voided_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	Buyer User `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

// IsActive reports whether the order still counts against the buyer's
// eligibility allowance.
func (o *Order) IsActive() bool {
	return o.Status != OrderStatusVoided && o.Status != OrderStatusCancelled
}

// BelongsTo matches the order against a buyer identity by id or email.
func (o *Order) BelongsTo(buyerID uuid.UUID, email string) bool {
	if o.BuyerID == buyerID {
		return true
	}
	return email != "" && o.BuyerEmail == email
}

// StockMovement is an append-only audit row for every ledger mutation.
// Returns are logged separately from purchases.
type StockMovement struct {
	BaseModel
	ItemID    uuid.UUID       `json:"item_id" gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID       `json:"variant_id" gorm:"type:uuid;not null;index"`
	Type      MovementType    `json:"type" gorm:"type:varchar(10);not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2)"`
	OrderID   *uuid.UUID      `json:"order_id,omitempty" gorm:"type:uuid;index"`
	ActorID   *uuid.UUID      `json:"actor_id,omitempty" gorm:"type:uuid"`
}
