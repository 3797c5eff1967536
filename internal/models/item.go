// internal/models/item.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CatalogItem is one orderable uniform item. Every item owns at least one
// Variant; items without size options carry a single variant with an empty
// size label.
type CatalogItem struct {
	BaseModel
	Name     string         `json:"name" gorm:"size:255;not null"`
	NameKey  string         `json:"-" gorm:"size:255;not null;uniqueIndex:idx_items_name_level_gender,priority:1"`
	Category string         `json:"category" gorm:"size:100;index"`
	Level    EducationLevel `json:"level" gorm:"type:varchar(20);not null;uniqueIndex:idx_items_name_level_gender,priority:2;index"`
	Gender   Gender         `json:"gender" gorm:"type:varchar(10);default:'unisex';uniqueIndex:idx_items_name_level_gender,priority:3"`
	Tags     pq.StringArray `json:"tags" gorm:"type:text[]"`

	Variants []Variant `json:"variants,omitempty" gorm:"foreignKey:ItemID"`
}

// Variant is one size bucket of a catalog item with its own stock ledger.
// Invariant: ending inventory = beginning inventory + purchases, and Stock
// never goes negative.
type Variant struct {
	BaseModel
	ItemID  uuid.UUID `json:"item_id" gorm:"type:uuid;not null;uniqueIndex:idx_variants_item_size,priority:1;index"`
	Size    string    `json:"size" gorm:"size:50"`
	SizeKey string    `json:"-" gorm:"size:50;uniqueIndex:idx_variants_item_size,priority:2"`

	Stock              int             `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	Purchases          int             `json:"purchases" gorm:"not null;default:0"`
	BeginningInventory int             `json:"beginning_inventory" gorm:"not null;default:0"`
	BeginningUnitCost  decimal.Decimal `json:"beginning_unit_cost" gorm:"type:decimal(10,2);default:0"`
	Price              decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	ReorderLevel       *int            `json:"reorder_level,omitempty"`

	// Beginning-inventory epoch. BaselineSetAt is stamped when the baseline
	// is established and only moves on an annual or manual roll-forward.
	BaselineSetAt   *time.Time `json:"baseline_set_at"`
	FiscalYearStart *time.Time `json:"fiscal_year_start"`
}

// baselineMaxAge is how long a beginning-inventory baseline stays valid
// before the next ledger operation rolls it forward.
const baselineMaxAge = 365 * 24 * time.Hour

// EndingInventory is the ledger's theoretical total independent of sales.
func (v *Variant) EndingInventory() int {
	return v.BeginningInventory + v.Purchases
}

// InventoryValue costs the baseline quantity at its frozen unit cost and
// incremental purchases at the current price.
func (v *Variant) InventoryValue() decimal.Decimal {
	beginning := decimal.NewFromInt(int64(v.BeginningInventory)).Mul(v.BeginningUnitCost)
	purchased := decimal.NewFromInt(int64(v.Purchases)).Mul(v.Price)
	return beginning.Add(purchased)
}

// BaselineExpired reports whether the beginning-inventory epoch is missing
// or older than a year as of now.
func (v *Variant) BaselineExpired(now time.Time) bool {
	if v.BaselineSetAt == nil {
		return true
	}
	return now.Sub(*v.BaselineSetAt) > baselineMaxAge
}

// ResetBaseline rolls the baseline forward: the current ending inventory
// becomes the new beginning inventory, purchases restart at zero and the
// unit cost is frozen at the current price.
func (v *Variant) ResetBaseline(now time.Time) {
	v.BeginningInventory = v.EndingInventory()
	v.Purchases = 0
	v.BeginningUnitCost = v.Price
	v.BaselineSetAt = &now
	v.FiscalYearStart = &now
}

// BelowReorderLevel reports whether on-hand stock has reached the optional
// reorder threshold.
func (v *Variant) BelowReorderLevel() bool {
	return v.ReorderLevel != nil && v.Stock <= *v.ReorderLevel
}

// IsSingleStock reports whether the item is a legacy single-size item
// (exactly one variant with no size label).
func (i *CatalogItem) IsSingleStock() bool {
	return len(i.Variants) == 1 && i.Variants[0].SizeKey == ""
}

func (i *CatalogItem) TotalStock() int {
	total := 0
	for _, v := range i.Variants {
		total += v.Stock
	}
	return total
}

func (i *CatalogItem) TotalInventoryValue() decimal.Decimal {
	total := decimal.Zero
	for _, v := range i.Variants {
		total = total.Add(v.InventoryValue())
	}
	return total
}
