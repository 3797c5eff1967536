// internal/services/inventory_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/uniform-backend/internal/events"
	"github.com/javajoker/uniform-backend/internal/models"
	"github.com/javajoker/uniform-backend/internal/utils"
)

// InventoryService owns the variant stock ledger. All stock counters move
// through here; beginning inventory is only ever written by the epoch
// roll-forward and by item creation.
type InventoryService struct {
	db  *gorm.DB
	bus *events.Bus
}

type StockRequest struct {
	Size      string           `json:"size,omitempty"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

func NewInventoryService(db *gorm.DB, bus *events.Bus) *InventoryService {
	return &InventoryService{
		db:  db,
		bus: bus,
	}
}

// AddStock increments on-hand stock and the purchases counter of the
// targeted variant. The beginning-inventory baseline is never touched
// here; an expired baseline is rolled forward first.
func (s *InventoryService) AddStock(itemID uuid.UUID, req *StockRequest, actorID *uuid.UUID) (*models.CatalogItem, error) {
	return s.applyStock(itemID, req, models.MovementPurchase, actorID)
}

// RecordReturn increments on-hand stock only; returned units are not
// purchases and are logged under their own movement type for audit.
func (s *InventoryService) RecordReturn(itemID uuid.UUID, req *StockRequest, actorID *uuid.UUID) (*models.CatalogItem, error) {
	return s.applyStock(itemID, req, models.MovementReturn, actorID)
}

func (s *InventoryService) applyStock(itemID uuid.UUID, req *StockRequest, movement models.MovementType, actorID *uuid.UUID) (*models.CatalogItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var item models.CatalogItem
	var target *models.Variant

	err := s.db.Transaction(func(tx *gorm.DB) error {
		variants, err := s.lockItem(tx, itemID, &item)
		if err != nil {
			return err
		}

		target = matchVariant(variants, req.Size)
		if target == nil {
			return fmt.Errorf("%w: item %q has no size %q", ErrVariantNotFound, item.Name, req.Size)
		}

		now := time.Now()
		if target.BaselineExpired(now) {
			target.ResetBaseline(now)
		}

		target.Stock += req.Quantity
		if movement == models.MovementPurchase {
			target.Purchases += req.Quantity
			if req.UnitPrice != nil {
				target.Price = *req.UnitPrice
			}
		}

		if err := tx.Save(target).Error; err != nil {
			return classifyStorageErr(err)
		}

		return s.recordMovement(tx, &item, target, movement, req.Quantity, nil, actorID)
	})

	if err != nil {
		return nil, err
	}

	item.Variants = s.reloadVariants(item.ID)
	s.publish(events.StockChanged{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Level:     item.Level,
		Size:      target.Size,
		Stock:     target.Stock,
		Movement:  movement,
		Restocked: true,
	})

	return &item, nil
}

// ResetBeginningInventory rolls every variant's baseline forward on
// operator request, independent of the annual expiry.
func (s *InventoryService) ResetBeginningInventory(itemID uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		variants, err := s.lockItem(tx, itemID, &item)
		if err != nil {
			return err
		}

		now := time.Now()
		for i := range variants {
			variants[i].ResetBaseline(now)
			if err := tx.Save(&variants[i]).Error; err != nil {
				return classifyStorageErr(err)
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	item.Variants = s.reloadVariants(item.ID)
	return &item, nil
}

// ReserveLineTx conditionally decrements a variant's stock inside the
// caller's transaction. Two orders racing for the last unit get exactly
// one success; the loser sees ErrInsufficientStock and the caller's
// rollback undoes any earlier lines.
func (s *InventoryService) ReserveLineTx(tx *gorm.DB, line models.OrderLineItem, orderID uuid.UUID) error {
	res := tx.Model(&models.Variant{}).
		Where("id = ? AND stock >= ?", line.VariantID, line.Quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
	if res.Error != nil {
		return classifyStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %s", ErrInsufficientStock, line.Name, line.Size)
	}

	movement := &models.StockMovement{
		VariantID: line.VariantID,
		Type:      models.MovementSale,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		OrderID:   &orderID,
	}
	if v, err := s.variantByID(tx, line.VariantID); err == nil {
		movement.ItemID = v.ItemID
	}
	if err := tx.Create(movement).Error; err != nil {
		return classifyStorageErr(err)
	}
	return nil
}

// ReleaseLineTx returns a reserved line's quantity to its variant, used by
// cancellation and the auto-void sweep.
func (s *InventoryService) ReleaseLineTx(tx *gorm.DB, line models.OrderLineItem, orderID uuid.UUID) error {
	res := tx.Model(&models.Variant{}).
		Where("id = ?", line.VariantID).
		UpdateColumn("stock", gorm.Expr("stock + ?", line.Quantity))
	if res.Error != nil {
		return classifyStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: variant %s for %s", ErrVariantNotFound, line.VariantID, line.Name)
	}

	movement := &models.StockMovement{
		VariantID: line.VariantID,
		Type:      models.MovementRelease,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		OrderID:   &orderID,
	}
	if v, err := s.variantByID(tx, line.VariantID); err == nil {
		movement.ItemID = v.ItemID
	}
	if err := tx.Create(movement).Error; err != nil {
		return classifyStorageErr(err)
	}
	return nil
}

// CheckLowStockTx publishes a low-stock event when the variant has reached
// its reorder threshold. Called after a reservation commits.
func (s *InventoryService) CheckLowStock(variantID uuid.UUID) {
	var v models.Variant
	if err := s.db.First(&v, "id = ?", variantID).Error; err != nil {
		return
	}
	if !v.BelowReorderLevel() {
		return
	}

	var item models.CatalogItem
	if err := s.db.First(&item, "id = ?", v.ItemID).Error; err != nil {
		return
	}

	s.publish(events.LowStock{
		ItemID:       item.ID,
		ItemName:     item.Name,
		Level:        item.Level,
		Size:         v.Size,
		Stock:        v.Stock,
		ReorderLevel: *v.ReorderLevel,
	})
}

// GetMovements lists the audit trail for an item, newest first.
func (s *InventoryService) GetMovements(itemID uuid.UUID, params utils.PaginationParams) ([]models.StockMovement, int64, error) {
	query := s.db.Model(&models.StockMovement{}).Where("item_id = ?", itemID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, classifyStorageErr(err)
	}

	var movements []models.StockMovement
	query = utils.ApplySort(query, params, []string{"created_at", "type", "quantity"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&movements).Error; err != nil {
		return nil, 0, classifyStorageErr(err)
	}

	return movements, total, nil
}

// lockItem loads the item and row-locks its variants so concurrent
// mutations to the same variant serialize.
func (s *InventoryService) lockItem(tx *gorm.DB, itemID uuid.UUID, item *models.CatalogItem) ([]models.Variant, error) {
	if err := tx.First(item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
		}
		return nil, classifyStorageErr(err)
	}

	var variants []models.Variant
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ?", itemID).
		Order("size_key").
		Find(&variants).Error; err != nil {
		return nil, classifyStorageErr(err)
	}
	return variants, nil
}

// reloadVariants refreshes the item's variant list after a committed
// mutation. The mutation already succeeded, so a failed reload is logged
// and surfaced as a partial read rather than a spurious mutation error.
func (s *InventoryService) reloadVariants(itemID uuid.UUID) []models.Variant {
	var variants []models.Variant
	if err := s.db.Where("item_id = ?", itemID).Order("size_key").Find(&variants).Error; err != nil {
		logrus.WithError(err).WithField("item_id", itemID).Warn("Failed to reload variants after stock mutation")
	}
	return variants
}

func (s *InventoryService) variantByID(tx *gorm.DB, id uuid.UUID) (*models.Variant, error) {
	var v models.Variant
	if err := tx.First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *InventoryService) recordMovement(tx *gorm.DB, item *models.CatalogItem, v *models.Variant, movement models.MovementType, qty int, orderID, actorID *uuid.UUID) error {
	m := &models.StockMovement{
		ItemID:    item.ID,
		VariantID: v.ID,
		Type:      movement,
		Quantity:  qty,
		UnitPrice: v.Price,
		OrderID:   orderID,
		ActorID:   actorID,
	}
	if err := tx.Create(m).Error; err != nil {
		return classifyStorageErr(err)
	}
	return nil
}

func (s *InventoryService) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// matchVariant resolves a requested size against an item's variants.
// An empty size targets the single implicit bucket of a variantless item;
// when the item does define sizes, an empty or unmatched size is a
// VariantNotFound for the caller rather than a silent mutation of the
// wrong bucket.
func matchVariant(variants []models.Variant, size string) *models.Variant {
	if len(variants) == 0 {
		return nil
	}

	if utils.NormalizeSize(size) == "" {
		if len(variants) == 1 && variants[0].SizeKey == "" {
			return &variants[0]
		}
		return nil
	}

	for i := range variants {
		if utils.MatchSize(variants[i].Size, size) {
			return &variants[i]
		}
	}
	return nil
}
