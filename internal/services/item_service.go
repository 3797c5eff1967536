// internal/services/item_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/uniform-backend/internal/models"
	"github.com/javajoker/uniform-backend/internal/utils"
)

// ItemService manages the catalog. Creation goes through the duplicate
// merge resolver: re-submitting an existing (name, segment, size) routes
// the stock through the ledger instead of inserting a second row with a
// second beginning-inventory baseline.
type ItemService struct {
	db        *gorm.DB
	inventory *InventoryService
}

type CreateItemRequest struct {
	Name         string           `json:"name" validate:"required,min=2,max=255"`
	Category     string           `json:"category,omitempty" validate:"omitempty,max=100"`
	Level        string           `json:"level" validate:"required,education_level"`
	Gender       string           `json:"gender,omitempty" validate:"omitempty,oneof=male female unisex"`
	Size         string           `json:"size,omitempty" validate:"omitempty,max=50"`
	Stock        int              `json:"stock" validate:"min=0"`
	Price        decimal.Decimal  `json:"price" validate:"required"`
	ReorderLevel *int             `json:"reorder_level,omitempty" validate:"omitempty,min=0"`
	Tags         []string         `json:"tags,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
}

type ItemSearchParams struct {
	utils.PaginationParams
	Level   *models.EducationLevel `json:"level,omitempty"`
	Gender  *models.Gender         `json:"gender,omitempty"`
	InStock *bool                  `json:"in_stock,omitempty"`
}

func NewItemService(db *gorm.DB, inventory *InventoryService) *ItemService {
	return &ItemService{
		db:        db,
		inventory: inventory,
	}
}

// CreateItem creates a catalog item, a new variant on an existing item, or
// merges into an existing variant's ledger. The returned flag is true when
// the request matched an existing item+size and was merged. The unique
// indexes on (name_key, level, gender) and (item_id, size_key) are the
// authoritative guard; the lookup below is an optimization, so a lost
// insert race is retried as a merge.
func (s *ItemService) CreateItem(req *CreateItemRequest, actorID *uuid.UUID) (*models.CatalogItem, bool, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, false, fmt.Errorf("validation failed: %w", err)
	}
	if req.Price.IsNegative() {
		return nil, false, errors.New("price must not be negative")
	}

	for attempt := 0; ; attempt++ {
		item, existing, err := s.createOrMerge(req, actorID)
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			// Lost a concurrent-create race; the row exists now, merge.
			continue
		}
		return item, existing, err
	}
}

func (s *ItemService) createOrMerge(req *CreateItemRequest, actorID *uuid.UUID) (*models.CatalogItem, bool, error) {
	nameKey := utils.NormalizeItemName(req.Name)
	gender := models.GenderUnisex
	if req.Gender != "" {
		gender = models.Gender(req.Gender)
	}

	var item models.CatalogItem
	err := s.db.Preload("Variants").
		Where("name_key = ? AND level = ? AND gender = ?", string(nameKey), req.Level, gender).
		First(&item).Error

	switch {
	case err == nil:
		return s.mergeIntoItem(&item, req, actorID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.insertItem(req, nameKey, gender, actorID)
	default:
		return nil, false, classifyStorageErr(err)
	}
}

// mergeIntoItem folds the request into an existing item: matched size goes
// through the stock ledger, an unmatched size becomes a new variant with
// its own baseline.
func (s *ItemService) mergeIntoItem(item *models.CatalogItem, req *CreateItemRequest, actorID *uuid.UUID) (*models.CatalogItem, bool, error) {
	if v := matchVariant(item.Variants, req.Size); v != nil {
		if req.Stock > 0 {
			updated, err := s.inventory.AddStock(item.ID, &StockRequest{
				Size:      req.Size,
				Quantity:  req.Stock,
				UnitPrice: &req.Price,
			}, actorID)
			if err != nil {
				return nil, false, err
			}
			return updated, true, nil
		}
		return item, true, nil
	}

	now := time.Now()
	variant := newVariant(item.ID, req, now)
	if err := s.db.Create(&variant).Error; err != nil {
		return nil, false, classifyStorageErr(err)
	}

	item.Variants = append(item.Variants, variant)
	return item, false, nil
}

// insertItem is the only code path besides the epoch roll-forward that
// writes a beginning inventory, and the only one that writes a fresh one.
func (s *ItemService) insertItem(req *CreateItemRequest, nameKey utils.ItemKey, gender models.Gender, actorID *uuid.UUID) (*models.CatalogItem, bool, error) {
	item := &models.CatalogItem{
		Name:     strings.TrimSpace(req.Name),
		NameKey:  string(nameKey),
		Category: req.Category,
		Level:    models.EducationLevel(req.Level),
		Gender:   gender,
		Tags:     req.Tags,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return classifyStorageErr(err)
		}

		now := time.Now()
		variant := newVariant(item.ID, req, now)
		if err := tx.Create(&variant).Error; err != nil {
			return classifyStorageErr(err)
		}
		item.Variants = []models.Variant{variant}

		if req.Stock > 0 {
			m := &models.StockMovement{
				ItemID:    item.ID,
				VariantID: variant.ID,
				Type:      models.MovementPurchase,
				Quantity:  req.Stock,
				UnitPrice: variant.Price,
				ActorID:   actorID,
			}
			if err := tx.Create(m).Error; err != nil {
				return classifyStorageErr(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return item, false, nil
}

func newVariant(itemID uuid.UUID, req *CreateItemRequest, now time.Time) models.Variant {
	cost := req.Price
	if req.UnitCost != nil {
		cost = *req.UnitCost
	}

	return models.Variant{
		ItemID:             itemID,
		Size:               strings.TrimSpace(req.Size),
		SizeKey:            string(utils.NormalizeSize(req.Size)),
		Stock:              req.Stock,
		Purchases:          0,
		BeginningInventory: req.Stock,
		BeginningUnitCost:  cost,
		Price:              req.Price,
		ReorderLevel:       req.ReorderLevel,
		BaselineSetAt:      &now,
		FiscalYearStart:    &now,
	}
}

func (s *ItemService) GetItem(id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := s.db.Preload("Variants").First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, id)
		}
		return nil, classifyStorageErr(err)
	}
	return &item, nil
}

func (s *ItemService) SearchItems(params ItemSearchParams) ([]models.CatalogItem, int64, error) {
	query := s.db.Model(&models.CatalogItem{}).Preload("Variants")

	if params.Level != nil {
		query = query.Where("level = ?", *params.Level)
	}
	if params.Gender != nil {
		query = query.Where("gender IN ?", []models.Gender{*params.Gender, models.GenderUnisex})
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchTerm)
	}
	if params.InStock != nil && *params.InStock {
		query = query.Where("EXISTS (SELECT 1 FROM variants WHERE variants.item_id = catalog_items.id AND variants.stock > 0 AND variants.deleted_at IS NULL)")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, classifyStorageErr(err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "level", "category"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var items []models.CatalogItem
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, classifyStorageErr(err)
	}

	return items, total, nil
}

// DeleteItem soft-deletes an item and its variants. Items referenced by
// open orders stay, since cancellation and the void sweep still need the
// variant rows to release stock into.
func (s *ItemService) DeleteItem(id uuid.UUID) error {
	item, err := s.GetItem(id)
	if err != nil {
		return err
	}

	for _, v := range item.Variants {
		var count int64
		if err := s.db.Model(&models.Order{}).
			Where("status IN ?", []models.OrderStatus{models.OrderStatusPending, models.OrderStatusPaid}).
			Where("items @> ?", fmt.Sprintf(`[{"variant_id":"%s"}]`, v.ID)).
			Count(&count).Error; err != nil {
			return classifyStorageErr(err)
		}
		if count > 0 {
			return fmt.Errorf("cannot delete item %q: open orders reference size %q", item.Name, v.Size)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
			return classifyStorageErr(err)
		}
		if err := tx.Delete(&models.CatalogItem{}, "id = ?", id).Error; err != nil {
			return classifyStorageErr(err)
		}
		return nil
	})
}

// GetItemStatistics reports the ledger state and valuation per variant.
func (s *ItemService) GetItemStatistics(id uuid.UUID) (map[string]interface{}, error) {
	item, err := s.GetItem(id)
	if err != nil {
		return nil, err
	}

	variants := make([]map[string]interface{}, 0, len(item.Variants))
	for _, v := range item.Variants {
		variants = append(variants, map[string]interface{}{
			"size":                v.Size,
			"stock":               v.Stock,
			"purchases":           v.Purchases,
			"beginning_inventory": v.BeginningInventory,
			"ending_inventory":    v.EndingInventory(),
			"beginning_unit_cost": v.BeginningUnitCost,
			"price":               v.Price,
			"inventory_value":     v.InventoryValue(),
			"baseline_set_at":     v.BaselineSetAt,
		})
	}

	return map[string]interface{}{
		"item_id":     item.ID,
		"name":        item.Name,
		"level":       item.Level,
		"total_stock": item.TotalStock(),
		"total_value": item.TotalInventoryValue(),
		"variants":    variants,
	}, nil
}
