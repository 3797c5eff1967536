// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/uniform-backend/internal/events"
	"github.com/javajoker/uniform-backend/internal/models"
	"github.com/javajoker/uniform-backend/internal/utils"
)

// OrderService validates orders against catalog, eligibility and stock,
// reserves stock atomically, and drives the order lifecycle.
type OrderService struct {
	db          *gorm.DB
	inventory   *InventoryService
	eligibility *EligibilityService
	bus         *events.Bus
}

// Identity is the acting caller of an order operation, resolved by the
// auth layer from a buyer token. Staff identities may perform any legal
// transition; buyers may only cancel or confirm their own orders.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Staff  bool
}

type OrderLineRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Size     string    `json:"size,omitempty"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Kind  string             `json:"kind,omitempty" validate:"omitempty,order_kind"`
	Lines []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func NewOrderService(db *gorm.DB, inventory *InventoryService, eligibility *EligibilityService, bus *events.Bus) *OrderService {
	return &OrderService{
		db:          db,
		inventory:   inventory,
		eligibility: eligibility,
		bus:         bus,
	}
}

// legalTransitions is the lifecycle state machine. claimed, voided and
// cancelled are terminal.
var legalTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {
		models.OrderStatusPaid,
		models.OrderStatusClaimed,
		models.OrderStatusCancelled,
		models.OrderStatusVoided,
	},
	models.OrderStatusPaid: {
		models.OrderStatusClaimed,
		models.OrderStatusCancelled,
	},
}

func canTransition(from, to models.OrderStatus) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// releasesStock reports whether entering the status returns reserved
// stock to the ledger.
func releasesStock(to models.OrderStatus) bool {
	return to == models.OrderStatusCancelled || to == models.OrderStatusVoided
}

// confirmableStates are the statuses in which a buyer confirmation still
// means anything; a voided or cancelled order is past confirming.
var confirmableStates = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusPaid,
}

func isConfirmable(status models.OrderStatus) bool {
	for _, s := range confirmableStates {
		if s == status {
			return true
		}
	}
	return false
}

// voidable reports whether an order may still be voided. Confirmation
// fences the void even when status alone allows it: a confirmation that
// lands between the sweep's scan and its update must win.
func voidable(o *models.Order) bool {
	return o.Status == models.OrderStatusPending && !o.Confirmed
}

// authorizeTransition enforces the caller rules: staff may perform any
// transition, a buyer may only move their own order to cancelled.
func authorizeTransition(actor Identity, order *models.Order, to models.OrderStatus) error {
	if actor.Staff {
		return nil
	}
	if !order.BelongsTo(actor.UserID, actor.Email) {
		return fmt.Errorf("%w: order %s belongs to another buyer", ErrUnauthorized, order.OrderNumber)
	}
	if to != models.OrderStatusCancelled {
		return fmt.Errorf("%w: buyers may only cancel orders", ErrUnauthorized)
	}
	return nil
}

// committedQuantities sums a buyer's ordered quantities per canonical item
// key across the given orders.
func committedQuantities(orders []models.Order) map[utils.ItemKey]int {
	committed := make(map[utils.ItemKey]int)
	for _, order := range orders {
		if !order.IsActive() {
			continue
		}
		for _, line := range order.Items {
			committed[utils.NormalizeItemName(line.Name)] += line.Quantity
		}
	}
	return committed
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

// CreateOrder validates and persists an order, reserving stock for every
// line atomically. Pre-orders skip the stock check and reservation; they
// are flagged for manual conversion once stock returns. Any line failure
// rolls back the whole order, so no partial reservation is left behind.
func (s *OrderService) CreateOrder(buyer *models.User, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	kind := models.OrderKindRegular
	if req.Kind != "" {
		kind = models.OrderKind(req.Kind)
	}

	var order *models.Order
	var err error
	for attempt := 0; ; attempt++ {
		err = s.createOrderTx(buyer, kind, req, &order)
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			// Order-number suffix collided; regenerate and retry once.
			continue
		}
		break
	}

	if err != nil {
		return nil, err
	}

	s.publish(events.OrderCreated{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerEmail:  order.BuyerEmail,
		Kind:        order.Kind,
		Total:       order.Total,
		Items:       order.Items,
	})
	if order.Kind == models.OrderKindRegular {
		for _, line := range order.Items {
			s.notifyStockChanged(order, line)
		}
	}

	return order, nil
}

func (s *OrderService) createOrderTx(buyer *models.User, kind models.OrderKind, req *CreateOrderRequest, out **models.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var active []models.Order
		if err := tx.Where("buyer_id = ? AND status NOT IN ?", buyer.ID,
			[]models.OrderStatus{models.OrderStatusVoided, models.OrderStatusCancelled}).
			Find(&active).Error; err != nil {
			return classifyStorageErr(err)
		}
		committed := committedQuantities(active)

		lines := make(models.OrderLineItems, 0, len(req.Lines))
		for _, lr := range req.Lines {
			var item models.CatalogItem
			if err := tx.First(&item, "id = ?", lr.ItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: item %s", ErrNotFound, lr.ItemID)
				}
				return classifyStorageErr(err)
			}

			var variants []models.Variant
			if err := tx.Where("item_id = ?", item.ID).Find(&variants).Error; err != nil {
				return classifyStorageErr(err)
			}

			v := matchVariant(variants, lr.Size)
			if v == nil {
				return fmt.Errorf("%w: item %q has no size %q", ErrVariantNotFound, item.Name, lr.Size)
			}

			key := utils.NormalizeItemName(item.Name)
			max := s.eligibility.MaxQuantity(item.Name, buyer.Level, buyer.StudentType, buyer.Gender)
			if committed[key]+lr.Quantity > max {
				return fmt.Errorf("%w: %q allows %d, already committed %d, requested %d",
					ErrQuantityExceeded, item.Name, max, committed[key], lr.Quantity)
			}
			committed[key] += lr.Quantity

			if kind == models.OrderKindRegular && v.Stock <= 0 {
				return fmt.Errorf("%w: %q size %q is out of stock, place a pre-order instead",
					ErrInsufficientStock, item.Name, v.Size)
			}

			lines = append(lines, models.OrderLineItem{
				VariantID: v.ID,
				Name:      item.Name,
				Size:      v.Size,
				Quantity:  lr.Quantity,
				UnitPrice: v.Price,
			})
		}

		order := &models.Order{
			OrderNumber: generateOrderNumber(),
			BuyerID:     buyer.ID,
			BuyerEmail:  buyer.Email,
			Level:       buyer.Level,
			StudentType: buyer.StudentType,
			Gender:      buyer.Gender,
			Items:       lines,
			Total:       lines.Total(),
			Kind:        kind,
			Status:      models.OrderStatusPending,
		}
		if err := tx.Create(order).Error; err != nil {
			return classifyStorageErr(err)
		}

		// The conditional decrement is the reservation's single ordering
		// guarantee: of two orders competing for the last unit, exactly
		// one sees RowsAffected == 1. A failed line rolls back the lines
		// already decremented along with the order row.
		if kind == models.OrderKindRegular {
			for _, line := range lines {
				if err := s.inventory.ReserveLineTx(tx, line, order.ID); err != nil {
					return err
				}
			}
		}

		*out = order
		return nil
	})
}

func (s *OrderService) notifyStockChanged(order *models.Order, line models.OrderLineItem) {
	var v models.Variant
	if err := s.db.First(&v, "id = ?", line.VariantID).Error; err != nil {
		return
	}
	var item models.CatalogItem
	if err := s.db.First(&item, "id = ?", v.ItemID).Error; err != nil {
		return
	}

	s.publish(events.StockChanged{
		ItemID:   item.ID,
		ItemName: item.Name,
		Level:    item.Level,
		Size:     v.Size,
		Stock:    v.Stock,
		Movement: models.MovementSale,
	})
	s.inventory.CheckLowStock(line.VariantID)
}

func (s *OrderService) GetOrder(orderID uuid.UUID, actor Identity) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, classifyStorageErr(err)
	}

	if !actor.Staff && !order.BelongsTo(actor.UserID, actor.Email) {
		return nil, fmt.Errorf("%w: order %s belongs to another buyer", ErrUnauthorized, order.OrderNumber)
	}
	return &order, nil
}

func (s *OrderService) GetBuyerOrders(buyerID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("buyer_id = ?", buyerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, classifyStorageErr(err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "status", "total"})
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, classifyStorageErr(err)
	}
	return orders, total, nil
}

// UpdateOrderStatus performs one lifecycle transition. The status row
// update is conditional on the expected current status, so two concurrent
// transitions of the same order resolve to one winner; cancelling and
// voiding release each line's reserved stock inside the same transaction.
func (s *OrderService) UpdateOrderStatus(orderID uuid.UUID, to models.OrderStatus, actor Identity) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, classifyStorageErr(err)
	}

	if err := authorizeTransition(actor, &order, to); err != nil {
		return nil, err
	}
	if !canTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, to)
	}
	if to == models.OrderStatusVoided && !voidable(&order) {
		return nil, fmt.Errorf("%w: order %s is confirmed and cannot be voided", ErrInvalidTransition, order.OrderNumber)
	}

	from := order.Status
	if err := s.transition(&order, from, to); err != nil {
		return nil, err
	}

	s.publish(events.OrderStatusChanged{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerEmail:  order.BuyerEmail,
		From:        from,
		To:          to,
	})

	if err := s.db.First(&order, "id = ?", order.ID).Error; err != nil {
		return nil, classifyStorageErr(err)
	}
	return &order, nil
}

func (s *OrderService) transition(order *models.Order, from, to models.OrderStatus) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{"status": to}
		switch to {
		case models.OrderStatusPaid:
			updates["paid_at"] = now
		case models.OrderStatusClaimed:
			updates["claimed_at"] = now
		case models.OrderStatusCancelled:
			updates["cancelled_at"] = now
		case models.OrderStatusVoided:
			updates["voided_at"] = now
		}

		query := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from)
		if to == models.OrderStatusVoided {
			// The sweep scans confirmed = false, but a confirmation can
			// commit between its scan and this update; the row guard makes
			// the void lose that race instead of the buyer.
			query = query.Where("confirmed = ?", false)
		}

		res := query.Updates(updates)
		if res.Error != nil {
			return classifyStorageErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %s is no longer %s", ErrInvalidTransition, order.OrderNumber, from)
		}

		// Pre-orders never reserved stock, so there is nothing to release.
		if releasesStock(to) && order.Kind == models.OrderKindRegular {
			for _, line := range order.Items {
				if err := s.inventory.ReleaseLineTx(tx, line, order.ID); err != nil {
					if errors.Is(err, ErrVariantNotFound) {
						logrus.WithFields(logrus.Fields{
							"order": order.OrderNumber,
							"item":  line.Name,
							"size":  line.Size,
						}).Warn("Variant gone, skipping stock release")
						continue
					}
					return err
				}
			}
		}
		return nil
	})
}

// ConfirmOrder records the buyer's confirmation inside the claim window.
// It validates ownership and clears the auto-void risk without changing
// the order's status.
func (s *OrderService) ConfirmOrder(orderID uuid.UUID, actor Identity) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, classifyStorageErr(err)
	}

	if !actor.Staff && !order.BelongsTo(actor.UserID, actor.Email) {
		return nil, fmt.Errorf("%w: order %s belongs to another buyer", ErrUnauthorized, order.OrderNumber)
	}
	if !isConfirmable(order.Status) {
		return nil, fmt.Errorf("%w: cannot confirm a %s order", ErrInvalidTransition, order.Status)
	}
	if order.Confirmed {
		return &order, nil
	}

	// Conditional on a still-confirmable status: if the sweep voided the
	// order after the read above, this affects zero rows and the buyer is
	// told the truth instead of getting a stale success.
	now := time.Now()
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", order.ID, confirmableStates).
		Updates(map[string]interface{}{
			"confirmed":    true,
			"confirmed_at": now,
		})
	if res.Error != nil {
		return nil, classifyStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order %s is no longer confirmable", ErrInvalidTransition, order.OrderNumber)
	}

	order.Confirmed = true
	order.ConfirmedAt = &now
	return &order, nil
}

// VoidUnclaimedOrdersOlderThan voids every pending, unconfirmed order
// created before now minus the window, releasing its reserved stock. A
// failed void is logged and left for the next sweep; one bad order must
// not halt the rest.
func (s *OrderService) VoidUnclaimedOrdersOlderThan(window time.Duration) (int, error) {
	cutoff := time.Now().Add(-window)

	var stale []models.Order
	if err := s.db.
		Where("status = ? AND confirmed = ? AND created_at < ?", models.OrderStatusPending, false, cutoff).
		Find(&stale).Error; err != nil {
		return 0, classifyStorageErr(err)
	}

	voided := 0
	for i := range stale {
		order := &stale[i]
		if err := s.transition(order, models.OrderStatusPending, models.OrderStatusVoided); err != nil {
			logrus.WithError(err).WithField("order", order.OrderNumber).Error("Failed to void order")
			continue
		}
		voided++
		s.publish(events.OrderStatusChanged{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			BuyerEmail:  order.BuyerEmail,
			From:        models.OrderStatusPending,
			To:          models.OrderStatusVoided,
		})
	}

	return voided, nil
}

func (s *OrderService) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
