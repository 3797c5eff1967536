// internal/events/events.go

// Package events carries the core's outbound side effects. Mutation paths
// publish events instead of calling delivery code directly, so the ledger
// and order engine stay free of I/O and their tests need no consumers.
package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/uniform-backend/internal/models"
)

type Event interface {
	Name() string
}

// StockChanged is published after any committed stock mutation.
type StockChanged struct {
	ItemID    uuid.UUID
	ItemName  string
	Level     models.EducationLevel
	Size      string
	Stock     int
	Movement  models.MovementType
	Restocked bool
}

func (StockChanged) Name() string { return "stock.changed" }

// LowStock is published when a sale drops a variant to or below its
// reorder threshold.
type LowStock struct {
	ItemID       uuid.UUID
	ItemName     string
	Level        models.EducationLevel
	Size         string
	Stock        int
	ReorderLevel int
}

func (LowStock) Name() string { return "stock.low" }

type OrderCreated struct {
	OrderID     uuid.UUID
	OrderNumber string
	BuyerEmail  string
	Kind        models.OrderKind
	Total       decimal.Decimal
	Items       models.OrderLineItems
}

func (OrderCreated) Name() string { return "order.created" }

type OrderStatusChanged struct {
	OrderID     uuid.UUID
	OrderNumber string
	BuyerEmail  string
	From        models.OrderStatus
	To          models.OrderStatus
}

func (OrderStatusChanged) Name() string { return "order.status_changed" }

type Handler func(Event)

// Bus is a small in-process dispatcher. Publish never blocks the caller;
// when the buffer is full the event is dropped with a warning, since
// notifications are fire-and-forget by contract.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	ch       chan Event
	done     chan struct{}
	closing  sync.Once
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}

	b := &Bus{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}

	go b.dispatch()
	return b
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(e Event) {
	select {
	case b.ch <- e:
	default:
		logrus.WithField("event", e.Name()).Warn("Event buffer full, dropping event")
	}
}

func (b *Bus) dispatch() {
	defer close(b.done)

	for e := range b.ch {
		b.mu.RLock()
		handlers := make([]Handler, len(b.handlers))
		copy(handlers, b.handlers)
		b.mu.RUnlock()

		for _, h := range handlers {
			func() {
				defer func() {
					if r := recover(); r != nil {
						logrus.WithFields(logrus.Fields{
							"event": e.Name(),
							"panic": r,
						}).Error("Event handler panicked")
					}
				}()
				h(e)
			}()
		}
	}
}

// Close stops the dispatcher after draining buffered events.
func (b *Bus) Close() {
	b.closing.Do(func() {
		close(b.ch)
	})
	<-b.done
}
