// internal/events/events_test.go
package events

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/javajoker/uniform-backend/internal/models"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus(16)

	var mu sync.Mutex
	var got []string
	bus.Subscribe(func(e Event) {
		mu.Lock()
		got = append(got, e.Name())
		mu.Unlock()
	})

	bus.Publish(StockChanged{ItemID: uuid.New(), ItemName: "Polo Shirt", Stock: 4})
	bus.Publish(OrderStatusChanged{OrderID: uuid.New(), From: models.OrderStatusPending, To: models.OrderStatusVoided})
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"stock.changed", "order.status_changed"}, got)
}

func TestBusFanOut(t *testing.T) {
	bus := NewBus(16)

	var mu sync.Mutex
	count := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(func(Event) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}

	bus.Publish(LowStock{ItemName: "PE Shirt", Stock: 1, ReorderLevel: 2})
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, count)
}

func TestBusSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus(16)

	var mu sync.Mutex
	delivered := 0
	bus.Subscribe(func(Event) { panic("handler bug") })
	bus.Subscribe(func(Event) {
		mu.Lock()
		delivered++
		mu.Unlock()
	})

	bus.Publish(StockChanged{ItemName: "Polo Shirt"})
	bus.Publish(StockChanged{ItemName: "PE Shirt"})
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, delivered)
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus(1)
	// Slow handler keeps the buffer full.
	bus.Subscribe(func(Event) { time.Sleep(50 * time.Millisecond) })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(StockChanged{ItemName: "Polo Shirt"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
	bus.Close()
}

func TestBusCloseIsIdempotent(t *testing.T) {
	bus := NewBus(4)
	bus.Close()
	assert.NotPanics(t, func() { bus.Close() })
}
