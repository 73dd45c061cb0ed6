package service

import (
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/domain"
)

// Event topics published on the service bus.
const (
	TopicLowStock       = "inventory:low_stock"
	TopicOrderPlaced    = "order:placed"
	TopicPasswordReset  = "account:password_reset"
	TopicReservationNew = "reservation:created"
)

// LowStockEvent is published when an item ends a workflow below its
// minimum stock.
type LowStockEvent struct {
	Item     domain.InventoryItem
	Shortage float64
}

// PasswordResetEvent carries a freshly issued reset link.
type PasswordResetEvent struct {
	Email string
	Name  string
	Link  string
}

func (s *Service) publish(topic string, payload interface{}) {
	if !s.bus.HasCallback(topic) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorf("event handler for %s panicked: %v", topic, r)
		}
	}()
	s.bus.Publish(topic, payload)
}

func (s *Service) checkLowStock(item domain.InventoryItem) {
	if item.Quantity < item.MinStock {
		s.publish(TopicLowStock, LowStockEvent{Item: item, Shortage: round2(item.MinStock - item.Quantity)})
	}
}
