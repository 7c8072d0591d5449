package order

import (
	"github.com/google/uuid"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// Event types for the order aggregate
const (
	EventTypeOrderReconciled = "order.reconciled"
	EventTypeOrderExported   = "order.exported"
)

// OrderReconciledEvent is raised when a channel writeback changes an order
type OrderReconciledEvent struct {
	shared.BaseDomainEvent
	OrderNumber  string `json:"order_number"`
	ItemsChanged bool   `json:"items_changed"`
}

// NewOrderReconciledEvent creates a new order reconciled event
func NewOrderReconciledEvent(orderID uuid.UUID, orderNumber string, itemsChanged bool) *OrderReconciledEvent {
	return &OrderReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderReconciled, "Order", orderID),
		OrderNumber:     orderNumber,
		ItemsChanged:    itemsChanged,
	}
}

// OrderExportedEvent is raised when the channel acknowledges an order export
type OrderExportedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewOrderExportedEvent creates a new order exported event
func NewOrderExportedEvent(orderID uuid.UUID, orderNumber string) *OrderExportedEvent {
	return &OrderExportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderExported, "Order", orderID),
		OrderNumber:     orderNumber,
	}
}
