package order

import (
	domain "github.com/example/storefront/internal/domain/order"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusUpdated = "OrderStatusUpdated"
)

// Event is the envelope published to the order event stream.
type Event struct {
	Type      string        `json:"type"`
	Reference string        `json:"reference"`
	Status    domain.Status `json:"status,omitempty"`
	Order     *domain.Order `json:"order,omitempty"`
}
