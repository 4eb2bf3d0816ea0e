package order

import (
	"errors"
	"fmt"
	"time"
)

// AnonymousUserID marks orders placed without a logged-in user.
const AnonymousUserID = "anonymous"

type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type DeliveryMethod string

const (
	DeliveryShipping DeliveryMethod = "shipping"
	DeliveryPickup   DeliveryMethod = "pickup"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrEmptyOrder     = errors.New("order must have at least one item")
	ErrInvalidStatus  = errors.New("invalid order status transition")
	ErrMissingAddress = errors.New("shipping address is required for delivery")
)

// validTransitions defines allowed status transitions. Completed and
// cancelled are terminal; nothing transitions backward out of them.
var validTransitions = map[Status][]Status{
	StatusCreated:   {StatusPending, StatusCompleted, StatusCancelled},
	StatusPending:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Item is one order line, frozen from the cart at checkout.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ShippingDetails carries the delivery form. Address fields are required
// only when the method is shipping.
type ShippingDetails struct {
	Method     DeliveryMethod `json:"method"`
	Name       string         `json:"name"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	PostalCode string         `json:"postalCode"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
}

// Order is an immutable-once-created checkout record, keyed by Reference.
type Order struct {
	Reference string          `json:"reference"`
	UserID    string          `json:"userId"`
	Email     string          `json:"email"`
	Items     []Item          `json:"items"`
	Total     float64         `json:"total"`
	Shipping  ShippingDetails `json:"shipping"`
	Status    Status          `json:"status"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

// NewReference generates a checkout-attempt reference. Derived from the
// submission timestamp; rapid double submission is guarded at the checkout
// layer, not here.
func NewReference(now time.Time) string {
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}

// CanTransitionTo reports whether the order may move to the target status.
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// Validate checks the order is complete enough to persist and hand to the
// payment gateway.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	if o.Shipping.Method == DeliveryShipping && o.Shipping.Address == "" {
		return ErrMissingAddress
	}
	return nil
}
