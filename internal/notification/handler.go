package notification

import (
	"context"
	"encoding/json"
	"log"

	domain "github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/order"
)

// ConfirmationSender delivers order confirmation messages.
type ConfirmationSender interface {
	SendOrderConfirmation(o *domain.Order) error
}

// Handler processes order events for sending notifications
type Handler struct {
	emailService ConfirmationSender
}

// NewHandler creates a new notification handler
func NewHandler(emailSvc ConfirmationSender) *Handler {
	return &Handler{emailService: emailSvc}
}

// HandleEvent processes an event from the order event stream
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	// Only order creation triggers a confirmation email.
	if event.Type == order.EventOrderCreated {
		return h.handleOrderCreated(event)
	}

	return nil
}

func (h *Handler) handleOrderCreated(event order.Event) error {
	if event.Order == nil {
		log.Printf("[Notifier] OrderCreated event without order payload: %s", event.Reference)
		return nil
	}
	if event.Order.Email == "" {
		log.Printf("[Notifier] Order %s has no email, skipping confirmation", event.Reference)
		return nil
	}

	log.Printf("[Notifier] Sending confirmation for order %s to %s", event.Reference, event.Order.Email)

	if err := h.emailService.SendOrderConfirmation(event.Order); err != nil {
		log.Printf("[Notifier] Failed to send confirmation for order %s: %v", event.Reference, err)
		return err
	}
	return nil
}
