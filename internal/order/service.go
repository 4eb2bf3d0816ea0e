package order

import (
	"context"
	"fmt"
	"log"
	"time"

	domain "github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/webhook"
)

// EventPublisher publishes order events to the event stream.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service persists orders and fans out best-effort notifications. Repository
// failures are fatal to the operation; webhook and event-stream failures
// never are.
type Service struct {
	repo      store.OrderRepository
	webhooks  *webhook.Client
	publisher EventPublisher
	now       func() time.Time
}

func NewService(repo store.OrderRepository, webhooks *webhook.Client, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		webhooks:  webhooks,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create stamps timestamps and writes the order keyed by its reference.
// Create-or-replace: a duplicate reference overwrites, uniqueness is the
// reference generator's job.
func (s *Service) Create(ctx context.Context, o *domain.Order) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}

	now := s.now().UTC().Format(time.RFC3339)
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = domain.StatusCreated
	}

	if err := s.repo.Put(ctx, o); err != nil {
		return "", err
	}

	s.webhooks.Notify(ctx, map[string]any{
		"type":  webhook.TypeOrderCreated,
		"order": o,
	})
	s.publish(ctx, Event{Type: EventOrderCreated, Reference: o.Reference, Order: o})

	return o.Reference, nil
}

// UpdateStatus partially updates status and updatedAt. The current status
// gates the write: terminal orders stay terminal, and redelivering the same
// outcome is a no-op. Both the return redirect and the gateway notification
// may report the same payment, so duplicates are expected.
func (s *Service) UpdateStatus(ctx context.Context, reference string, status domain.Status) error {
	o, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	if o == nil {
		return domain.ErrOrderNotFound
	}
	if o.Status == status {
		return nil
	}
	if !o.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatus, o.Status, status)
	}

	now := s.now().UTC().Format(time.RFC3339)
	if err := s.repo.UpdateStatus(ctx, reference, status, now); err != nil {
		return err
	}

	s.webhooks.Notify(ctx, map[string]any{
		"type":      webhook.TypeOrderStatusUpdated,
		"reference": reference,
		"status":    status,
	})
	s.publish(ctx, Event{Type: EventOrderStatusUpdated, Reference: reference, Status: status})

	return nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	return s.repo.GetByReference(ctx, reference)
}

func (s *Service) GetByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.GetByUser(ctx, userID)
}

func (s *Service) publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event.Reference, event); err != nil {
		log.Printf("[Order] Failed to publish %s for %s: %v", event.Type, event.Reference, err)
	}
}
