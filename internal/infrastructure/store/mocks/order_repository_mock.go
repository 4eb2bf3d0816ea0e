package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain/order"
)

// MockOrderRepository is an in-memory OrderRepository for testing.
type MockOrderRepository struct {
	mu     sync.Mutex
	orders map[string]order.Order

	// For tracking calls in tests
	PutCalls          []order.Order
	UpdateStatusCalls []StatusCall

	// Injectable failures
	PutErr          error
	UpdateStatusErr error
	GetErr          error
}

// StatusCall records parameters passed to UpdateStatus
type StatusCall struct {
	Reference string
	Status    order.Status
}

// NewMockOrderRepository creates a new MockOrderRepository
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]order.Order)}
}

func (m *MockOrderRepository) Put(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls = append(m.PutCalls, *o)
	if m.PutErr != nil {
		return m.PutErr
	}
	m.orders[o.Reference] = *o
	return nil
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, reference string, status order.Status, updatedAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateStatusCalls = append(m.UpdateStatusCalls, StatusCall{Reference: reference, Status: status})
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	o, ok := m.orders[reference]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	m.orders[reference] = o
	return nil
}

func (m *MockOrderRepository) GetByReference(ctx context.Context, reference string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	o, ok := m.orders[reference]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *MockOrderRepository) GetByUser(ctx context.Context, userID string) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var out []order.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}
