package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain/cart"
)

// MockCartRepository is an in-memory CartRepository for testing.
type MockCartRepository struct {
	mu    sync.Mutex
	carts map[string][]cart.Item

	// For tracking calls in tests
	UpsertCalls []UpsertCall
	DeleteCalls []DeleteCall
	ClearCalls  []string
	FetchCalls  []string

	// Injectable failures
	FetchErr  error
	UpsertErr error
	DeleteErr error
	ClearErr  error
	SetErr    error
}

// UpsertCall records parameters passed to UpsertItem
type UpsertCall struct {
	UserID string
	Item   cart.Item
}

// DeleteCall records parameters passed to DeleteItem
type DeleteCall struct {
	UserID string
	Key    cart.ItemKey
}

// NewMockCartRepository creates a new MockCartRepository
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{carts: make(map[string][]cart.Item)}
}

// Seed sets the stored items for a user.
func (m *MockCartRepository) Seed(userID string, items []cart.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = items
}

// Items returns the stored items for a user.
func (m *MockCartRepository) Items(userID string) []cart.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carts[userID]
}

func (m *MockCartRepository) Fetch(ctx context.Context, userID string) ([]cart.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls = append(m.FetchCalls, userID)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.carts[userID], nil
}

func (m *MockCartRepository) UpsertItem(ctx context.Context, userID string, item cart.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls = append(m.UpsertCalls, UpsertCall{UserID: userID, Item: item})
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.carts[userID] = cart.Merge(m.carts[userID], item)
	return nil
}

func (m *MockCartRepository) SetQuantity(ctx context.Context, userID string, key cart.ItemKey, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.carts[userID] = cart.SetQuantity(m.carts[userID], key, quantity)
	return nil
}

func (m *MockCartRepository) DeleteItem(ctx context.Context, userID string, key cart.ItemKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, DeleteCall{UserID: userID, Key: key})
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.carts[userID] = cart.Remove(m.carts[userID], key)
	return nil
}

func (m *MockCartRepository) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls = append(m.ClearCalls, userID)
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.carts[userID] = nil
	return nil
}
