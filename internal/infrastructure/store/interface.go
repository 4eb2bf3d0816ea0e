package store

import (
	"context"
	"fmt"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
)

// CartRepository is the durable per-user cart document.
//
// All write operations are read-modify-write over the whole item list:
// concurrent writers race and the last write wins. Callers treat failures as
// non-fatal to the local mutation already applied.
type CartRepository interface {
	// Fetch returns the user's cart items, lazily creating an empty
	// document when none exists.
	Fetch(ctx context.Context, userID string) ([]cart.Item, error)
	// UpsertItem merges the item into the document by composite key,
	// incrementing quantity on a match and appending otherwise.
	UpsertItem(ctx context.Context, userID string, item cart.Item) error
	SetQuantity(ctx context.Context, userID string, key cart.ItemKey, quantity int) error
	DeleteItem(ctx context.Context, userID string, key cart.ItemKey) error
	Clear(ctx context.Context, userID string) error
}

// OrderRepository persists order documents keyed by reference.
type OrderRepository interface {
	// Put writes the order with create-or-replace semantics. Reference
	// uniqueness is the caller's responsibility.
	Put(ctx context.Context, o *order.Order) error
	// UpdateStatus partially updates status and updatedAt.
	UpdateStatus(ctx context.Context, reference string, status order.Status, updatedAt string) error
	// GetByReference returns nil when the order does not exist.
	GetByReference(ctx context.Context, reference string) (*order.Order, error)
	GetByUser(ctx context.Context, userID string) ([]order.Order, error)
}

// RepositoryError wraps remote store I/O failures.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func repoErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}
