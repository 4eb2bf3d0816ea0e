package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storefront/internal/domain/cart"
)

// PostgresCartStore implements CartRepository on PostgreSQL, keeping the
// item list as a JSON payload column (same document shape as the DynamoDB
// backend).
type PostgresCartStore struct {
	db *sql.DB
}

func NewPostgresCartStore(db *sql.DB) *PostgresCartStore {
	return &PostgresCartStore{db: db}
}

func (cs *PostgresCartStore) Fetch(ctx context.Context, userID string) ([]cart.Item, error) {
	var payload string
	err := cs.db.QueryRowContext(ctx,
		`SELECT items FROM carts WHERE user_id = $1`, userID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		// Lazily create an empty document.
		if err := cs.write(ctx, userID, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, repoErr("fetch cart", err)
	}

	var items []cart.Item
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, repoErr("fetch cart", fmt.Errorf("corrupt items payload: %w", err))
	}
	return items, nil
}

func (cs *PostgresCartStore) UpsertItem(ctx context.Context, userID string, item cart.Item) error {
	items, err := cs.Fetch(ctx, userID)
	if err != nil {
		return err
	}
	return cs.write(ctx, userID, cart.Merge(items, item))
}

func (cs *PostgresCartStore) SetQuantity(ctx context.Context, userID string, key cart.ItemKey, quantity int) error {
	items, err := cs.Fetch(ctx, userID)
	if err != nil {
		return err
	}
	return cs.write(ctx, userID, cart.SetQuantity(items, key, quantity))
}

func (cs *PostgresCartStore) DeleteItem(ctx context.Context, userID string, key cart.ItemKey) error {
	items, err := cs.Fetch(ctx, userID)
	if err != nil {
		return err
	}
	return cs.write(ctx, userID, cart.Remove(items, key))
}

func (cs *PostgresCartStore) Clear(ctx context.Context, userID string) error {
	return cs.write(ctx, userID, nil)
}

func (cs *PostgresCartStore) write(ctx context.Context, userID string, items []cart.Item) error {
	if items == nil {
		items = []cart.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return repoErr("write cart", err)
	}

	_, err = cs.db.ExecContext(ctx,
		`INSERT INTO carts (user_id, items, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET items = $2, updated_at = $3`,
		userID, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return repoErr("write cart", err)
	}
	return nil
}
