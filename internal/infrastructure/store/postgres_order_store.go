package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/example/storefront/internal/domain/order"
)

// PostgresOrderStore implements OrderRepository on PostgreSQL with the order
// body as a JSON payload column keyed by reference.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (os *PostgresOrderStore) Put(ctx context.Context, o *order.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return repoErr("put order", err)
	}

	_, err = os.db.ExecContext(ctx,
		`INSERT INTO orders (reference, user_id, status, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (reference) DO UPDATE
		 SET user_id = $2, status = $3, data = $4, created_at = $5, updated_at = $6`,
		o.Reference, o.UserID, string(o.Status), string(data), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return repoErr("put order", err)
	}
	return nil
}

func (os *PostgresOrderStore) UpdateStatus(ctx context.Context, reference string, status order.Status, updatedAt string) error {
	o, err := os.GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	if o == nil {
		return repoErr("update status", order.ErrOrderNotFound)
	}
	o.Status = status
	o.UpdatedAt = updatedAt

	data, err := json.Marshal(o)
	if err != nil {
		return repoErr("update status", err)
	}

	_, err = os.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, data = $3, updated_at = $4 WHERE reference = $1`,
		reference, string(status), string(data), updatedAt,
	)
	if err != nil {
		return repoErr("update status", err)
	}
	return nil
}

func (os *PostgresOrderStore) GetByReference(ctx context.Context, reference string) (*order.Order, error) {
	var data string
	err := os.db.QueryRowContext(ctx,
		`SELECT data FROM orders WHERE reference = $1`, reference,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, repoErr("get order", err)
	}
	return decodeOrder(data)
}

func (os *PostgresOrderStore) GetByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := os.db.QueryContext(ctx,
		`SELECT data FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, repoErr("list orders", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, repoErr("list orders", err)
		}
		o, err := decodeOrder(data)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("list orders", err)
	}
	return orders, nil
}
