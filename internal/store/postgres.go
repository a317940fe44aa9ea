package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/menucart/internal/cart"
	"github.com/andreasstove999/menucart/internal/order"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresStore struct {
	pool DBPool
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FetchCart(ctx context.Context, userID string) ([]cart.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, menu_item_id, name, price, quantity, user_id
         FROM cart_items WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.MenuItemID, &it.Name, &it.Price, &it.Quantity, &it.UserID); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return items, nil
}

func (s *PostgresStore) FindCartItemByMenuID(ctx context.Context, menuItemID, userID string) (*cart.Item, error) {
	var it cart.Item
	err := s.pool.QueryRow(ctx,
		`SELECT id, menu_item_id, name, price, quantity, user_id
         FROM cart_items WHERE menu_item_id = $1 AND user_id = $2`,
		menuItemID, userID,
	).Scan(&it.ID, &it.MenuItemID, &it.Name, &it.Price, &it.Quantity, &it.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select cart_item: %w", err)
	}
	return &it, nil
}

func (s *PostgresStore) AddCartItem(ctx context.Context, item cart.Item) (*cart.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO cart_items (id, menu_item_id, name, price, quantity, user_id, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		item.ID, item.MenuItemID, item.Name, item.Price, item.Quantity, item.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert cart_item: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*cart.Item, error) {
	var it cart.Item
	err := s.pool.QueryRow(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1
         RETURNING id, menu_item_id, name, price, quantity, user_id`,
		itemID, quantity,
	).Scan(&it.ID, &it.MenuItemID, &it.Name, &it.Price, &it.Quantity, &it.UserID)
	if err != nil {
		return nil, fmt.Errorf("update cart_item: %w", err)
	}
	return &it, nil
}

func (s *PostgresStore) RemoveCartItem(ctx context.Context, itemID string) error {
	// No row is not an error; clearing a cart must be retryable.
	if _, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID); err != nil {
		return fmt.Errorf("delete cart_item: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateOrder(ctx context.Context, o *order.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, user_id, total_amount, status, idempotency_key, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.UserID, o.TotalAmount, string(o.Status), o.IdempotencyKey, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, menu_item_id, name, price, quantity)
             VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), o.ID, it.MenuItemID, it.Name, it.Price, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
