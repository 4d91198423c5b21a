package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigamart/commerce-engine/internal/domain/cart"
)

const (
	loadCartSQL = `SELECT items FROM carts WHERE id = $1`

	saveCartSQL = `INSERT INTO carts (id, items, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`
)

var _ cart.Storage = (*CartRepository)(nil)

// CartRepository implements cart.Storage backed by PostgreSQL. The whole
// line-item list is stored as JSONB in one row keyed by the session ID and
// rewritten on every mutation.
type CartRepository struct {
	pool *pgxpool.Pool
	key  string
}

// NewCartRepository returns a CartRepository persisting under the given
// session key.
func NewCartRepository(pool *pgxpool.Pool, key string) *CartRepository {
	return &CartRepository{pool: pool, key: key}
}

// Load reads the persisted cart snapshot. A missing row is an empty cart,
// not an error: the slot is created lazily on first Save.
func (r *CartRepository) Load(ctx context.Context) ([]cart.LineItem, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, loadCartSQL, r.key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading cart %q: %w", r.key, err)
	}

	var items []cart.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding cart %q: %w", r.key, err)
	}
	return items, nil
}

// Save rewrites the cart slot with the given snapshot.
func (r *CartRepository) Save(ctx context.Context, items []cart.LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart %q: %w", r.key, err)
	}

	if _, err := r.pool.Exec(ctx, saveCartSQL, r.key, raw); err != nil {
		return fmt.Errorf("saving cart %q: %w", r.key, err)
	}
	return nil
}
