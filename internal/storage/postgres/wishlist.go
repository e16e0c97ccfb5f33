package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqly/storefront/internal/domain/wishlist"
)

const (
	listWishlistSQL = `SELECT product_id, added_at FROM wishlist_items
		WHERE session_id = $1 ORDER BY added_at DESC, product_id`

	addWishlistSQL = `INSERT INTO wishlist_items (session_id, product_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	removeWishlistSQL = `DELETE FROM wishlist_items WHERE session_id = $1 AND product_id = $2`
)

var _ wishlist.Repository = (*WishlistRepository)(nil)

type WishlistRepository struct {
	pool *pgxpool.Pool
}

func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

func (r *WishlistRepository) List(ctx context.Context, sessionID string) ([]wishlist.Item, error) {
	rows, err := r.pool.Query(ctx, listWishlistSQL, sessionID)
	if err != nil {
		return nil, classify("list wishlist", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (wishlist.Item, error) {
		var it wishlist.Item
		err := row.Scan(&it.ProductID, &it.AddedAt)
		return it, err
	})
	return items, classify("list wishlist", err)
}

func (r *WishlistRepository) Add(ctx context.Context, sessionID, productID string) error {
	_, err := r.pool.Exec(ctx, addWishlistSQL, sessionID, productID)
	return classify("add wishlist item", err)
}

func (r *WishlistRepository) Remove(ctx context.Context, sessionID, productID string) error {
	_, err := r.pool.Exec(ctx, removeWishlistSQL, sessionID, productID)
	return classify("remove wishlist item", err)
}
