package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqly/storefront/internal/domain/cart"
)

// cartKey is the snapshot key holding the serialized cart.
const cartKey = "cart"

const (
	loadSnapshotSQL = `SELECT payload FROM cart_snapshots WHERE session_id = $1 AND key = $2`

	saveSnapshotSQL = `INSERT INTO cart_snapshots (session_id, key, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id, key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`

	deleteSnapshotSQL = `DELETE FROM cart_snapshots WHERE session_id = $1 AND key = $2`
)

var _ cart.Store = (*CartStore)(nil)

// CartStore keeps one JSONB snapshot of the cart per session.
type CartStore struct {
	pool *pgxpool.Pool
}

// NewCartStore returns a CartStore that uses the given pool.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// Load returns the stored line items; a session without a snapshot has an
// empty cart.
func (s *CartStore) Load(ctx context.Context, sessionID string) ([]cart.LineItem, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, loadSnapshotSQL, sessionID, cartKey).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("load cart snapshot", err)
	}
	items, err := cart.DecodeItems(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "decode cart snapshot for %s", sessionID)
	}
	return items, nil
}

// Save replaces the snapshot. An empty cart removes it.
func (s *CartStore) Save(ctx context.Context, sessionID string, items []cart.LineItem) error {
	if len(items) == 0 {
		_, err := s.pool.Exec(ctx, deleteSnapshotSQL, sessionID, cartKey)
		return classify("delete cart snapshot", err)
	}
	_, err := s.pool.Exec(ctx, saveSnapshotSQL, sessionID, cartKey, cart.EncodeItems(items))
	return classify("save cart snapshot", err)
}
