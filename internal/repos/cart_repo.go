package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartItemRow struct {
	ListingID  string          `db:"listing_id" json:"listingId"`
	Title      string          `db:"title" json:"title"`
	Condition  string          `db:"condition" json:"condition"`
	Status     string          `db:"status" json:"status"`
	Qty        int             `db:"qty" json:"qty"`
	PriceAtAdd decimal.Decimal `db:"price_at_add" json:"priceAtAdd"`
}

func (it CartItemRow) Subtotal() decimal.Decimal {
	return it.PriceAtAdd.Mul(decimal.NewFromInt(int64(it.Qty)))
}

// UpsertItem adds qty of a listing to the user's cart, accumulating onto an
// existing line and capping the line at maxQty.
func (r *CartRepo) UpsertItem(ctx context.Context, userID, listingID string, qty, maxQty int, price decimal.Decimal) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items(user_id, listing_id, qty, price_at_add, created_at, updated_at)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT(user_id, listing_id) DO UPDATE
		SET qty = MIN(cart_items.qty + excluded.qty, ?), updated_at = excluded.updated_at
	`, userID, listingID, qty, price, now, now, maxQty)
	return err
}

func (r *CartRepo) Items(ctx context.Context, userID string) ([]CartItemRow, error) {
	out := []CartItemRow{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT ci.listing_id, l.title, l.condition, l.status, ci.qty, ci.price_at_add
	  FROM cart_items ci JOIN listings l ON l.id = ci.listing_id
	  WHERE ci.user_id = ?
	  ORDER BY ci.created_at
	`, userID)
	return out, err
}

func (r *CartRepo) Remove(ctx context.Context, userID, listingID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id=? AND listing_id=?`, userID, listingID)
	return err
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
