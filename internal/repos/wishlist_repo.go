package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type WishlistRepo struct{ db *sqlx.DB }

func NewWishlistRepo(db *sqlx.DB) *WishlistRepo { return &WishlistRepo{db: db} }

func (r *WishlistRepo) Add(ctx context.Context, userID, listingID string) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO wishlist_items(user_id, listing_id, created_at)
	  VALUES(?, ?, ?)
	  ON CONFLICT(user_id, listing_id) DO NOTHING
	`, userID, listingID, time.Now().UTC())
	return err
}

func (r *WishlistRepo) Remove(ctx context.Context, userID, listingID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE user_id=? AND listing_id=?`, userID, listingID)
	return err
}

type WishlistRow struct {
	ListingID string          `db:"listing_id" json:"listingId"`
	Title     string          `db:"title" json:"title"`
	Condition string          `db:"condition" json:"condition"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Status    string          `db:"status" json:"status"`
	SavedAt   time.Time       `db:"saved_at" json:"savedAt"`
}

// List returns saved listings, most recently saved first. Deleted listings
// are left out.
func (r *WishlistRepo) List(ctx context.Context, userID string) ([]WishlistRow, error) {
	out := []WishlistRow{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT l.id AS listing_id, l.title, l.condition, l.price, l.status, wi.created_at AS saved_at
	  FROM wishlist_items wi
	  JOIN listings l ON l.id = wi.listing_id
	  WHERE wi.user_id = ? AND l.status <> 'deleted'
	  ORDER BY wi.created_at DESC
	`, userID)
	return out, err
}
