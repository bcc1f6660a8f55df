package repos

import (
	"context"
	"time"

	"localbazaar/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderSelect = `
  SELECT
    o.id, o.listing_id, o.buyer_id, o.seller_id, o.status, o.message,
    o.buyer_phone, o.buyer_email, o.amount, o.payment_status,
    o.meeting_location, o.meeting_time, o.seller_notes, o.created_at, o.updated_at,
    l.id AS "listing.id", l.title AS "listing.title", l.price AS "listing.price",
    l.images AS "listing.images", l.status AS "listing.status",
    b.id AS "buyer.id", b.name AS "buyer.name", b.email AS "buyer.email",
    b.phone AS "buyer.phone", b.campus AS "buyer.campus", b.profile_image AS "buyer.profile_image",
    s.id AS "seller.id", s.name AS "seller.name", s.email AS "seller.email",
    s.phone AS "seller.phone", s.campus AS "seller.campus", s.profile_image AS "seller.profile_image"
  FROM orders o
  JOIN listings l ON l.id = o.listing_id
  JOIN users b ON b.id = o.buyer_id
  JOIN users s ON s.id = o.seller_id`

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, listing_id, buyer_id, seller_id, status, message, buyer_phone, buyer_email,
	     amount, payment_status, seller_notes, created_at, updated_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, o.ID, o.ListingID, o.BuyerID, o.SellerID, o.Status, o.Message, o.BuyerPhone, o.BuyerEmail,
		o.Amount, o.PaymentStatus, o.SellerNotes, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.GetContext(ctx, &o, orderSelect+` WHERE o.id = ?`, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Order, error) {
	return r.listBy(ctx, "o.buyer_id", buyerID, limit)
}

// ListBySeller returns orders received by the seller, newest first.
func (r *OrderRepo) ListBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Order, error) {
	return r.listBy(ctx, "o.seller_id", sellerID, limit)
}

func (r *OrderRepo) listBy(ctx context.Context, col, id string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = -1
	}
	out := []domain.Order{}
	err := r.db.SelectContext(ctx, &out, orderSelect+`
  WHERE `+col+` = ?
  ORDER BY o.created_at DESC
  LIMIT ?`, id, limit)
	return out, err
}

// UpdateStatus writes the new status and seller notes. When the order moves
// to completed, the listing is marked sold and the seller's sales counter is
// bumped in the same transaction.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *domain.Order, status, notes string) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET status=?, seller_notes=?, updated_at=? WHERE id=?
		`, status, notes, time.Now().UTC(), o.ID); err != nil {
			return err
		}
		if status != domain.OrderCompleted {
			return nil
		}
		if err := markSold(ctx, tx, o.ListingID); err != nil {
			return err
		}
		return incrementSales(ctx, tx, o.SellerID)
	})
}
