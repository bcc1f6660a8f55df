package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type CounterDrift struct {
	UserID         string `db:"id"`
	StoredListings int    `db:"total_listings"`
	ActualListings int    `db:"actual_listings"`
	StoredSales    int    `db:"total_sales"`
	ActualSales    int    `db:"actual_sales"`
}

type ReconcileRepo struct{ db *sqlx.DB }

func NewReconcileRepo(db *sqlx.DB) *ReconcileRepo { return &ReconcileRepo{db: db} }

const (
	actualListingsSQL = `(SELECT COUNT(*) FROM listings l WHERE l.seller_id = users.id AND l.status <> 'deleted')`
	actualSalesSQL    = `(SELECT COUNT(*) FROM orders o WHERE o.seller_id = users.id AND o.status = 'completed')`
)

// Drifted lists users whose stored counters disagree with the listings and
// orders tables.
func (r *ReconcileRepo) Drifted(ctx context.Context) ([]CounterDrift, error) {
	return drifted(ctx, r.db)
}

func drifted(ctx context.Context, q execer) ([]CounterDrift, error) {
	out := []CounterDrift{}
	err := q.SelectContext(ctx, &out, `
	  SELECT * FROM (
	    SELECT users.id, users.total_listings, users.total_sales,
	      `+actualListingsSQL+` AS actual_listings,
	      `+actualSalesSQL+` AS actual_sales
	    FROM users
	  ) t
	  WHERE t.total_listings <> t.actual_listings OR t.total_sales <> t.actual_sales
	  ORDER BY t.id
	`)
	return out, err
}

// Fix recomputes the counters of every drifted user from the listings and
// orders tables in one transaction and returns the drift it corrected.
func (r *ReconcileRepo) Fix(ctx context.Context) ([]CounterDrift, error) {
	var fixed []CounterDrift
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if fixed, err = drifted(ctx, tx); err != nil || len(fixed) == 0 {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET total_listings = `+actualListingsSQL+`, total_sales = `+actualSalesSQL+`, updated_at = ?
			WHERE total_listings <> `+actualListingsSQL+` OR total_sales <> `+actualSalesSQL,
			time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return fixed, nil
}
