package repos

import (
	"context"
	"time"

	"localbazaar/internal/domain"

	"github.com/jmoiron/sqlx"
)

type StatsRepo struct{ db *sqlx.DB }

func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

// Overview counts the platform totals plus what was created since `since`.
func (r *StatsRepo) Overview(ctx context.Context, since time.Time) (domain.Stats, error) {
	var s domain.Stats
	counts := []struct {
		dst   *int
		query string
		args  []any
	}{
		{&s.TotalUsers, `SELECT COUNT(*) FROM users WHERE is_active = 1`, nil},
		{&s.TotalListings, `SELECT COUNT(*) FROM listings WHERE status <> 'deleted'`, nil},
		{&s.TotalOrders, `SELECT COUNT(*) FROM orders`, nil},
		{&s.PendingReports, `SELECT COUNT(*) FROM reports WHERE status = 'pending'`, nil},
		{&s.NewUsers, `SELECT COUNT(*) FROM users WHERE created_at >= ?`, []any{since}},
		{&s.NewListings, `SELECT COUNT(*) FROM listings WHERE created_at >= ?`, []any{since}},
		{&s.NewOrders, `SELECT COUNT(*) FROM orders WHERE created_at >= ?`, []any{since}},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dst, c.query, c.args...); err != nil {
			return domain.Stats{}, err
		}
	}
	return s, nil
}
