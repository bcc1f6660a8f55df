package repos

import (
	"context"

	"localbazaar/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// AvailableCounts returns every known category with its number of available
// listings, in catalogue order. Categories with no listings report zero.
func (r *CategoryRepo) AvailableCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	var rows []domain.CategoryCount
	if err := r.db.SelectContext(ctx, &rows, `
	  SELECT category AS name, COUNT(*) AS count
	  FROM listings
	  WHERE status = 'available'
	  GROUP BY category
	`); err != nil {
		return nil, err
	}
	byName := make(map[string]int, len(rows))
	for _, row := range rows {
		byName[row.Name] = row.Count
	}
	out := make([]domain.CategoryCount, 0, len(domain.Categories))
	for _, name := range domain.Categories {
		out = append(out, domain.CategoryCount{Name: name, Count: byName[name]})
	}
	return out, nil
}
