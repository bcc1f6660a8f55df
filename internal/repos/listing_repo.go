package repos

import (
	"context"
	"strings"
	"time"

	"localbazaar/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ListingRepo struct{ db *sqlx.DB }

func NewListingRepo(db *sqlx.DB) *ListingRepo { return &ListingRepo{db: db} }

const listingSelect = `
  SELECT
    l.id, l.title, l.description, l.price, l.category, l.condition, l.images,
    l.seller_id, l.status, l.views, l.campus, l.keywords, l.created_at, l.updated_at,
    u.id AS "seller.id", u.name AS "seller.name", u.email AS "seller.email",
    u.phone AS "seller.phone", u.campus AS "seller.campus",
    u.profile_image AS "seller.profile_image"
  FROM listings l
  JOIN users u ON u.id = l.seller_id`

// sortColumns whitelists ORDER BY targets.
var sortColumns = map[string]string{
	"created_at": "l.created_at",
	"price":      "l.price",
	"views":      "l.views",
}

// Create inserts l and bumps the seller's listing counter in one transaction.
func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO listings(id, title, description, price, category, condition, images,
			                     seller_id, status, views, campus, keywords, created_at, updated_at)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		`, l.ID, l.Title, l.Description, l.Price, l.Category, l.Condition, l.Images,
			l.SellerID, l.Status, l.Views, l.Campus, l.Keywords, l.CreatedAt, l.UpdatedAt); err != nil {
			return err
		}
		return adjustListings(ctx, tx, l.SellerID, 1)
	})
}

func (r *ListingRepo) Get(ctx context.Context, id string) (*domain.Listing, error) {
	return listingByID(ctx, r.db, id)
}

func listingByID(ctx context.Context, q execer, id string) (*domain.Listing, error) {
	var l domain.Listing
	if err := q.GetContext(ctx, &l, listingSelect+` WHERE l.id = ?`, id); err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns one page of listings matching f plus the total match count.
func (r *ListingRepo) List(ctx context.Context, f domain.ListingFilter, s domain.Sort, p domain.Page) ([]domain.Listing, int, error) {
	where, args := listingWhere(f)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM listings l WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[s.Field]
	if !ok {
		col = sortColumns["created_at"]
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	q := listingSelect + `
  WHERE ` + where + `
  ORDER BY ` + col + ` ` + dir + `, l.id
  LIMIT ? OFFSET ?`

	out := []domain.Listing{}
	err := r.db.SelectContext(ctx, &out, q, append(args, p.Limit, p.Offset())...)
	return out, total, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func listingWhere(f domain.ListingFilter) (string, []any) {
	where := `1=1`
	args := []any{}
	if len(f.Statuses) > 0 {
		where += ` AND l.status IN (?` + strings.Repeat(`,?`, len(f.Statuses)-1) + `)`
		for _, st := range f.Statuses {
			args = append(args, st)
		}
	} else {
		where += ` AND l.status <> 'deleted'`
	}
	if f.Keyword != "" {
		where += ` AND (LOWER(l.title) LIKE ? ESCAPE '\' OR LOWER(l.description) LIKE ? ESCAPE '\')`
		like := "%" + likeEscaper.Replace(strings.ToLower(f.Keyword)) + "%"
		args = append(args, like, like)
	}
	if f.Category != "" {
		where += ` AND l.category = ?`
		args = append(args, f.Category)
	}
	if f.Condition != "" {
		where += ` AND l.condition = ?`
		args = append(args, f.Condition)
	}
	if f.MinPrice != nil {
		where += ` AND l.price >= ?`
		args = append(args, f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		where += ` AND l.price <= ?`
		args = append(args, f.MaxPrice.InexactFloat64())
	}
	if f.Campus != "" {
		where += ` AND l.campus = ?`
		args = append(args, f.Campus)
	}
	if f.SellerID != "" {
		where += ` AND l.seller_id = ?`
		args = append(args, f.SellerID)
	}
	return where, args
}

// Update writes the editable fields of l.
func (r *ListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET title=?, description=?, price=?, category=?, condition=?, images=?,
		    status=?, keywords=?, updated_at=?
		WHERE id=?
	`, l.Title, l.Description, l.Price, l.Category, l.Condition, l.Images,
		l.Status, l.Keywords, l.UpdatedAt, l.ID)
	return err
}

// Remove tombstones a listing and decrements its seller's counter. It
// reports false when the listing was already deleted.
func (r *ListingRepo) Remove(ctx context.Context, id string) (bool, error) {
	var changed bool
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		changed, err = removeListing(ctx, tx, id)
		return err
	})
	return changed, err
}

func removeListing(ctx context.Context, q execer, id string) (bool, error) {
	var sellerID string
	if err := q.GetContext(ctx, &sellerID, `SELECT seller_id FROM listings WHERE id=?`, id); err != nil {
		return false, err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE listings SET status='deleted', updated_at=? WHERE id=? AND status <> 'deleted'
	`, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil || n == 0 {
		return false, err
	}
	return true, adjustListings(ctx, q, sellerID, -1)
}

// IncrementView bumps the raw hit counter.
func (r *ListingRepo) IncrementView(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE listings SET views = views + 1 WHERE id=?`, id)
	return err
}

// markSold flags a listing sold unless it has been removed meanwhile.
func markSold(ctx context.Context, q execer, id string) error {
	_, err := q.ExecContext(ctx, `UPDATE listings SET status='sold', updated_at=? WHERE id=? AND status <> 'deleted'`,
		time.Now().UTC(), id)
	return err
}

// RecentBySeller returns the seller's latest non-deleted listings.
func (r *ListingRepo) RecentBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Listing, error) {
	out := []domain.Listing{}
	err := r.db.SelectContext(ctx, &out, listingSelect+`
  WHERE l.seller_id = ? AND l.status <> 'deleted'
  ORDER BY l.created_at DESC
  LIMIT ?`, sellerID, limit)
	return out, err
}
