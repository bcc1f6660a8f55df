package repos

import (
	"context"
	"strings"
	"time"

	"localbazaar/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, firebase_uid, email, name, phone, campus, profile_image,
	total_listings, total_sales, wallet_balance, is_active, is_verified, is_admin,
	created_at, updated_at`

func (r *UserRepo) BySubject(ctx context.Context, subject string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE firebase_uid=?`, subject)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	return userByID(ctx, r.DB, id)
}

func userByID(ctx context.Context, q execer, id string) (*domain.User, error) {
	var u domain.User
	err := q.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u with zeroed counters. Counter fields on u are ignored.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users(id, firebase_uid, email, name, phone, campus, profile_image,
		                  total_listings, total_sales, wallet_balance,
		                  is_active, is_verified, is_admin, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?, 0,0,0, ?,?,?, ?,?)
	`, u.ID, u.FirebaseUID, u.Email, u.Name, u.Phone, u.Campus, u.ProfileImage,
		u.IsActive, u.IsVerified, u.IsAdmin, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id, name, phone, image string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET name=?, phone=?, profile_image=?, updated_at=? WHERE id=?
	`, name, phone, image, time.Now().UTC(), id)
	return err
}

func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) error {
	return setUserActive(ctx, r.DB, id, active)
}

func setUserActive(ctx context.Context, q execer, id string, active bool) error {
	_, err := q.ExecContext(ctx, `UPDATE users SET is_active=?, updated_at=? WHERE id=?`,
		active, time.Now().UTC(), id)
	return err
}

func (r *UserRepo) SetAdmin(ctx context.Context, id string, admin bool) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET is_admin=?, updated_at=? WHERE id=?`,
		admin, time.Now().UTC(), id)
	return err
}

// List pages through users matching f, newest first.
func (r *UserRepo) List(ctx context.Context, f domain.UserFilter, p domain.Page) ([]domain.User, int, error) {
	where := `1=1`
	args := []any{}
	if f.Search != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ?)`
		like := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, like, like)
	}
	if f.Campus != "" {
		where += ` AND campus = ?`
		args = append(args, f.Campus)
	}
	if f.IsActive != nil {
		where += ` AND is_active = ?`
		args = append(args, *f.IsActive)
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE `+where, args...); err != nil {
		return nil, 0, err
	}
	out := []domain.User{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT `+userCols+` FROM users
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, append(args, p.Limit, p.Offset())...)
	return out, total, err
}

// adjustListings moves total_listings by delta without going below zero.
func adjustListings(ctx context.Context, q execer, userID string, delta int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE users SET total_listings = MAX(total_listings + ?, 0), updated_at=? WHERE id=?
	`, delta, time.Now().UTC(), userID)
	return err
}

func incrementSales(ctx context.Context, q execer, userID string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE users SET total_sales = total_sales + 1, updated_at=? WHERE id=?
	`, time.Now().UTC(), userID)
	return err
}
