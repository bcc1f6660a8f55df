package repos

import (
	"context"
	"time"

	"localbazaar/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SeedDemo inserts a small demo campus (an admin, a seller, a buyer and a few
// listings) when the users table is empty. Safe to run on every start.
func SeedDemo(ctx context.Context, db *sqlx.DB) (bool, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	users := []domain.User{
		{ID: "u-admin", FirebaseUID: "demo-admin", Email: "admin@campus.test", Name: "Admin", Campus: "Main", IsActive: true, IsVerified: true, IsAdmin: true},
		{ID: "u-sam", FirebaseUID: "demo-seller", Email: "sam@campus.test", Name: "Sam", Campus: "Main", IsActive: true, IsVerified: true},
		{ID: "u-bea", FirebaseUID: "demo-buyer", Email: "bea@campus.test", Name: "Bea", Campus: "North", IsActive: true, IsVerified: true},
	}
	listings := []domain.Listing{
		{ID: "l-lamp", Title: "Used Lamp", Description: "Desk lamp, warm bulb included", Price: decimal.NewFromInt(500), Category: "Other", Condition: "Good"},
		{ID: "l-calc", Title: "Graphing Calculator", Description: "TI-84, works fine", Price: decimal.NewFromInt(1800), Category: "Electronics", Condition: "Like New"},
		{ID: "l-book", Title: "Intro to Algorithms", Description: "Third edition hardcover", Price: decimal.NewFromInt(900), Category: "Books", Condition: "Fair"},
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range users {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users(id, firebase_uid, email, name, campus, is_active, is_verified, is_admin, created_at, updated_at)
			VALUES(?,?,?,?,?,?,?,?,?,?)
		`, u.ID, u.FirebaseUID, u.Email, u.Name, u.Campus, u.IsActive, u.IsVerified, u.IsAdmin, now, now); err != nil {
			return false, err
		}
	}
	for _, l := range listings {
		l.Images = domain.StringList{"https://media.campus.test/" + l.ID + ".jpg"}
		l.Keywords = domain.Keywords(l.Title, l.Description)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO listings(id, title, description, price, category, condition, images,
			                     seller_id, status, campus, keywords, created_at, updated_at)
			VALUES(?,?,?,?,?,?,?,'u-sam','available','Main',?,?,?)
		`, l.ID, l.Title, l.Description, l.Price, l.Category, l.Condition, l.Images, l.Keywords, now, now); err != nil {
			return false, err
		}
		if err := adjustListings(ctx, tx, "u-sam", 1); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}
