package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            string          `db:"id" json:"id"`
	FirebaseUID   string          `db:"firebase_uid" json:"firebaseUid"`
	Email         string          `db:"email" json:"email"`
	Name          string          `db:"name" json:"name"`
	Phone         string          `db:"phone" json:"phone"`
	Campus        string          `db:"campus" json:"campus"`
	ProfileImage  string          `db:"profile_image" json:"profileImage"`
	TotalListings int             `db:"total_listings" json:"totalListings"`
	TotalSales    int             `db:"total_sales" json:"totalSales"`
	WalletBalance decimal.Decimal `db:"wallet_balance" json:"walletBalance"`
	IsActive      bool            `db:"is_active" json:"isActive"`
	IsVerified    bool            `db:"is_verified" json:"isVerified"`
	IsAdmin       bool            `db:"is_admin" json:"isAdmin"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the public face of a user shown next to listings and orders.
type UserSummary struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	Phone        string `db:"phone" json:"phone"`
	Campus       string `db:"campus" json:"campus"`
	ProfileImage string `db:"profile_image" json:"profileImage"`
}

type UserFilter struct {
	Search   string
	Campus   string
	IsActive *bool
}
