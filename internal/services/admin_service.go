package services

import (
	"context"
	"time"

	"localbazaar/internal/domain"
	"localbazaar/internal/repos"
)

// recentWindow bounds the "new in the last N days" figures.
const recentWindow = 30 * 24 * time.Hour

const detailLimit = 10

type AdminService struct {
	Users    *repos.UserRepo
	Listings *ListingService
	Orders   *repos.OrderRepo
	Stats    *repos.StatsRepo
}

func NewAdminService(users *repos.UserRepo, listings *ListingService, orders *repos.OrderRepo, stats *repos.StatsRepo) *AdminService {
	return &AdminService{Users: users, Listings: listings, Orders: orders, Stats: stats}
}

// Authorize is the capability gate in front of every admin operation.
func (s *AdminService) Authorize(u *domain.User) error {
	if u == nil {
		return ErrUnauthenticated
	}
	if !u.IsAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *AdminService) Overview(ctx context.Context) (domain.Stats, error) {
	return s.Stats.Overview(ctx, time.Now().UTC().Add(-recentWindow))
}

type UserPage struct {
	Users      []domain.User     `json:"users"`
	Pagination domain.Pagination `json:"pagination"`
}

func (s *AdminService) ListUsers(ctx context.Context, f domain.UserFilter, p domain.Page) (*UserPage, error) {
	p = normalizePage(p)
	users, total, err := s.Users.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Pagination: domain.NewPagination(total, p)}, nil
}

type UserDetail struct {
	User         *domain.User     `json:"user"`
	Listings     []domain.Listing `json:"products"`
	BuyerOrders  []domain.Order   `json:"buyerOrders"`
	SellerOrders []domain.Order   `json:"sellerOrders"`
}

// GetUser returns the user with their most recent listings and orders.
func (s *AdminService) GetUser(ctx context.Context, id string) (*UserDetail, error) {
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound)
	}
	d := &UserDetail{User: u}
	if d.Listings, err = s.Listings.Listings.RecentBySeller(ctx, id, detailLimit); err != nil {
		return nil, err
	}
	if d.BuyerOrders, err = s.Orders.ListByBuyer(ctx, id, detailLimit); err != nil {
		return nil, err
	}
	if d.SellerOrders, err = s.Orders.ListBySeller(ctx, id, detailLimit); err != nil {
		return nil, err
	}
	return d, nil
}

// SetUserActive suspends or reinstates a user. Admins cannot suspend
// themselves.
func (s *AdminService) SetUserActive(ctx context.Context, admin *domain.User, id string, active bool) (*domain.User, error) {
	if admin.ID == id && !active {
		return nil, ErrForbidden
	}
	if _, err := s.Users.ByID(ctx, id); err != nil {
		return nil, lookup(err, ErrUserNotFound)
	}
	if err := s.Users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.Users.ByID(ctx, id)
}

// ListListings browses every listing, deleted ones included unless a status
// is given.
func (s *AdminService) ListListings(ctx context.Context, q ListQuery) (*ListingPage, error) {
	if len(q.Filter.Statuses) == 0 {
		q.Filter.Statuses = []string{domain.StatusAvailable, domain.StatusSold, domain.StatusReserved, domain.StatusDeleted}
	}
	return s.Listings.page(ctx, q)
}

func (s *AdminService) DeleteListing(ctx context.Context, id string) error {
	return s.Listings.AdminDelete(ctx, id)
}

// GrantAdmin gives the user with email the admin capability.
func (s *AdminService) GrantAdmin(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound)
	}
	if err := s.Users.SetAdmin(ctx, u.ID, true); err != nil {
		return nil, err
	}
	return s.Users.ByID(ctx, u.ID)
}
