package services

import (
	"context"

	"localbazaar/internal/domain"
	"localbazaar/internal/repos"
)

type WishlistService struct {
	Wishlists *repos.WishlistRepo
	Listings  *repos.ListingRepo
}

func NewWishlistService(w *repos.WishlistRepo, listings *repos.ListingRepo) *WishlistService {
	return &WishlistService{Wishlists: w, Listings: listings}
}

// Save is idempotent.
func (s *WishlistService) Save(ctx context.Context, u *domain.User, listingID string) error {
	l, err := s.Listings.Get(ctx, listingID)
	if err != nil {
		return lookup(err, ErrListingNotFound)
	}
	if l.Status == domain.StatusDeleted {
		return ErrListingNotFound
	}
	return s.Wishlists.Add(ctx, u.ID, listingID)
}

func (s *WishlistService) Unsave(ctx context.Context, u *domain.User, listingID string) error {
	return s.Wishlists.Remove(ctx, u.ID, listingID)
}

func (s *WishlistService) List(ctx context.Context, u *domain.User) ([]repos.WishlistRow, error) {
	return s.Wishlists.List(ctx, u.ID)
}
