package services

import (
	"context"
	"errors"
	"fmt"

	"localbazaar/internal/domain"
	"localbazaar/internal/repos"
	"localbazaar/internal/validate"

	"github.com/shopspring/decimal"
)

const maxCartQty = 50

type CartService struct {
	Carts    *repos.CartRepo
	Listings *repos.ListingRepo
	Orders   *OrderService
}

func NewCartService(carts *repos.CartRepo, listings *repos.ListingRepo, orders *OrderService) *CartService {
	return &CartService{Carts: carts, Listings: listings, Orders: orders}
}

func (s *CartService) Add(ctx context.Context, u *domain.User, listingID string, qty int) error {
	l, err := s.Listings.Get(ctx, listingID)
	if err != nil {
		return lookup(err, ErrListingNotFound)
	}
	if l.Status != domain.StatusAvailable {
		return ErrNotAvailable
	}
	if l.SellerID == u.ID {
		return ErrSelfInquiry
	}
	return s.Carts.UpsertItem(ctx, u.ID, listingID, validate.ClampQty(qty), maxCartQty, l.Price)
}

func (s *CartService) Remove(ctx context.Context, u *domain.User, listingID string) error {
	return s.Carts.Remove(ctx, u.ID, listingID)
}

func (s *CartService) Clear(ctx context.Context, u *domain.User) error {
	return s.Carts.Clear(ctx, u.ID)
}

type CartView struct {
	Items []repos.CartItemRow `json:"items"`
	Total decimal.Decimal     `json:"total"`
}

func (s *CartService) View(ctx context.Context, u *domain.User) (CartView, error) {
	items, err := s.Carts.Items(ctx, u.ID)
	if err != nil {
		return CartView{}, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return CartView{Items: items, Total: total}, nil
}

type SkippedItem struct {
	ListingID string `json:"listingId"`
	Reason    string `json:"reason"`
}

type CheckoutResult struct {
	Orders  []domain.Order `json:"orders"`
	Skipped []SkippedItem  `json:"skipped"`
}

// Checkout turns every cart line into an inquiry to its seller. Lines that
// break an inquiry rule stay in the cart and are reported as skipped.
func (s *CartService) Checkout(ctx context.Context, u *domain.User, message string) (*CheckoutResult, error) {
	if len(message) > 500 {
		return nil, validate.Fail("message", "must be at most 500 characters")
	}
	items, err := s.Carts.Items(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	res := &CheckoutResult{Orders: []domain.Order{}, Skipped: []SkippedItem{}}
	for _, it := range items {
		msg := message
		if msg == "" {
			msg = fmt.Sprintf("Order from cart - Qty %d - %s", it.Qty, it.Title)
		}
		o, err := s.Orders.Create(ctx, u, CreateOrderInput{ListingID: it.ListingID, Message: msg})
		if err != nil {
			if IsRuleViolation(err) || errors.Is(err, ErrNotFound) {
				res.Skipped = append(res.Skipped, SkippedItem{ListingID: it.ListingID, Reason: err.Error()})
				continue
			}
			return res, err
		}
		res.Orders = append(res.Orders, *o)
		if err := s.Carts.Remove(ctx, u.ID, it.ListingID); err != nil {
			return res, err
		}
	}
	return res, nil
}
