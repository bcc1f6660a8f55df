package services

import (
	"context"
	"strings"
	"time"

	"localbazaar/internal/domain"
	"localbazaar/internal/metrics"
	"localbazaar/internal/repos"
	"localbazaar/internal/validate"

	"github.com/google/uuid"
)

type OrderService struct {
	Orders   *repos.OrderRepo
	Listings *repos.ListingRepo
}

func NewOrderService(orders *repos.OrderRepo, listings *repos.ListingRepo) *OrderService {
	return &OrderService{Orders: orders, Listings: listings}
}

type Contact struct {
	Phone string `json:"phone" validate:"omitempty,phone"`
	Email string `json:"email" validate:"omitempty,email"`
}

type CreateOrderInput struct {
	ListingID    string   `json:"productId" validate:"required"`
	Message      string   `json:"message" validate:"max=500"`
	BuyerContact *Contact `json:"buyerContact"`
}

// OrderStatusInput moves an order. A nil SellerNotes keeps the current notes;
// an empty or blank one clears them.
type OrderStatusInput struct {
	Status      string  `json:"status" validate:"required,order_status"`
	SellerNotes *string `json:"sellerNotes" validate:"omitempty,max=500"`
}

// Create records a buyer's inquiry on an available listing. The listing's
// current price is frozen into the order amount.
func (s *OrderService) Create(ctx context.Context, buyer *domain.User, in CreateOrderInput) (*domain.Order, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	l, err := s.Listings.Get(ctx, in.ListingID)
	if err != nil {
		return nil, lookup(err, ErrListingNotFound)
	}
	if l.Status != domain.StatusAvailable {
		return nil, ErrNotAvailable
	}
	if l.SellerID == buyer.ID {
		return nil, ErrSelfInquiry
	}

	contact := Contact{Phone: buyer.Phone, Email: buyer.Email}
	if in.BuyerContact != nil {
		if in.BuyerContact.Phone != "" {
			contact.Phone = in.BuyerContact.Phone
		}
		if in.BuyerContact.Email != "" {
			contact.Email = in.BuyerContact.Email
		}
	}

	now := time.Now().UTC()
	o := &domain.Order{
		ID:            uuid.NewString(),
		ListingID:     l.ID,
		BuyerID:       buyer.ID,
		SellerID:      l.SellerID,
		Status:        domain.OrderPending,
		Message:       in.Message,
		BuyerPhone:    contact.Phone,
		BuyerEmail:    contact.Email,
		Amount:        l.Price,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	metrics.OrderStatus.WithLabelValues(domain.OrderPending).Inc()
	return s.load(ctx, o.ID)
}

func (s *OrderService) load(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrOrderNotFound)
	}
	return o, nil
}

func (s *OrderService) ListForBuyer(ctx context.Context, buyer *domain.User) ([]domain.Order, error) {
	return s.Orders.ListByBuyer(ctx, buyer.ID, 0)
}

func (s *OrderService) ListForSeller(ctx context.Context, seller *domain.User) ([]domain.Order, error) {
	return s.Orders.ListBySeller(ctx, seller.ID, 0)
}

// Get returns the order only to its buyer or seller.
func (s *OrderService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != actor.ID && o.SellerID != actor.ID {
		return nil, ErrForbidden
	}
	return o, nil
}

// SetStatus moves the order along its lifecycle on the seller's behalf.
// Completing an order marks the listing sold and counts a sale for the seller.
func (s *OrderService) SetStatus(ctx context.Context, actor *domain.User, id string, in OrderStatusInput) (*domain.Order, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.SellerID != actor.ID {
		return nil, ErrForbidden
	}
	if !domain.OrderCanMove(o.Status, in.Status) {
		return nil, ErrInvalidTransition
	}
	notes := o.SellerNotes
	if in.SellerNotes != nil {
		notes = strings.TrimSpace(*in.SellerNotes)
	}
	if err := s.Orders.UpdateStatus(ctx, o, in.Status, notes); err != nil {
		return nil, err
	}
	metrics.OrderStatus.WithLabelValues(in.Status).Inc()
	return s.load(ctx, id)
}
