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
	"github.com/shopspring/decimal"
)

type ListingService struct {
	Listings *repos.ListingRepo
}

func NewListingService(listings *repos.ListingRepo) *ListingService {
	return &ListingService{Listings: listings}
}

type CreateListingInput struct {
	Title       string           `json:"title" validate:"required,max=100"`
	Description string           `json:"description" validate:"required,max=1000"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Category    string           `json:"category" validate:"required,category"`
	Condition   string           `json:"condition" validate:"required,condition"`
	Images      []string         `json:"images" validate:"min=1,max=5,dive,required"`
}

// UpdateListingInput is a partial update; nil fields are left alone.
type UpdateListingInput struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description" validate:"omitempty,min=1,max=1000"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Category    *string          `json:"category" validate:"omitempty,category"`
	Condition   *string          `json:"condition" validate:"omitempty,condition"`
	Images      []string         `json:"images" validate:"omitempty,min=1,max=5,dive,required"`
	Status      *string          `json:"status" validate:"omitempty,oneof=available sold reserved"`
}

type ListQuery struct {
	Filter domain.ListingFilter
	Sort   domain.Sort
	Page   domain.Page
}

type ListingPage struct {
	Listings   []domain.Listing  `json:"products"`
	Pagination domain.Pagination `json:"pagination"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func normalizePage(p domain.Page) domain.Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (s *ListingService) page(ctx context.Context, q ListQuery) (*ListingPage, error) {
	q.Page = normalizePage(q.Page)
	if q.Sort.Field == "" {
		q.Sort = domain.Sort{Field: "created_at", Desc: true}
	}
	out, total, err := s.Listings.List(ctx, q.Filter, q.Sort, q.Page)
	if err != nil {
		return nil, err
	}
	return &ListingPage{Listings: out, Pagination: domain.NewPagination(total, q.Page)}, nil
}

// List is the public browse: only available listings are ever returned.
func (s *ListingService) List(ctx context.Context, q ListQuery) (*ListingPage, error) {
	q.Filter.Statuses = []string{domain.StatusAvailable}
	q.Filter.SellerID = ""
	return s.page(ctx, q)
}

// ListByUser shows a seller's listings to anyone. status defaults to
// available; "all" means every non-deleted status.
func (s *ListingService) ListByUser(ctx context.Context, userID, status string, p domain.Page) (*ListingPage, error) {
	f := domain.ListingFilter{SellerID: userID}
	switch status {
	case "":
		f.Statuses = []string{domain.StatusAvailable}
	case "all":
	case domain.StatusAvailable, domain.StatusSold, domain.StatusReserved:
		f.Statuses = []string{status}
	default:
		return nil, validate.Fail("status", "must be one of: available, sold, reserved, all")
	}
	return s.page(ctx, ListQuery{Filter: f, Page: p})
}

// ListMine shows the caller's own listings, deleted ones only on request.
func (s *ListingService) ListMine(ctx context.Context, u *domain.User, status string, p domain.Page) (*ListingPage, error) {
	f := domain.ListingFilter{SellerID: u.ID}
	switch status {
	case "", "all":
	case domain.StatusAvailable, domain.StatusSold, domain.StatusReserved, domain.StatusDeleted:
		f.Statuses = []string{status}
	default:
		return nil, validate.Fail("status", "must be one of: available, sold, reserved, deleted, all")
	}
	return s.page(ctx, ListQuery{Filter: f, Page: p})
}

func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := s.Listings.Get(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrListingNotFound)
	}
	return l, nil
}

// View is the public detail fetch. Every call counts as a view.
func (s *ListingService) View(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == domain.StatusDeleted {
		return nil, ErrListingNotFound
	}
	if err := s.Listings.IncrementView(ctx, id); err != nil {
		return nil, err
	}
	l.Views++
	return l, nil
}

func (s *ListingService) Create(ctx context.Context, seller *domain.User, in CreateListingInput) (*domain.Listing, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	l := &domain.Listing{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		Category:    in.Category,
		Condition:   in.Condition,
		Images:      domain.StringList(in.Images),
		SellerID:    seller.ID,
		Status:      domain.StatusAvailable,
		Campus:      seller.Campus,
		Keywords:    domain.Keywords(in.Title, in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Listings.Create(ctx, l); err != nil {
		return nil, err
	}
	metrics.ListingsCreated.Inc()
	return s.Get(ctx, l.ID)
}

// owned loads a live listing and checks that actor is its seller.
func (s *ListingService) owned(ctx context.Context, actor *domain.User, id string) (*domain.Listing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == domain.StatusDeleted {
		return nil, ErrListingNotFound
	}
	if l.SellerID != actor.ID {
		return nil, ErrForbidden
	}
	return l, nil
}

func (s *ListingService) Update(ctx context.Context, actor *domain.User, id string, in UpdateListingInput) (*domain.Listing, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	l, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	textChanged := false
	if in.Title != nil {
		l.Title = strings.TrimSpace(*in.Title)
		textChanged = true
	}
	if in.Description != nil {
		l.Description = strings.TrimSpace(*in.Description)
		textChanged = true
	}
	if in.Price != nil {
		l.Price = *in.Price
	}
	if in.Category != nil {
		l.Category = *in.Category
	}
	if in.Condition != nil {
		l.Condition = *in.Condition
	}
	if in.Images != nil {
		l.Images = domain.StringList(in.Images)
	}
	if in.Status != nil {
		l.Status = *in.Status
	}
	if textChanged {
		l.Keywords = domain.Keywords(l.Title, l.Description)
	}
	l.UpdatedAt = time.Now().UTC()

	if err := s.Listings.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete is the seller's soft delete.
func (s *ListingService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	_, err := s.Listings.Remove(ctx, id)
	return lookup(err, ErrListingNotFound)
}

// AdminDelete removes any listing regardless of owner. The seller's listing
// counter is decremented exactly as for a seller delete; repeating the call
// is a no-op.
func (s *ListingService) AdminDelete(ctx context.Context, id string) error {
	_, err := s.Listings.Remove(ctx, id)
	return lookup(err, ErrListingNotFound)
}
