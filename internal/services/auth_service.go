package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"localbazaar/internal/domain"
	"localbazaar/internal/identity"
	"localbazaar/internal/repos"
	"localbazaar/internal/validate"

	"github.com/google/uuid"
)

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService {
	return &AuthService{Users: users}
}

type RegisterInput struct {
	Name         string `json:"name" validate:"required,max=50"`
	Phone        string `json:"phone" validate:"omitempty,phone"`
	Campus       string `json:"campus" validate:"required,max=100"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
}

type ProfileInput struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=50"`
	Phone        *string `json:"phone" validate:"omitempty,phone"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,url"`
}

// Resolve maps a verified subject to its local user.
func (s *AuthService) Resolve(ctx context.Context, subject string) (*domain.User, error) {
	if subject == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.Users.BySubject(ctx, subject)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound)
	}
	return u, nil
}

// Login is Resolve under the name the client uses on sign-in.
func (s *AuthService) Login(ctx context.Context, subject string) (*domain.User, error) {
	return s.Resolve(ctx, subject)
}

// Register creates the local user for a verified identity. Each identity maps
// to at most one user, permanently.
func (s *AuthService) Register(ctx context.Context, id identity.Identity, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Campus = strings.TrimSpace(in.Campus)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if id.Email == "" {
		return nil, validate.Fail("email", "verified identity carries no email")
	}

	if _, err := s.Users.BySubject(ctx, id.Subject); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, err := s.Users.ByEmail(ctx, id.Email); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.NewString(),
		FirebaseUID:  id.Subject,
		Email:        strings.ToLower(id.Email),
		Name:         in.Name,
		Phone:        in.Phone,
		Campus:       in.Campus,
		ProfileImage: in.ProfileImage,
		IsActive:     true,
		IsVerified:   id.EmailVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.Users.ByID(ctx, u.ID)
}

// UpdateProfile changes only the supplied fields.
func (s *AuthService) UpdateProfile(ctx context.Context, u *domain.User, in ProfileInput) (*domain.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	name, phone, image := u.Name, u.Phone, u.ProfileImage
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		phone = strings.TrimSpace(*in.Phone)
	}
	if in.ProfileImage != nil {
		image = *in.ProfileImage
	}
	if err := s.Users.UpdateProfile(ctx, u.ID, name, phone, image); err != nil {
		return nil, err
	}
	return s.Users.ByID(ctx, u.ID)
}
