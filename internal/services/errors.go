package services

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("not allowed")
	ErrSuspended         = errors.New("account is suspended")
	ErrAlreadyRegistered = errors.New("user already registered")
	ErrNotAvailable      = errors.New("listing is not available")
	ErrSelfInquiry       = errors.New("cannot inquire about your own listing")
	ErrInvalidTransition = errors.New("status change not allowed")

	ErrNotFound        = errors.New("not found")
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrListingNotFound = fmt.Errorf("listing %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrReportNotFound  = fmt.Errorf("report %w", ErrNotFound)
)

// IsRuleViolation reports whether err is a business rule the caller broke,
// as opposed to a missing entity or an internal failure.
func IsRuleViolation(err error) bool {
	for _, e := range []error{ErrAlreadyRegistered, ErrNotAvailable, ErrSelfInquiry, ErrInvalidTransition} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// lookup maps sql.ErrNoRows onto the entity's NotFound sentinel.
func lookup(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}
