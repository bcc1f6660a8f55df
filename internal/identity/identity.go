// Package identity verifies bearer credentials issued by the external identity
// provider and yields the subject they were issued to.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned for any credential that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
