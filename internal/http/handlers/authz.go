package handlers

import (
	"errors"
	"strings"

	"localbazaar/internal/domain"
	"localbazaar/internal/identity"
	applog "localbazaar/internal/log"
	"localbazaar/internal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	localIdentity = "identity"
	localUser     = "user"
	localUserID   = "user_id"
)

func bearer(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireIdentity verifies the bearer token and stores the identity. It does
// not require a local user, so registration can pass through it.
func RequireIdentity(v identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearer(c)
		if tok == "" {
			applog.Security(c, "auth.token.missing", nil)
			return failWith(c, fiber.StatusUnauthorized, "No token provided", nil)
		}
		id, err := v.Verify(c.UserContext(), tok)
		if err != nil {
			applog.Security(c, "auth.token.invalid", map[string]any{"reason": err.Error()})
			return failWith(c, fiber.StatusUnauthorized, "Invalid or expired token", nil)
		}
		c.Locals(localIdentity, id)
		return c.Next()
	}
}

type userOpts struct {
	allowSuspended bool
}

// UserOption tunes RequireUser.
type UserOption func(*userOpts)

// AllowSuspended lets suspended users through, for routes that only read
// their own account.
func AllowSuspended() UserOption {
	return func(o *userOpts) { o.allowSuspended = true }
}

// RequireUser resolves the verified identity to its registered user. It must
// run after RequireIdentity.
func RequireUser(auth *services.AuthService, opts ...UserOption) fiber.Handler {
	var o userOpts
	for _, fn := range opts {
		fn(&o)
	}
	return func(c *fiber.Ctx) error {
		id, found := c.Locals(localIdentity).(identity.Identity)
		if !found {
			return fail(c, "auth.resolve", services.ErrUnauthenticated)
		}
		u, err := auth.Resolve(c.UserContext(), id.Subject)
		if errors.Is(err, services.ErrUserNotFound) {
			return failWith(c, fiber.StatusNotFound, "User not found. Please register first.",
				fiber.Map{"needsRegistration": true})
		}
		if err != nil {
			return fail(c, "auth.resolve", err)
		}
		c.Locals(localUser, u)
		c.Locals(localUserID, u.ID)
		if !u.IsActive && !o.allowSuspended {
			return fail(c, "auth.resolve", services.ErrSuspended)
		}
		return c.Next()
	}
}

// RequireAdmin gates a group to users with the admin capability. It must run
// after RequireUser.
func RequireAdmin(admin *services.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := admin.Authorize(currentUser(c)); err != nil {
			applog.Security(c, "access.denied.admin", nil)
			return failWith(c, fiber.StatusForbidden, "Admin access required", nil)
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(localUser).(*domain.User)
	return u
}

func currentIdentity(c *fiber.Ctx) identity.Identity {
	id, _ := c.Locals(localIdentity).(identity.Identity)
	return id
}
