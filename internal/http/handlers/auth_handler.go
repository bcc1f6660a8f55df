package handlers

import (
	"errors"

	applog "localbazaar/internal/log"
	"localbazaar/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.register", err)
	}
	u, err := h.Auth.Register(c.UserContext(), currentIdentity(c), in)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	c.Locals(localUserID, u.ID)
	applog.Audit(c, "auth.register", map[string]any{"campus": u.Campus})
	return ok(c, fiber.StatusCreated, fiber.Map{"user": u}, "User registered successfully")
}

// Login tells the client whether the verified identity still needs to
// register.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	u, err := h.Auth.Login(c.UserContext(), currentIdentity(c).Subject)
	if errors.Is(err, services.ErrUserNotFound) {
		applog.Info(c, "auth.login.unregistered", nil)
		return failWith(c, fiber.StatusNotFound, "User not found. Please complete registration.",
			fiber.Map{"needsRegistration": true})
	}
	if err != nil {
		return fail(c, "auth.login", err)
	}
	c.Locals(localUserID, u.ID)
	if !u.IsActive {
		return fail(c, "auth.login", services.ErrSuspended)
	}
	applog.Info(c, "auth.login", nil)
	return ok(c, fiber.StatusOK, fiber.Map{"user": u}, "Login successful")
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, fiber.Map{"user": currentUser(c)}, "")
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := bind(c, &in); err != nil {
		return fail(c, "profile.update", err)
	}
	u, err := h.Auth.UpdateProfile(c.UserContext(), currentUser(c), in)
	if err != nil {
		return fail(c, "profile.update", err)
	}
	applog.Audit(c, "profile.update", nil)
	return ok(c, fiber.StatusOK, fiber.Map{"user": u}, "Profile updated successfully")
}
