package handlers

import (
	"strconv"
	"strings"

	"localbazaar/internal/domain"
	applog "localbazaar/internal/log"
	"localbazaar/internal/services"
	"localbazaar/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Admin *services.AdminService
}

type userStatusInput struct {
	IsActive *bool `json:"isActive"`
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Admin.Overview(c.UserContext())
	if err != nil {
		return fail(c, "admin.stats", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"stats": st}, "")
}

// GET /api/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	f := domain.UserFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Campus: strings.TrimSpace(c.Query("campus")),
	}
	if s := c.Query("isActive"); s != "" {
		active, err := strconv.ParseBool(s)
		if err != nil {
			return fail(c, "admin.users", validate.Fail("isActive", "must be true or false"))
		}
		f.IsActive = &active
	}
	page, err := h.Admin.ListUsers(c.UserContext(), f, pageQuery(c))
	if err != nil {
		return fail(c, "admin.users", err)
	}
	return ok(c, fiber.StatusOK, page, "")
}

// GET /api/admin/users/:id
func (h *AdminHandler) User(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "admin.user", services.ErrUserNotFound)
	}
	d, err := h.Admin.GetUser(c.UserContext(), id)
	if err != nil {
		return fail(c, "admin.user", err)
	}
	return ok(c, fiber.StatusOK, d, "")
}

// PUT /api/admin/users/:id/status
func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "admin.user.status", services.ErrUserNotFound)
	}
	var in userStatusInput
	if err := bind(c, &in); err != nil {
		return fail(c, "admin.user.status", err)
	}
	if in.IsActive == nil {
		return fail(c, "admin.user.status", validate.Fail("isActive", "is required"))
	}
	u, err := h.Admin.SetUserActive(c.UserContext(), currentUser(c), id, *in.IsActive)
	if err != nil {
		return fail(c, "admin.user.status", err)
	}
	applog.Audit(c, "admin.user.status", map[string]any{"target": u.ID, "is_active": u.IsActive})
	msg := "User suspended"
	if u.IsActive {
		msg = "User activated"
	}
	return ok(c, fiber.StatusOK, fiber.Map{"user": u}, msg)
}

// GET /api/admin/products
func (h *AdminHandler) Listings(c *fiber.Ctx) error {
	q, err := listQuery(c)
	if err != nil {
		return fail(c, "admin.listings", err)
	}
	if st := c.Query("status"); st != "" && st != "all" {
		switch st {
		case domain.StatusAvailable, domain.StatusSold, domain.StatusReserved, domain.StatusDeleted:
			q.Filter.Statuses = []string{st}
		default:
			return fail(c, "admin.listings", validate.Fail("status", "must be one of: available, sold, reserved, deleted, all"))
		}
	}
	page, err := h.Admin.ListListings(c.UserContext(), q)
	if err != nil {
		return fail(c, "admin.listings", err)
	}
	return ok(c, fiber.StatusOK, page, "")
}

// DELETE /api/admin/products/:id
func (h *AdminHandler) DeleteListing(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "admin.listing.delete", services.ErrListingNotFound)
	}
	if err := h.Admin.DeleteListing(c.UserContext(), id); err != nil {
		return fail(c, "admin.listing.delete", err)
	}
	applog.Audit(c, "admin.listing.delete", map[string]any{"listing": id})
	return ok(c, fiber.StatusOK, nil, "Product deleted by admin")
}
