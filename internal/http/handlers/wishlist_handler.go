package handlers

import (
	applog "localbazaar/internal/log"
	"localbazaar/internal/services"
	"localbazaar/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

type wishlistInput struct {
	ListingID string `json:"productId"`
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	items, err := h.Wish.List(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "wishlist.list", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"items": items}, "")
}

func (h *WishlistHandler) Save(c *fiber.Ctx) error {
	var in wishlistInput
	if err := bind(c, &in); err != nil {
		return fail(c, "wishlist.save", err)
	}
	pid, valid := validate.ID(in.ListingID)
	if !valid {
		return fail(c, "wishlist.save", validate.Fail("productId", "is required"))
	}
	if err := h.Wish.Save(c.UserContext(), currentUser(c), pid); err != nil {
		return fail(c, "wishlist.save", err)
	}
	applog.Audit(c, "wishlist.save", map[string]any{"listing": pid})
	return ok(c, fiber.StatusCreated, nil, "Saved to wishlist")
}

func (h *WishlistHandler) Unsave(c *fiber.Ctx) error {
	pid, valid := validate.ID(c.Params("listingId"))
	if !valid {
		return fail(c, "wishlist.unsave", validate.Fail("listingId", "is invalid"))
	}
	if err := h.Wish.Unsave(c.UserContext(), currentUser(c), pid); err != nil {
		return fail(c, "wishlist.unsave", err)
	}
	applog.Audit(c, "wishlist.unsave", map[string]any{"listing": pid})
	return ok(c, fiber.StatusOK, nil, "Removed from wishlist")
}
