package handlers

import (
	applog "localbazaar/internal/log"
	"localbazaar/internal/services"
	"localbazaar/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartAddInput struct {
	ListingID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type checkoutInput struct {
	Message string `json:"message"`
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "cart.view", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"cart": cv}, "")
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in cartAddInput
	if err := bind(c, &in); err != nil {
		return fail(c, "cart.add", err)
	}
	pid, valid := validate.ID(in.ListingID)
	if !valid {
		return fail(c, "cart.add", validate.Fail("productId", "is required"))
	}
	qty := validate.ClampQty(in.Qty)
	if err := h.Cart.Add(c.UserContext(), currentUser(c), pid, qty); err != nil {
		return fail(c, "cart.add", err)
	}
	applog.Audit(c, "cart.add", map[string]any{"listing": pid, "qty": qty})
	cv, err := h.Cart.View(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "cart.view", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"cart": cv}, "Added to cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	pid, valid := validate.ID(c.Params("listingId"))
	if !valid {
		return fail(c, "cart.remove", validate.Fail("listingId", "is invalid"))
	}
	if err := h.Cart.Remove(c.UserContext(), currentUser(c), pid); err != nil {
		return fail(c, "cart.remove", err)
	}
	applog.Audit(c, "cart.remove", map[string]any{"listing": pid})
	return ok(c, fiber.StatusOK, nil, "Removed from cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(c.UserContext(), currentUser(c)); err != nil {
		return fail(c, "cart.clear", err)
	}
	applog.Audit(c, "cart.clear", nil)
	return ok(c, fiber.StatusOK, nil, "Cart cleared")
}

// Checkout sends one inquiry per cart line.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var in checkoutInput
	if err := bind(c, &in); err != nil {
		return fail(c, "cart.checkout", err)
	}
	res, err := h.Cart.Checkout(c.UserContext(), currentUser(c), in.Message)
	if err != nil {
		return fail(c, "cart.checkout", err)
	}
	ids := make([]string, 0, len(res.Orders))
	for _, o := range res.Orders {
		ids = append(ids, o.ID)
	}
	applog.Audit(c, "order.create", map[string]any{"orders": ids, "skipped": len(res.Skipped), "via": "cart"})
	return ok(c, fiber.StatusCreated, res, "Checkout complete")
}
