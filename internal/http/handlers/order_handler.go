package handlers

import (
	applog "localbazaar/internal/log"
	"localbazaar/internal/services"
	"localbazaar/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Orders *services.OrderService
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in services.CreateOrderInput
	if err := bind(c, &in); err != nil {
		return fail(c, "order.create", err)
	}
	o, err := h.Orders.Create(c.UserContext(), currentUser(c), in)
	if err != nil {
		return fail(c, "order.create", err)
	}
	applog.Audit(c, "order.create", map[string]any{"order": o.ID, "listing": o.ListingID, "amount": o.Amount.String()})
	return ok(c, fiber.StatusCreated, fiber.Map{"order": o}, "Order request sent to seller")
}

func (h *OrderHandler) Buyer(c *fiber.Ctx) error {
	orders, err := h.Orders.ListForBuyer(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "order.list.buyer", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"orders": orders}, "")
}

func (h *OrderHandler) Seller(c *fiber.Ctx) error {
	orders, err := h.Orders.ListForSeller(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "order.list.seller", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"orders": orders}, "")
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "order.get", services.ErrOrderNotFound)
	}
	o, err := h.Orders.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return fail(c, "order.get", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"order": o}, "")
}

func (h *OrderHandler) SetStatus(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "order.status", services.ErrOrderNotFound)
	}
	var in services.OrderStatusInput
	if err := bind(c, &in); err != nil {
		return fail(c, "order.status", err)
	}
	o, err := h.Orders.SetStatus(c.UserContext(), currentUser(c), id, in)
	if err != nil {
		return fail(c, "order.status", err)
	}
	applog.Audit(c, "order.status", map[string]any{"order": o.ID, "status": o.Status})
	return ok(c, fiber.StatusOK, fiber.Map{"order": o}, "Order status updated")
}
