package handlers

import (
	"localbazaar/internal/repos"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Categories *repos.CategoryRepo
}

// List returns every category with its count of available listings.
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Categories.AvailableCounts(c.UserContext())
	if err != nil {
		return fail(c, "category.list", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"categories": cats}, "")
}
