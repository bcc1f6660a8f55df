package handlers

import (
	"strings"

	"localbazaar/internal/domain"
	applog "localbazaar/internal/log"
	"localbazaar/internal/services"
	"localbazaar/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	Listings *services.ListingService
}

var sortFields = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"views":     "views",
}

func pageQuery(c *fiber.Ctx) domain.Page {
	return domain.Page{
		Page:  validate.Positive(c.Query("page"), 1, 0),
		Limit: validate.Positive(c.Query("limit"), 20, 100),
	}
}

// listQuery reads the browse filters shared by the public and admin lists.
// "All" as a category means no category filter.
func listQuery(c *fiber.Ctx) (services.ListQuery, error) {
	var q services.ListQuery
	q.Filter.Keyword = validate.Q(c.Query("search"))
	if cat := strings.TrimSpace(c.Query("category")); cat != "" && cat != "All" {
		if !domain.ValidCategory(cat) {
			return q, validate.Fail("category", "must be one of: "+strings.Join(domain.Categories, ", "))
		}
		q.Filter.Category = cat
	}
	if cond := strings.TrimSpace(c.Query("condition")); cond != "" {
		if !domain.ValidCondition(cond) {
			return q, validate.Fail("condition", "must be one of: "+strings.Join(domain.Conditions, ", "))
		}
		q.Filter.Condition = cond
	}
	var valid bool
	if q.Filter.MinPrice, valid = validate.Price(c.Query("minPrice")); !valid {
		return q, validate.Fail("minPrice", "must be a non-negative number")
	}
	if q.Filter.MaxPrice, valid = validate.Price(c.Query("maxPrice")); !valid {
		return q, validate.Fail("maxPrice", "must be a non-negative number")
	}
	q.Filter.Campus = strings.TrimSpace(c.Query("campus"))

	q.Sort = domain.Sort{Field: "created_at", Desc: true}
	if by := c.Query("sortBy"); by != "" {
		field, known := sortFields[by]
		if !known {
			return q, validate.Fail("sortBy", "must be one of: createdAt, price, views")
		}
		q.Sort.Field = field
	}
	switch strings.ToLower(c.Query("order")) {
	case "", "desc":
	case "asc":
		q.Sort.Desc = false
	default:
		return q, validate.Fail("order", "must be asc or desc")
	}
	q.Page = pageQuery(c)
	return q, nil
}

// List is the public browse over available listings.
func (h *ListingHandler) List(c *fiber.Ctx) error {
	q, err := listQuery(c)
	if err != nil {
		return fail(c, "listing.list", err)
	}
	page, err := h.Listings.List(c.UserContext(), q)
	if err != nil {
		return fail(c, "listing.list", err)
	}
	return ok(c, fiber.StatusOK, page, "")
}

func (h *ListingHandler) Mine(c *fiber.Ctx) error {
	page, err := h.Listings.ListMine(c.UserContext(), currentUser(c), c.Query("status"), pageQuery(c))
	if err != nil {
		return fail(c, "listing.mine", err)
	}
	return ok(c, fiber.StatusOK, page, "")
}

func (h *ListingHandler) ByUser(c *fiber.Ctx) error {
	uid, valid := validate.ID(c.Params("userId"))
	if !valid {
		return fail(c, "listing.by_user", validate.Fail("userId", "is invalid"))
	}
	page, err := h.Listings.ListByUser(c.UserContext(), uid, c.Query("status"), pageQuery(c))
	if err != nil {
		return fail(c, "listing.by_user", err)
	}
	return ok(c, fiber.StatusOK, page, "")
}

// Get returns a listing's detail and counts the view.
func (h *ListingHandler) Get(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "listing.get", services.ErrListingNotFound)
	}
	l, err := h.Listings.View(c.UserContext(), id)
	if err != nil {
		return fail(c, "listing.get", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"product": l}, "")
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	var in services.CreateListingInput
	if err := bind(c, &in); err != nil {
		return fail(c, "listing.create", err)
	}
	l, err := h.Listings.Create(c.UserContext(), currentUser(c), in)
	if err != nil {
		return fail(c, "listing.create", err)
	}
	applog.Audit(c, "listing.create", map[string]any{"listing": l.ID, "category": l.Category, "price": l.Price.String()})
	return ok(c, fiber.StatusCreated, fiber.Map{"product": l}, "Product created successfully")
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "listing.update", services.ErrListingNotFound)
	}
	var in services.UpdateListingInput
	if err := bind(c, &in); err != nil {
		return fail(c, "listing.update", err)
	}
	l, err := h.Listings.Update(c.UserContext(), currentUser(c), id, in)
	if err != nil {
		return fail(c, "listing.update", err)
	}
	applog.Audit(c, "listing.update", map[string]any{"listing": l.ID, "status": l.Status})
	return ok(c, fiber.StatusOK, fiber.Map{"product": l}, "Product updated successfully")
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "listing.delete", services.ErrListingNotFound)
	}
	if err := h.Listings.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return fail(c, "listing.delete", err)
	}
	applog.Audit(c, "listing.delete", map[string]any{"listing": id})
	return ok(c, fiber.StatusOK, nil, "Product deleted successfully")
}
