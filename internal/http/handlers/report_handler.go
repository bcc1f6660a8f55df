package handlers

import (
	applog "localbazaar/internal/log"
	"localbazaar/internal/services"
	"localbazaar/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	Reports *services.ReportService
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var in services.CreateReportInput
	if err := bind(c, &in); err != nil {
		return fail(c, "report.create", err)
	}
	r, err := h.Reports.Create(c.UserContext(), currentUser(c), in)
	if err != nil {
		return fail(c, "report.create", err)
	}
	applog.Audit(c, "report.create", map[string]any{"report": r.ID, "listing": r.ListingID, "reason": r.Reason})
	return ok(c, fiber.StatusCreated, fiber.Map{"report": r}, "Report submitted successfully")
}

func (h *ReportHandler) Mine(c *fiber.Ctx) error {
	reports, err := h.Reports.ListForReporter(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "report.mine", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"reports": reports}, "")
}

// List is the admin queue; pending reports unless ?status= says otherwise.
func (h *ReportHandler) List(c *fiber.Ctx) error {
	reports, err := h.Reports.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return fail(c, "report.list", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"reports": reports}, "")
}

func (h *ReportHandler) Review(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "report.status", services.ErrReportNotFound)
	}
	var in services.ReviewInput
	if err := bind(c, &in); err != nil {
		return fail(c, "report.status", err)
	}
	r, err := h.Reports.Review(c.UserContext(), currentUser(c), id, in)
	if err != nil {
		return fail(c, "report.status", err)
	}
	applog.Audit(c, "report.status", map[string]any{"report": r.ID, "status": r.Status, "action": r.ActionTaken})
	return ok(c, fiber.StatusOK, fiber.Map{"report": r}, "Report updated")
}
