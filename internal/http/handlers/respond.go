package handlers

import (
	"errors"

	applog "localbazaar/internal/log"
	"localbazaar/internal/services"
	"localbazaar/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// envelope is the shape of every JSON response.
type envelope struct {
	Success bool                  `json:"success"`
	Data    any                   `json:"data,omitempty"`
	Message string                `json:"message,omitempty"`
	Errors  []validate.FieldError `json:"errors,omitempty"`
}

const internalMessage = "Something went wrong. Please try again."

func ok(c *fiber.Ctx, status int, data any, msg string) error {
	return c.Status(status).JSON(envelope{Success: true, Data: data, Message: msg})
}

func failWith(c *fiber.Ctx, status int, msg string, data any) error {
	return c.Status(status).JSON(envelope{Success: false, Data: data, Message: msg})
}

// fail renders err with the status its kind maps to. Unexpected errors are
// logged under action and never leak to the client.
func fail(c *fiber.Ctx, action string, err error) error {
	var verrs *validate.Errors
	switch {
	case errors.As(err, &verrs):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "fields": fieldNames(verrs)})
		return c.Status(fiber.StatusBadRequest).JSON(envelope{
			Message: "Validation failed",
			Errors:  verrs.Fields,
		})
	case errors.Is(err, services.ErrUnauthenticated):
		applog.Security(c, "auth.required", map[string]any{"action": action})
		return failWith(c, fiber.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrSuspended):
		applog.Security(c, "access.denied.suspended", map[string]any{"action": action})
		return failWith(c, fiber.StatusForbidden, "Your account has been suspended", nil)
	case errors.Is(err, services.ErrForbidden):
		applog.Security(c, "access.denied", map[string]any{"action": action})
		return failWith(c, fiber.StatusForbidden, "You are not allowed to do that", nil)
	case errors.Is(err, services.ErrNotFound):
		return failWith(c, fiber.StatusNotFound, capitalize(err.Error()), nil)
	case services.IsRuleViolation(err):
		return failWith(c, fiber.StatusBadRequest, capitalize(err.Error()), nil)
	}
	applog.Error(c, action, err, nil)
	return failWith(c, fiber.StatusInternalServerError, internalMessage, nil)
}

func fieldNames(e *validate.Errors) []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Field)
	}
	return out
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// bind decodes the JSON body into dst.
func bind(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return validate.Fail("body", "must be valid JSON")
	}
	return nil
}

// ErrorHandler renders errors that escape the handlers, including recovered
// panics, in the response envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			applog.Error(c, "http.error", err, nil)
			return failWith(c, fe.Code, internalMessage, nil)
		}
		if fe.Code == fiber.StatusRequestEntityTooLarge {
			applog.Security(c, "request.too_large", nil)
		}
		return failWith(c, fe.Code, fe.Message, nil)
	}
	applog.Error(c, "http.unhandled", err, nil)
	return failWith(c, fiber.StatusInternalServerError, internalMessage, nil)
}
