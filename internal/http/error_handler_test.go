package handlers_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"localbazaar/internal/http/handlers"
)

func newErrorApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return errors.New("db timeout: secret trace")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("nil map write in secret module")
	})
	app.Get("/gone", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusGone, "listing archived")
	})
	return app
}

// Internal failures get a friendly envelope and no internal detail.
func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := newErrorApp()

	for _, path := range []string{"/err", "/panic"} {
		var body string
		entries := captureLogs(t, func() {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
			if err != nil {
				t.Fatalf("test request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusInternalServerError {
				t.Fatalf("%s: expected 500, got %d", path, resp.StatusCode)
			}
			raw, _ := io.ReadAll(resp.Body)
			body = string(raw)
		})
		if !strings.Contains(body, "Something went wrong") || !strings.Contains(body, `"success":false`) {
			t.Fatalf("%s: friendly envelope missing; body=%s", path, body)
		}
		if strings.Contains(body, "secret") {
			t.Fatalf("%s: internal details leaked to user; body=%s", path, body)
		}
		e := findLog(entries, "http.unhandled")
		if e == nil || !strings.Contains(e.Error, "secret") {
			t.Fatalf("%s: expected the cause in the server log, got %+v", path, entries)
		}
	}
}

func TestErrorHandlerKeepsClientErrors(t *testing.T) {
	app := newErrorApp()
	resp, err := app.Test(httptest.NewRequest("GET", "/gone", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusGone {
		t.Fatalf("expected 410, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "listing archived") {
		t.Fatalf("client message dropped; body=%s", raw)
	}
}

func TestUnknownRouteIs404Envelope(t *testing.T) {
	e := newTestEnv(t)
	status, res := e.do(t, "GET", "/api/nowhere", "", nil)
	if status != fiber.StatusNotFound || res.Success {
		t.Fatalf("expected 404 envelope, got %d %+v", status, res)
	}
}
