package handlers_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	status, res := e.do(t, "GET", "/health", "", nil)
	if status != fiber.StatusOK || !res.Success {
		t.Fatalf("expected healthy envelope, got %d %+v", status, res)
	}
}

func TestMetricsExposeRouteCounters(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, "GET", "/api/categories", "", nil)

	resp, err := e.app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)
	if !strings.Contains(body, `route="/api/categories"`) {
		t.Fatalf("route counter missing from metrics output")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("runtime collectors missing from metrics output")
	}
}
