package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })
	return &buf
}

func TestBackgroundEntryWithoutContext(t *testing.T) {
	buf := capture(t)
	Error(nil, "reconcile.run", errors.New("disk full"), map[string]any{"corrected": 0})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "reconcile.run", got["action"])
	assert.Equal(t, "error", got["level"])
	assert.Equal(t, "disk full", got["error"])
	assert.Contains(t, got, "ts")
	assert.NotContains(t, got, "path")
}

func TestRequestEntryCarriesRequestFields(t *testing.T) {
	buf := capture(t)
	app := fiber.New()
	app.Post("/api/products", func(c *fiber.Ctx) error {
		c.Locals("requestid", "req-1")
		c.Locals("user_id", "u-1")
		Audit(c, "listing.create", map[string]any{"listing": "l-1"})
		return c.SendStatus(fiber.StatusCreated)
	})
	_, err := app.Test(httptest.NewRequest("POST", "/api/products", nil))
	require.NoError(t, err)

	var got struct {
		Action string         `json:"action"`
		Audit  bool           `json:"audit"`
		Method string         `json:"method"`
		Path   string         `json:"path"`
		ReqID  string         `json:"req_id"`
		UserID string         `json:"user_id"`
		Fields map[string]any `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "listing.create", got.Action)
	assert.True(t, got.Audit)
	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "/api/products", got.Path)
	assert.Equal(t, "req-1", got.ReqID)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "l-1", got.Fields["listing"])
}

func TestEntryLeavesOutUnwrittenStatus(t *testing.T) {
	buf := capture(t)
	app := fiber.New()
	app.Post("/api/reports", func(c *fiber.Ctx) error {
		Security(c, "validation.fail", nil)
		return c.SendStatus(fiber.StatusBadRequest)
	})
	resp, err := app.Test(httptest.NewRequest("POST", "/api/reports", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "validation.fail", got["action"])
	assert.NotContains(t, got, "status")
}

func TestConfigureLevel(t *testing.T) {
	buf := capture(t)
	require.NoError(t, Configure("warn", ""))
	t.Cleanup(func() { _ = Configure("info", "") })

	Info(nil, "quiet", nil)
	assert.Zero(t, buf.Len())
	Security(nil, "loud", nil)
	assert.NotZero(t, buf.Len())
}
