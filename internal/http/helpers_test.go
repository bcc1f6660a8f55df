package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"localbazaar/internal/config"
	"localbazaar/internal/http/handlers"
	"localbazaar/internal/identity"
	applog "localbazaar/internal/log"
	"localbazaar/internal/repos"
)

type testEnv struct {
	app  *fiber.App
	db   *sqlx.DB
	deps *handlers.Deps
	jwt  *identity.JWTVerifier
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:               ":memory:",
		RateLimitPerMin:     1000,
		AuthRateLimitPerMin: 1000,
		BodyLimitBytes:      1 << 20,
	}
}

// newTestEnv wires the full app against an in-memory store. mutate may
// tighten the config before the app is built.
func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	v, err := identity.NewJWTVerifier("test-signing-key", "localbazaar-test")
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	deps := handlers.NewDeps(db, v)
	return &testEnv{app: handlers.NewApp(cfg, deps), db: db, deps: deps, jwt: v}
}

func (e *testEnv) token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := e.jwt.Mint(subject, subject+"@campus.test", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return tok
}

// do sends a JSON request and decodes the envelope.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out apiResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

// register signs subject up and returns its token and user id.
func (e *testEnv) register(t *testing.T, subject string) (string, string) {
	t.Helper()
	tok := e.token(t, subject)
	status, res := e.do(t, "POST", "/api/auth/register", tok, map[string]any{
		"name":   "User " + subject,
		"campus": "North",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register %s: status %d body %+v", subject, status, res)
	}
	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, res, &data)
	return tok, data.User.ID
}

func (e *testEnv) makeAdmin(t *testing.T, subject string) {
	t.Helper()
	if _, err := e.db.Exec(`UPDATE users SET is_admin = 1 WHERE firebase_uid = ?`, subject); err != nil {
		t.Fatalf("grant admin: %v", err)
	}
}

func decode(t *testing.T, res apiResponse, dst any) {
	t.Helper()
	if err := json.Unmarshal(res.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", res.Data, err)
	}
}

type logEntry struct {
	Action string         `json:"action"`
	Level  string         `json:"level"`
	Audit  bool           `json:"audit"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
	Error  string         `json:"error"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs collects the structured log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	prev := applog.SetOutput(buf)
	defer applog.SetOutput(prev)

	fn()

	var entries []logEntry
	dec := json.NewDecoder(bytes.NewReader(buf.b.Bytes()))
	for dec.More() {
		var e logEntry
		if err := dec.Decode(&e); err != nil {
			break
		}
		entries = append(entries, e)
	}
	return entries
}

func findLog(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}
