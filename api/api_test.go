package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skryldev/jobly/api"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/dbtest"
	"github.com/Skryldev/jobly/repo"
	"github.com/Skryldev/jobly/schemas"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

type testServer struct {
	handler    http.Handler
	fx         *dbtest.Fixture
	tokens     *auth.Tokens
	adminToken string // u1
	userToken  string // u2
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithLimit(t, api.RateLimitConfig{})
}

func newTestServerWithLimit(t *testing.T, limit api.RateLimitConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fx := dbtest.Seed(t)
	tokens, err := auth.NewTokens("test-secret", 0)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	srv := api.New(api.Deps{
		Jobs:      repo.NewJobRepo(fx.DB),
		Companies: repo.NewCompanyRepo(fx.DB),
		Users:     repo.NewUserRepo(fx.DB, auth.NewPasswords(bcrypt.MinCost)),
		Tokens:    tokens,
		Schemas:   schemas.MustLoad(),
		DB:        fx.DB,
		RateLimit: limit,
	})

	ts := &testServer{handler: srv.Handler(), fx: fx, tokens: tokens}
	ts.adminToken = ts.sign(t, "u1", true)
	ts.userToken = ts.sign(t, "u2", false)
	return ts
}

func (ts *testServer) sign(t *testing.T, username string, isAdmin bool) string {
	t.Helper()
	tok, err := ts.tokens.Sign(username, isAdmin)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

// do sends a request. body may be nil, a raw string, or any value to be
// JSON-encoded.
func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, want int) errorEnvelope {
	t.Helper()
	expectStatus(t, rec, want)
	var env errorEnvelope
	decode(t, rec, &env)
	if env.Error.Status != want || env.Error.Message == "" {
		t.Fatalf("bad error envelope: %s", rec.Body.String())
	}
	return env
}

func ptr[T any](v T) *T { return &v }
