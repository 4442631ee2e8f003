package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/cache"
	"github.com/MorseWayne/gift_market/internal/config"
	"github.com/MorseWayne/gift_market/internal/domain"
	mw "github.com/MorseWayne/gift_market/internal/middleware"
	"github.com/MorseWayne/gift_market/internal/service"
)

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.FromLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func newTestHandler(t *testing.T, env map[string]string) (http.Handler, service.JWTService) {
	t.Helper()
	cfg := testConfig(t, env)
	lg := zap.NewNop()
	deps, err := initDependencies(cfg, nil, cache.NewNullCache(), lg)
	require.NoError(t, err)
	return setupRoutes(cfg, deps, lg), deps.JWTService
}

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func serve(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	var body envelope
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body), "body %q", rw.Body.String())
	return rw, body
}

func TestHealthz_OK(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	rw, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	var data map[string]string
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Zero(t, body.Code)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "0.1.0", data["version"])
	assert.NotEmpty(t, rw.Header().Get("X-Request-ID"))
}

func TestCatalogRoutes(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rw, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/catalog?screen=activity", nil))
	require.Equal(t, http.StatusOK, rw.Code)
	var snap domain.CatalogSnapshot
	require.NoError(t, json.Unmarshal(body.Data, &snap))
	assert.Equal(t, "activity", snap.Screen)
	assert.NotEmpty(t, snap.Entries)

	rw, _ = serve(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/catalog?screen=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestReloadRequiresToken(t *testing.T) {
	h, jwtService := newTestHandler(t, map[string]string{"JWT_SECRET": "test-secret"})

	rw, _ := serve(t, h, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload?screen=market", nil))
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	token, err := jwtService.IssueAccessToken(&domain.Viewer{UserID: 7, Username: "ops"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload?screen=market", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw, _ = serve(t, h, req)
	assert.Equal(t, http.StatusOK, rw.Code, rw.Body.String())
}

func TestRateLimit_Local(t *testing.T) {
	h, _ := newTestHandler(t, map[string]string{
		"RATE_LIMIT_ENABLED": "true",
		"RATE_LIMIT_RATE":    "1",
		"RATE_LIMIT_BURST":   "1",
		"RATE_LIMIT_WINDOW":  "1h",
	})

	get := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.1.1.1:4000"
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		return rw.Code
	}

	require.Equal(t, http.StatusOK, get("/api/v1/catalog?screen=market"))
	require.Equal(t, http.StatusTooManyRequests, get("/api/v1/catalog?screen=market"))
	assert.Equal(t, http.StatusOK, get("/healthz"), "healthz bypasses the limiter")
}

func TestLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.RemoteAddr = "10.2.2.2:1234"
	assert.Equal(t, "ip:10.2.2.2", limitKey(req))

	req = req.WithContext(mw.WithViewer(req.Context(), &domain.Viewer{UserID: 42}))
	assert.Equal(t, "user:42", limitKey(req))
}

func TestInitDependencies_MySQLRequiresDatabase(t *testing.T) {
	cfg := testConfig(t, map[string]string{"CATALOG_SOURCE": "mysql"})
	_, err := initDependencies(cfg, nil, cache.NewNullCache(), zap.NewNop())
	assert.Error(t, err)
}
