package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/videomarket-backend/internal/config"
	"github.com/ignatzorin/videomarket-backend/internal/http/handlers"
	"github.com/ignatzorin/videomarket-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/videomarket-backend/internal/interface/http/handler"
	"github.com/ignatzorin/videomarket-backend/internal/service"
	"github.com/ignatzorin/videomarket-backend/internal/usecase/category"
	"github.com/ignatzorin/videomarket-backend/internal/ws"
)

const testSecret = "router-test-secret-router-test-secret"

func newEngine(t *testing.T, env string) (*gin.Engine, *service.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:             env,
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := ws.NewHub(ctx)
	tokens := service.NewTokenManager(testSecret, time.Hour)
	uc := category.NewUseCases(memory.NewCategoryRepository(), category.Options{Publisher: hub})

	engine := SetupRouter(
		cfg,
		handler.NewCategoryHandler(uc),
		handlers.NewHealthHandler(nil, hub),
		handlers.NewWSHandler(hub, cfg.AllowedOrigins),
		tokens,
	)
	return engine, tokens
}

func request(engine *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	engine, _ := newEngine(t, "development")

	w := request(engine, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"memory"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = request(engine, http.MethodGet, "/api/categories", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = request(engine, http.MethodGet, "/api/categories/tree", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AdminRequiresAdminRole(t *testing.T) {
	engine, tokens := newEngine(t, "development")

	w := request(engine, http.MethodGet, "/api/admin/categories", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userToken, err := tokens.Issue(7, "user")
	require.NoError(t, err)
	w = request(engine, http.MethodGet, "/api/admin/categories", "", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, err := tokens.Issue(1, service.RoleAdmin)
	require.NoError(t, err)
	w = request(engine, http.MethodPost, "/api/admin/categories", `{"name":"Музыка"}`, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(engine, http.MethodGet, "/api/categories", "", "")
	assert.Contains(t, w.Body.String(), "Музыка")
}

func TestRouter_RejectsInvalidPathID(t *testing.T) {
	engine, tokens := newEngine(t, "development")
	adminToken, err := tokens.Issue(1, service.RoleAdmin)
	require.NoError(t, err)

	w := request(engine, http.MethodPut, "/api/admin/categories/abc", `{"name":"x"}`, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(engine, http.MethodGet, "/api/admin/categories/0/counts", "", adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_SeedOnlyOutsideProduction(t *testing.T) {
	engine, _ := newEngine(t, "development")
	w := request(engine, http.MethodPost, "/api/seed", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	engine, _ = newEngine(t, "production")
	w = request(engine, http.MethodPost, "/api/seed", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
