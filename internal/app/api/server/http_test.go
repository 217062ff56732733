package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/internal/app/api/dispatch"
	mw "github.com/fatflowers/licensing/internal/app/api/middleware"
	cfgpkg "github.com/fatflowers/licensing/pkg/config"
)

func TestCorsConfig(t *testing.T) {
	c := corsConfig([]string{"*"})
	assert.True(t, c.AllowAllOrigins)
	assert.Empty(t, c.AllowOrigins)
	require.NoError(t, c.Validate())

	c = corsConfig([]string{"https://admin.example.com"})
	assert.False(t, c.AllowAllOrigins)
	assert.Equal(t, []string{"https://admin.example.com"}, c.AllowOrigins)
	require.NoError(t, c.Validate())
}

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop().Sugar()
	cfg := &cfgpkg.Config{Admin: cfgpkg.AdminConfig{Token: "t0ken"}}
	r := newEngine(cfg)
	registerRoutes(routeParams{
		Log:      log,
		Cfg:      cfg,
		Engine:   r,
		Dispatch: dispatch.NewRouter(nil, nil, log, dispatch.Options{}),
	})

	routes := map[string]bool{}
	for _, rt := range r.Routes() {
		routes[rt.Method+" "+rt.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /license-api/:action",
		"POST /license-api/:action",
		"POST /api/v1/admin/key/list",
		"POST /api/v1/admin/billing/log/list",
		"POST /api/v1/billing/events",
	} {
		assert.True(t, routes[want], want)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/key/list", strings.NewReader("{}"))
	req.Header.Set(mw.RequestIDHeader, "rq-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "rq-1", w.Header().Get(mw.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/license-api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "API Action Not Found")
}
