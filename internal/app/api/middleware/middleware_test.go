package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/licensing/pkg/logctx"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrace_ReusesOrGeneratesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(Trace(), RequestLogger(zap.New(core).Sugar()))
	r.GET("/", func(c *gin.Context) {
		logctx.FromCtx(c.Request.Context(), zap.NewNop().Sugar()).Info("inside")
		c.String(http.StatusOK, c.GetString(logctx.TraceIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := serve(r, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["trace_id"])

	for _, bad := range []string{"", "has space", strings.Repeat("a", maxRequestIDLen+1)} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, bad)
		w = serve(r, req)
		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36, bad)
		assert.Equal(t, id, w.Body.String())
	}
}

func TestAdminToken(t *testing.T) {
	r := gin.New()
	r.GET("/open", AdminTokenMiddleware(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/", AdminTokenMiddleware("s3cret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":401`)

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestAccessLog_MasksLicenseKey(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core).Sugar()
	r := gin.New()
	r.Use(Trace(), RequestLogger(base), AccessLogMiddleware(base))
	r.GET("/k", func(c *gin.Context) {
		c.Set(logctx.LicenseKey, "ABCDEFGH-12345678")
		c.Status(http.StatusOK)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/k", nil))
	entries := logs.FilterMessage("http_access").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ABCD...5678", fields["lkey"])
	assert.Equal(t, "/k", fields["path"])
	assert.NotEmpty(t, fields["trace_id"])
}
