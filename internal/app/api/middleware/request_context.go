package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/tool"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 128
)

// Trace assigns every request a trace id, reusing a sane client supplied
// X-Request-ID, and echoes it back in the response.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = tool.GenerateUUIDV7()
		}
		c.Set(logctx.TraceIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logctx.WithTraceID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestLogger scopes base to the request so service code picking a logger
// from the context logs the trace id without passing it around.
func RequestLogger(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromCtx(c.Request.Context(), base)
		c.Set(logctx.LoggerKey, lg)
		c.Request = c.Request.WithContext(logctx.WithLogger(c.Request.Context(), lg))
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
