// Package logctx carries a request scoped zap logger and the identifiers it
// is tagged with (trace id, masked license key) through gin and context.
package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// gin.Context keys.
const (
	LoggerKey  = "logger"
	TraceIDKey = "traceID"
	// LicenseKey carries the key a license API call authenticated with.
	LicenseKey = "lkey"
)

type (
	loggerCtxKey  struct{}
	traceCtxKey   struct{}
	licenseCtxKey struct{}
)

// FromGin prefers the logger stored on c, then the one in its request context.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if v, ok := c.Get(LoggerKey); ok {
		if lg, _ := v.(*zap.SugaredLogger); lg != nil {
			return lg
		}
	}
	if c.Request == nil {
		return base
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns the logger stored in ctx. Without one, base is tagged with
// whatever identifiers ctx carries.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	if lg, _ := ctx.Value(loggerCtxKey{}).(*zap.SugaredLogger); lg != nil {
		return lg
	}
	return tag(ctx, base)
}

func tag(ctx context.Context, lg *zap.SugaredLogger) *zap.SugaredLogger {
	var fields []interface{}
	if id := TraceID(ctx); id != "" {
		fields = append(fields, "trace_id", id)
	}
	if key, _ := ctx.Value(licenseCtxKey{}).(string); key != "" {
		fields = append(fields, "lkey", Mask(key))
	}
	if len(fields) == 0 {
		return lg
	}
	return lg.With(fields...)
}

func WithLogger(ctx context.Context, lg *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, lg)
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceCtxKey{}, traceID)
}

func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceCtxKey{}).(string)
	return id
}

// WithLicenseKey records key and, when ctx already holds a logger, replaces
// it with one tagged with the masked key.
func WithLicenseKey(ctx context.Context, key string) context.Context {
	ctx = context.WithValue(ctx, licenseCtxKey{}, key)
	if lg, _ := ctx.Value(loggerCtxKey{}).(*zap.SugaredLogger); lg != nil {
		ctx = WithLogger(ctx, lg.With("lkey", Mask(key)))
	}
	return ctx
}

// Mask keeps the first and last four characters of a license key.
func Mask(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
