package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type requestKey struct{}

type requestScope struct {
	id  string
	log *zap.Logger
}

// Attach builds the logger for one request and makes it reachable both from the
// echo context and from the request context that handlers pass down to the stores
func Attach(c echo.Context, requestID string) *zap.Logger {
	l := GetLogger().With(zap.String("request_id", requestID))
	c.Set("logger", l)
	c.SetRequest(c.Request().WithContext(WithContext(c.Request().Context(), requestID, l)))
	return l
}

// WithContext returns a copy of ctx carrying the request id and its logger
func WithContext(ctx context.Context, requestID string, l *zap.Logger) context.Context {
	return context.WithValue(ctx, requestKey{}, requestScope{id: requestID, log: l})
}

// RequestID returns the request id carried by ctx, if any
func RequestID(ctx context.Context) string {
	scope, _ := ctx.Value(requestKey{}).(requestScope)
	return scope.id
}

// FromContext returns the request logger carried by ctx, or the global logger
func FromContext(ctx context.Context) *zap.Logger {
	if scope, ok := ctx.Value(requestKey{}).(requestScope); ok && scope.log != nil {
		return scope.log
	}
	return GetLogger()
}

// Scoped tags base with the request id carried by ctx. Components keep their own
// fields (tab id, channel) and gain the id of the request that triggered the call.
func Scoped(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		return FromContext(ctx)
	}
	if id := RequestID(ctx); id != "" {
		return base.With(zap.String("request_id", id))
	}
	return base
}

// FromEcho retrieves the logger from the Echo context
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}
	return FromContext(c.Request().Context())
}
