package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/context"
)

// APIPrefix marks routes that answer with JSON. Everything else is a page.
const APIPrefix = "/api"

func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			// get request id from header
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())
			ctx = context.SetReferer(ctx, req.Referer())
			ctx = context.SetPage(ctx, IsPagePath(req.URL.Path))

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

// IsPagePath reports whether path is served as an HTML page.
func IsPagePath(path string) bool {
	return path != APIPrefix && !strings.HasPrefix(path, APIPrefix+"/") && path != "/metrics"
}
