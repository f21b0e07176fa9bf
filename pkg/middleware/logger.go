package middleware

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/context"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// Logger writes one line per request once the response is final. Failures
// are handed to the error handler first so the logged status is the one sent.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			ctx := req.Context()

			kind := "api"
			if context.IsPage(ctx) {
				kind = "page"
			}

			entry := logger.WithContext(ctx).WithFields(map[string]any{
				"request_id":    context.GetRequestID(ctx),
				"trace_id":      tracing.GetTraceID(ctx),
				"method":        req.Method,
				"route":         c.Path(),
				"uri":           req.RequestURI,
				"kind":          kind,
				"status":        res.Status,
				"remote_ip":     c.RealIP(),
				"referer":       req.Referer(),
				"user_agent":    req.UserAgent(),
				"response_time": time.Since(start),
				"response_size": res.Size,
			})

			// static assets and scrapes log at debug
			if res.Status < 400 && (c.Path() == "/static*" || c.Path() == "/metrics") {
				entry.Debug("Request")
				return nil
			}
			entry.Info("Request")
			return nil
		}
	}
}
