package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/context"
	"github.com/Ramsey-B/poppy/pkg/tracing"
	"github.com/Ramsey-B/poppy/pkg/views"
)

type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

// Error is the single place failures become responses. Pages get the
// rendered error page, falling back to plain text, and API routes get JSON.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		// Check if the response is already committed
		if c.Response().Committed {
			return
		}

		code, message, meta := resolve(err)

		entry := logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"status":     code,
			"request_id": context.GetRequestID(ctx),
			"trace_id":   tracing.GetTraceID(ctx),
		})
		if code >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Warn("request was rejected")
		}

		requestID := context.GetRequestID(ctx)

		if context.IsPage(ctx) {
			renderErr := c.Render(code, views.ErrorPage, views.ErrorData{
				Status:    code,
				Message:   message,
				RequestID: requestID,
			})
			if renderErr != nil {
				logger.WithContext(ctx).WithError(renderErr).Error("failed to render error page")
				_ = c.String(code, message)
			}
			return
		}

		_ = c.JSON(code, ErrorResponse{
			Message:   message,
			RequestID: requestID,
			TraceID:   tracing.GetTraceID(ctx),
			Meta:      meta,
		})
	}
}

func resolve(err error) (int, string, map[string]any) {
	// Default response
	code := http.StatusInternalServerError
	message := "Internal Server Error"
	meta := map[string]any{}

	// Handle specific Echo errors
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	if ok := httperror.IsHTTPError(err); ok {
		httperr := httperror.ToHTTPError(err)
		code = httperror.GetStatusCode(err)
		message = httperr.Error()
		if httperr.Meta != nil {
			meta = httperr.Meta
		}
	}

	return code, message, meta
}
