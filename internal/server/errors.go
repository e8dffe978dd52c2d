package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/kaashub/internal/rendering"
	"github.com/nfrund/kaashub/web/src/templates/pages"
	hxhttp "maragu.dev/gomponents-htmx/http"
)

const unhandledErrorMessage = "Something went wrong. Please try again."

// setupErrorHandling installs the error handler. Errors that are not
// *echo.HTTPError were never expected by a handler, so they are logged with
// a stack trace and answered with a generic 500.
func setupErrorHandling(e *echo.Echo) {
	renderer := rendering.NewNodeRenderer()

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := unhandledErrorMessage

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = http.StatusText(code)
			if m, ok := he.Message.(string); ok && m != "" {
				message = m
			}
			if code >= http.StatusInternalServerError {
				slog.ErrorContext(c.Request().Context(), "HTTP error", "status", code, "error", err)
			}
		} else {
			slog.ErrorContext(c.Request().Context(), "Internal Server Error (Unhandled)",
				"error", err,
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
		}

		var respErr error
		switch {
		case c.Request().Method == http.MethodHead:
			respErr = c.NoContent(code)
		case hxhttp.IsRequest(c.Request().Header):
			respErr = c.String(code, message)
		default:
			respErr = renderer.RenderPage(c, code, pages.ErrorPage(fmt.Sprintf("%d", code), message))
		}
		if respErr != nil {
			slog.ErrorContext(c.Request().Context(), "Failed to write error response", "error", respErr)
		}
	}
}
