package apperrors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Message    string `json:"message"`
	Code       string `json:"error_code"`
	Resolution string `json:"resolution,omitempty"`
}

// HTTPErrorHandler renders AppError values as their JSON bodies and collapses
// everything unexpected into a generic server_error, so persistence or cache
// failures never leak internals to the client.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			_ = c.JSON(appErr.Status, errorBody{
				Message:    appErr.Message,
				Code:       appErr.Code,
				Resolution: appErr.Resolution,
			})
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			_ = c.JSON(httpErr.Code, errorBody{
				Message: http.StatusText(httpErr.Code),
				Code:    "http_error",
			})
			return
		}

		logger.Error("unexpected error", "error", err, "path", c.Path())
		_ = c.JSON(http.StatusInternalServerError, errorBody{
			Message: "Oops! Something went wrong",
			Code:    "server_error",
		})
	}
}
