package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/roomescape-club/reservation-service/internal/dto"
)

// ErrorHandler renders every unhandled error as a JSON ErrorResponse so
// clients never see echo's default error shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
