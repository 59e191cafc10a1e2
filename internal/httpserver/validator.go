package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

type requestValidator struct{}

func (requestValidator) Validate(i any) error { return transport.Validate(i) }

func NewValidator() echo.Validator { return requestValidator{} }

func bindRequest(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", http.StatusUnprocessableEntity, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		detail := transport.Detail(err)
		l.Warn(event, "status", http.StatusUnprocessableEntity, "reason", detail)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, detail)
	}
	return nil
}

func pathID(c echo.Context, l *slog.Logger, event string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		l.Warn(event, "status", http.StatusUnprocessableEntity, "reason", "id is not a positive integer", "id", c.Param("id"))
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be a positive integer")
	}
	return uint(id), nil
}
