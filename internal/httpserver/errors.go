package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/partify/internal/service"
)

// fail logs err under event and converts it to the HTTP error the client sees.
// Service errors keep their message; anything else becomes a generic 500.
func fail(l *slog.Logger, event string, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", "internal error", "error", err)
		return echo.NewHTTPError(status, "internal error")
	}

	msg := err.Error()
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}
	l.Warn(event, "status", status, "reason", msg, "error", err)
	return echo.NewHTTPError(status, msg)
}
