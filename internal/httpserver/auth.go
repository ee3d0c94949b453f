package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/partify/internal/logging"
	"github.com/Skotchmaster/partify/internal/service"
	"github.com/Skotchmaster/partify/internal/transport"
)

type AuthHTTP struct {
	Svc *service.UserService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bindOrFail(c, l, "register_failed", &req); err != nil {
		return err
	}

	resp, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_failed", err)
	}

	l.Info("register_success", "user_id", resp.ID)
	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindOrFail(c, l, "login_failed", &req); err != nil {
		return err
	}

	resp, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	l.Info("login_success", "user_id", resp.ID)
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":      who.UserID,
		"name":    who.Name,
		"email":   who.Email,
		"isAdmin": who.IsAdmin,
	})
}
