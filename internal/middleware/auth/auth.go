package authmw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/partify/internal/logging"
	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/repo"
	"github.com/Skotchmaster/partify/internal/tokens"
)

const identityKey = "identity"

// Identity is the authenticated caller, resolved from the token subject.
type Identity struct {
	UserID  string
	Name    string
	Email   string
	IsAdmin bool
}

type UserLoader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type Authenticator struct {
	JWTSecret []byte
	Users     UserLoader
}

func New(secret []byte, users UserLoader) *Authenticator {
	return &Authenticator{JWTSecret: secret, Users: users}
}

type ValidatorFunc func(id Identity) error

func (m *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *Authenticator) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(id Identity) error {
		if !id.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *Authenticator) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims.Subject == "" {
			l.Warn("auth_failed", "status", 401, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
		}

		user, err := m.Users.GetUser(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				l.Warn("auth_failed", "status", 401, "reason", "user not found", "user_id", claims.Subject)
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, user not found")
			}
			l.Error("auth_failed", "status", 500, "reason", "load user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		id := Identity{
			UserID:  user.ID,
			Name:    user.Name,
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		}
		if validator != nil {
			if vErr := validator(id); vErr != nil {
				l.Warn("auth_failed", "status", 403, "reason", "validator rejected", "user_id", id.UserID)
				return vErr
			}
		}

		c.Set(identityKey, id)
		return next(c)
	}
}

// IdentityFrom returns the caller stored by RequireAuth or RequireAdmin.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
