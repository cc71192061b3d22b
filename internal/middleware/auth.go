// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides the Echo middleware of the HTTP service.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"codeberg.org/logico/fleet/internal/appcontext"
	"codeberg.org/logico/fleet/internal/auth"
	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/services/session"
	"github.com/labstack/echo/v4"
)

// UserLoader is an interface for loading full user data
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserRole(ctx context.Context, userID int64) (models.Role, bool, error)
}

// LoadUser creates middleware that loads the session user and its active role.
// The role is read from the database so a deactivated role takes effect
// without a new login.
func LoadUser(sessions *session.Manager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := appcontext.From(c)

			data, err := sessions.Parse(c.Request())
			if err != nil || data == nil {
				return next(cc)
			}

			ctx := c.Request().Context()
			user, err := users.GetUserByID(ctx, data.UserID)
			if err != nil {
				slog.Debug("session_user_not_loaded", "user_id", data.UserID, "error", err)
				return next(cc)
			}

			role, ok, err := users.GetUserRole(ctx, user.ID)
			if err != nil {
				return err
			}
			if !ok {
				role = ""
			}

			cc.User = user
			cc.Role = role
			cc.SetRequest(c.Request().WithContext(auth.WithUser(ctx, user, role)))
			return next(cc)
		}
	}
}

// RequireAuth rejects requests without an authenticated user.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !appcontext.From(c).IsAuthenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireRole rejects users without an active role among roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := appcontext.From(c)
			if !cc.IsAuthenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !cc.HasRole(roles...) {
				slog.Warn("access_denied",
					"user_id", cc.User.ID,
					"role", cc.Role,
					"path", c.Path(),
				)
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
