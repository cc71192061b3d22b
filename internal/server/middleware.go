// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/logico/fleet/internal/appcontext"
	"codeberg.org/logico/fleet/internal/config"
	"codeberg.org/logico/fleet/internal/ctxkeys"
	mw "codeberg.org/logico/fleet/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (a *App) setupMiddleware(e *echo.Echo) {
	e.Pre(mw.StripTrailingSlash())

	e.Use(middleware.Recover())
	e.Use(appcontext.Middleware())
	e.Use(middleware.RequestID())
	e.Use(requestIDToContext())
	e.Use(mw.RequestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", max(a.cfg.Server.MaxBodySize, 1))))
	e.Use(csrfMiddleware(a.cfg))
	e.Use(csrfToContext())
	e.Use(mw.Locale())
	e.Use(mw.LoadUser(a.Sessions, a.Repo))
}

// csrfMiddleware configures CSRF protection for form posts. JSON requests
// cannot be sent cross-site without a CORS preflight and are not checked.
func csrfMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			ct := c.Request().Header.Get(echo.HeaderContentType)
			return strings.HasPrefix(ct, echo.MIMEApplicationJSON)
		},
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// csrfToContext copies the CSRF token to the request context.
func csrfToContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get("csrf").(string); ok {
				ctx := context.WithValue(c.Request().Context(), ctxkeys.CSRFToken{}, token)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// requestIDToContext copies the request id to the request context.
func requestIDToContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				ctx := context.WithValue(c.Request().Context(), ctxkeys.RequestID{}, id)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}
