// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context.
package appcontext

import (
	"codeberg.org/logico/fleet/internal/models"
	"github.com/labstack/echo/v4"
)

// Context is a custom Echo context carrying the authenticated user and role.
type Context struct {
	echo.Context
	User *models.User // nil if not authenticated
	Role models.Role  // empty if the user has no active role
}

// From returns c as *Context, wrapping plain Echo contexts.
func From(c echo.Context) *Context {
	if cc, ok := c.(*Context); ok {
		return cc
	}
	return &Context{Context: c}
}

// Middleware replaces the Echo context with *Context for all later handlers.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(From(c))
		}
	}
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	return c.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// HasRole reports whether the user holds one of roles.
func (c *Context) HasRole(roles ...models.Role) bool {
	if c.User == nil || c.Role == "" {
		return false
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}
