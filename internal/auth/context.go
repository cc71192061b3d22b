// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"codeberg.org/logico/fleet/internal/ctxkeys"
	"codeberg.org/logico/fleet/internal/models"
)

// WithUser stores the authenticated user and its role in ctx. An empty role
// means the user has no active role.
func WithUser(ctx context.Context, user *models.User, role models.Role) context.Context {
	ctx = context.WithValue(ctx, ctxkeys.User{}, user)
	return context.WithValue(ctx, ctxkeys.Role{}, role)
}

// GetUser returns the authenticated user from the context, or nil if not authenticated.
func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(ctxkeys.User{}).(*models.User); ok {
		return user
	}
	return nil
}

// GetRole returns the active role of the authenticated user.
func GetRole(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(ctxkeys.Role{}).(models.Role)
	if !ok || role == "" {
		return "", false
	}
	return role, true
}

// IsAuthenticated returns true if the context has an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	return GetUser(ctx) != nil
}
