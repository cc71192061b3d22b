// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ctxkeys defines typed context keys used across packages.
package ctxkeys

// CSRFToken is the context key for the CSRF token.
type CSRFToken struct{}

// User is the context key for the authenticated user.
type User struct{}

// Role is the context key for the active role of the authenticated user.
type Role struct{}

// RequestID is the context key for the request id.
type RequestID struct{}
