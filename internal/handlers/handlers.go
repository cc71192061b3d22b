// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers implements the HTTP handlers of the fleet service.
package handlers

import (
	"net/http"

	"codeberg.org/logico/fleet/internal/appcontext"
	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/repository"
	"codeberg.org/logico/fleet/internal/templates"
	"github.com/labstack/echo/v4"
)

// Handlers contains the health, landing page and record handlers.
type Handlers struct {
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(repo *repository.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the home page.
func (h *Handlers) Home(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Home())
}

// MeResponse describes the logged-in user and where the role lands.
type MeResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role,omitempty"`
	Dashboard string      `json:"dashboard"`
}

func newMeResponse(user *models.User, role models.Role) MeResponse {
	dashboard := role.Dashboard()
	if dashboard == "" {
		dashboard = "home"
	}
	return MeResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      role,
		Dashboard: dashboard,
	}
}

// Me returns the current user and the dashboard of its role.
func (h *Handlers) Me(c echo.Context) error {
	cc := appcontext.From(c)
	if !cc.IsAuthenticated() {
		return echo.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, newMeResponse(cc.User, cc.Role))
}
