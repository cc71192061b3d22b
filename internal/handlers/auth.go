// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"codeberg.org/logico/fleet/internal/appcontext"
	"codeberg.org/logico/fleet/internal/i18n"
	authsvc "codeberg.org/logico/fleet/internal/services/auth"
	"codeberg.org/logico/fleet/internal/services/session"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for login, logout, registration and
// password changes.
type AuthHandlers struct {
	auth     *authsvc.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(auth *authsvc.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{auth: auth, sessions: sessions}
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"notblank"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Login checks the credentials and sets the session cookie.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}

	role, ok, err := h.auth.Role(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("loading role: %w", err)
	}
	if !ok {
		role = ""
	}

	cookie, err := h.sessions.Create(user.ID, user.Username, role)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, newMeResponse(user, role))
}

// Logout clears the session cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	if user := appcontext.From(c).GetUser(); user != nil {
		slog.Info("logout", "user_id", user.ID)
	}
	c.SetCookie(h.sessions.Clear())
	return c.JSON(http.StatusOK, message{Message: i18n.T(c.Request().Context(), "logged_out")})
}

type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"notblank,max=150"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Confirm  string `json:"password_confirm" form:"password_confirm" validate:"required"`
}

// Register creates a receptionist account.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), authsvc.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Confirm:  req.Confirm,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, struct {
		MeResponse
		Message string `json:"message"`
	}{
		MeResponse: newMeResponse(user, ""),
		Message:    i18n.T(c.Request().Context(), "registration_success"),
	})
}

type ChangePasswordRequest struct {
	Current string `json:"current_password" form:"current_password" validate:"required"`
	New     string `json:"new_password" form:"new_password" validate:"required"`
	Confirm string `json:"new_password_confirm" form:"new_password_confirm" validate:"required"`
}

// ChangePassword changes the password of the logged-in user.
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	cc := appcontext.From(c)
	if !cc.IsAuthenticated() {
		return echo.ErrUnauthorized
	}

	var req ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err := h.auth.ChangePassword(c.Request().Context(), cc.User.ID, req.Current, req.New, req.Confirm)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message{Message: i18n.T(c.Request().Context(), "password_changed")})
}
