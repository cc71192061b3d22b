// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"codeberg.org/logico/fleet/internal/i18n"
	"codeberg.org/logico/fleet/internal/services/recovery"
	"codeberg.org/logico/fleet/internal/services/session"
	"github.com/labstack/echo/v4"
)

// RecoveryHandlers implements the three steps of password recovery: request
// a code, verify it, and set a new password.
type RecoveryHandlers struct {
	recovery *recovery.Manager
	sessions *session.Manager
}

// NewRecovery creates a new RecoveryHandlers instance.
func NewRecovery(mgr *recovery.Manager, sessions *session.Manager) *RecoveryHandlers {
	return &RecoveryHandlers{recovery: mgr, sessions: sessions}
}

type RecoveryRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// Request issues a code for the email. Unknown emails get the same response
// as known ones. Delivery failures are returned to the caller.
func (h *RecoveryHandlers) Request(c echo.Context) error {
	var req RecoveryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	email := strings.TrimSpace(req.Email)

	_, err := h.recovery.RequestCode(c.Request().Context(), email)
	if err != nil && !errors.Is(err, recovery.ErrNotFound) {
		return err
	}

	cookie, err := h.sessions.CreateRecovery(session.Recovery{Email: email})
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusAccepted, message{Message: i18n.T(c.Request().Context(), "recovery_request_sent")})
}

type VerifyRequest struct {
	Email string `json:"email" form:"email" validate:"omitempty,email"`
	Code  string `json:"code" form:"code" validate:"notblank"`
}

// VerifyResponse reports the outcome of a code verification.
type VerifyResponse struct {
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

// Verify checks a code. The email comes from the recovery session, or from
// the request when the session is gone.
func (h *RecoveryHandlers) Verify(c echo.Context) error {
	var req VerifyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	email := strings.TrimSpace(req.Email)
	if state := h.sessions.ParseRecovery(c.Request()); state != nil && state.Email != "" {
		email = state.Email
	}
	if email == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "email required")
	}

	ctx := c.Request().Context()
	outcome, code, err := h.recovery.VerifyCode(ctx, email, req.Code)
	if err != nil {
		return err
	}

	resp := VerifyResponse{
		Outcome: outcome.String(),
		Message: i18n.T(ctx, "recovery_code_"+outcome.String()),
	}
	if outcome != recovery.OutcomeValid {
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}

	cookie, err := h.sessions.CreateRecovery(session.Recovery{
		Email:    email,
		CodeID:   code.ID,
		Verified: true,
	})
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.JSON(http.StatusOK, resp)
}

type ResetRequest struct {
	Password string `json:"password" form:"password"`
	Confirm  string `json:"password_confirm" form:"password_confirm"`
}

// Reset sets the new password for a verified recovery session and clears it.
func (h *RecoveryHandlers) Reset(c echo.Context) error {
	var req ResetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	authz := recovery.Authorization{}
	if state := h.sessions.ParseRecovery(c.Request()); state != nil {
		authz = recovery.Authorization{
			Email:    state.Email,
			CodeID:   state.CodeID,
			Verified: state.Verified,
		}
	}

	if err := h.recovery.Consume(c.Request().Context(), authz, req.Password, req.Confirm); err != nil {
		return err
	}

	c.SetCookie(h.sessions.ClearRecovery())
	return c.JSON(http.StatusOK, message{Message: i18n.T(c.Request().Context(), "recovery_password_reset")})
}
