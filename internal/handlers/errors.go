// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/logico/fleet/internal/i18n"
	"codeberg.org/logico/fleet/internal/repository"
	authsvc "codeberg.org/logico/fleet/internal/services/auth"
	"codeberg.org/logico/fleet/internal/services/recovery"
	"codeberg.org/logico/fleet/internal/services/report"
	"codeberg.org/logico/fleet/internal/templates"
	"codeberg.org/logico/fleet/internal/validate"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body of failed requests.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// Classify maps an error to its HTTP status and translation id.
func Classify(err error) (int, string) {
	var he *echo.HTTPError
	var verr *validate.Error
	var perr *authsvc.PasswordValidationError

	switch {
	case errors.As(err, &he):
		return he.Code, messageForStatus(he.Code)
	case errors.As(err, &verr), errors.As(err, &perr),
		errors.Is(err, report.ErrInvalidFilter),
		errors.Is(err, recovery.ErrInvalidPassword),
		errors.Is(err, authsvc.ErrInvalidEmail),
		errors.Is(err, authsvc.ErrInvalidUsername),
		errors.Is(err, authsvc.ErrInvalidRole):
		return http.StatusUnprocessableEntity, "error_validation"
	case errors.Is(err, repository.ErrInvalidReference):
		return http.StatusUnprocessableEntity, "error_invalid_reference"
	case errors.Is(err, authsvc.ErrUserExists):
		return http.StatusConflict, "user_exists"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "error_conflict"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, authsvc.ErrUserNotFound):
		return http.StatusNotFound, "error_not_found"
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		return http.StatusUnauthorized, "login_failed"
	case errors.Is(err, recovery.ErrNotVerified):
		return http.StatusForbidden, "recovery_must_verify"
	case errors.Is(err, recovery.ErrDelivery):
		return http.StatusServiceUnavailable, "recovery_delivery_failed"
	}
	return http.StatusInternalServerError, "error_internal"
}

func messageForStatus(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "error_unauthorized"
	case http.StatusForbidden:
		return "error_forbidden"
	case http.StatusNotFound:
		return "error_not_found"
	case http.StatusConflict:
		return "error_conflict"
	case http.StatusUnprocessableEntity:
		return "error_validation"
	case http.StatusTooManyRequests:
		return "error_too_many_requests"
	}
	if code >= http.StatusInternalServerError {
		return "error_internal"
	}
	return "error_bad_request"
}

func details(err error) []string {
	var verr *validate.Error
	if errors.As(err, &verr) {
		out := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			out = append(out, f.Field+": "+f.Rule)
		}
		return out
	}
	var perr *authsvc.PasswordValidationError
	if errors.As(err, &perr) {
		return perr.Messages()
	}
	if errors.Is(err, report.ErrInvalidFilter) {
		return []string{err.Error()}
	}
	return nil
}

// ErrorHandler is the Echo HTTP error handler. It answers with JSON unless
// the client asks for HTML.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msgID := Classify(err)
	if code >= http.StatusInternalServerError {
		slog.Error("request_failed", "error", err, "method", c.Request().Method, "path", c.Path())
	}

	msg := i18n.T(c.Request().Context(), msgID)

	var renderErr error
	switch {
	case c.Request().Method == http.MethodHead:
		renderErr = c.NoContent(code)
	case wantsHTML(c):
		title := http.StatusText(code)
		if title == "" {
			title = "Error"
		}
		renderErr = Render(c, code, templates.Error(code, title, msg))
	default:
		renderErr = c.JSON(code, ErrorResponse{Error: msg, Code: msgID, Details: details(err)})
	}
	if renderErr != nil {
		slog.Error("failed to write error response", "error", renderErr)
	}
}
