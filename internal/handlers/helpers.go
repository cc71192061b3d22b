// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/logico/fleet/internal/validate"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// bind decodes the request body (JSON or form) into dst and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return validate.Struct(dst)
}

// paramID parses the :id path parameter.
func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "invalid id")
	}
	return id, nil
}

// wantsHTML reports whether the client prefers an HTML response.
func wantsHTML(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	if accept == "" {
		return false
	}
	html := strings.Index(accept, echo.MIMETextHTML)
	json := strings.Index(accept, echo.MIMEApplicationJSON)
	switch {
	case html < 0:
		return false
	case json < 0:
		return true
	default:
		return html < json
	}
}

// message is the JSON body of informational responses.
type message struct {
	Message string `json:"message"`
}
