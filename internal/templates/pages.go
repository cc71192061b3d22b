// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Home renders the landing page.
func Home() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>`)
		h.text(T(ctx, "app_name"))
		h.raw(`</h1><p>`)
		h.text(T(ctx, "app_tagline"))
		h.raw(`</p><p>`)
		h.text(T(ctx, "home_intro"))
		h.raw(`</p>`)
		if IsAuthenticated(ctx) {
			h.raw(`<p><a href="/reports/movements">`)
			h.text(T(ctx, "home_reports"))
			h.raw(`</a></p>`)
		}
		return h.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(T(ctx, "app_name"), body).Render(ctx, w)
	})
}

// Error renders an error page.
func Error(code int, title, message string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>`)
		h.text(strconv.Itoa(code))
		h.raw(` `)
		h.text(title)
		h.raw(`</h1><p class="error">`)
		h.text(message)
		h.raw(`</p><p><a href="/">&larr;</a></p>`)
		return h.err
	})
	return Layout(title, body)
}
