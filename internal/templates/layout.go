// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `body{font-family:system-ui,sans-serif;margin:0;color:#1f2933}
header{background:#0b5394;color:#fff;padding:.75rem 1.5rem;display:flex;justify-content:space-between}
header a{color:#fff;text-decoration:none}
main{padding:1.5rem;max-width:72rem;margin:0 auto}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #d9e2ec;padding:.4rem;text-align:left;font-size:.9rem}
th{background:#e6f3ff}
form.filter{display:flex;gap:.5rem;align-items:end;margin-bottom:1rem;flex-wrap:wrap}
.error{color:#b42318}`

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!doctype html><html lang="`)
		h.attr(Locale(ctx))
		h.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		if token := CSRFToken(ctx); token != "" {
			h.raw(`<meta name="csrf-token" content="`)
			h.attr(token)
			h.raw(`">`)
		}
		h.raw(`<title>`)
		h.text(title)
		h.raw(` · `)
		h.text(T(ctx, "app_name"))
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style></head><body><header><a href="/">`)
		h.text(T(ctx, "app_name"))
		h.raw(`</a>`)
		if user := GetUser(ctx); user != nil {
			h.raw(`<span>`)
			h.text(user.Username)
			h.raw(`</span>`)
		}
		h.raw(`</header><main>`)
		h.component(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}
