// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"
	"net/url"

	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/services/report"
	"github.com/a-h/templ"
)

// ReportPage is the data of the movement report result view.
type ReportPage struct {
	Labels    report.Labels
	Movements []models.Movement
	// Query is the raw filter query, reused for the download links.
	Query url.Values
}

// Report renders the report result table with its filter form and download links.
func Report(p ReportPage) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>`)
		h.text(p.Labels.Title)
		h.raw(`</h1>`)

		reportFilterForm(ctx, h, p.Query)

		h.raw(`<p><strong>`)
		h.text(p.Labels.FilterLine)
		h.raw(`</strong> · `)
		h.text(TPlural(ctx, "report_count", len(p.Movements)))
		h.raw(`</p><p>`)
		query := p.Query.Encode()
		if query != "" {
			query = "?" + query
		}
		h.raw(`<a href="/reports/movements/pdf`)
		h.attr(query)
		h.raw(`">`)
		h.text(T(ctx, "report_download_pdf"))
		h.raw(`</a> · <a href="/reports/movements/xlsx`)
		h.attr(query)
		h.raw(`">`)
		h.text(T(ctx, "report_download_xlsx"))
		h.raw(`</a></p>`)

		if len(p.Movements) == 0 {
			h.raw(`<p>`)
			h.text(T(ctx, "report_empty"))
			h.raw(`</p>`)
			return h.err
		}

		h.raw(`<table><thead><tr>`)
		for _, col := range p.Labels.Columns {
			h.raw(`<th>`)
			h.text(col)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, m := range p.Movements {
			h.raw(`<tr>`)
			for _, cell := range p.Labels.Cells(m) {
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
	return Layout(p.Labels.Title, body)
}

func reportFilterForm(ctx context.Context, h *htmlWriter, q url.Values) {
	h.raw(`<form class="filter" method="get" action="/reports/movements"><label>`)
	h.text(T(ctx, "report_filter_kind"))
	h.raw(` <select name="tipo"><option value="">`)
	h.text(T(ctx, "report_filter_none"))
	h.raw(`</option>`)
	selected := q.Get("tipo")
	for _, k := range []struct{ value, label string }{
		{"DAILY", T(ctx, "report_kind_daily")},
		{"MONTHLY", T(ctx, "report_kind_monthly")},
		{"ANNUAL", T(ctx, "report_kind_annual")},
	} {
		h.raw(`<option value="`)
		h.attr(k.value)
		h.raw(`"`)
		if selected == k.value {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(k.label)
		h.raw(`</option>`)
	}
	h.raw(`</select></label>`)
	for _, f := range []struct{ name, typ string }{
		{"fecha", "date"},
		{"mes", "number"},
		{"anio", "number"},
	} {
		h.raw(`<label>`)
		h.text(f.name)
		h.raw(` <input name="`)
		h.attr(f.name)
		h.raw(`" type="`)
		h.attr(f.typ)
		h.raw(`" value="`)
		h.attr(q.Get(f.name))
		h.raw(`"></label>`)
	}
	h.raw(`<button type="submit">`)
	h.text(T(ctx, "report_filter_apply"))
	h.raw(`</button></form>`)
}

