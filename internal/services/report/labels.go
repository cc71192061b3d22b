// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package report

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/logico/fleet/internal/i18n"
	"codeberg.org/logico/fleet/internal/models"
)

// Labels holds the localized text of a rendered report.
type Labels struct {
	Title      string
	FilterLine string
	Sheet      string
	Columns    []string
	Kinds      map[models.MovementKind]string
	States     map[models.MovementState]string
	// Location is used to format the Date column.
	Location *time.Location
}

// NewLabels localizes the report text for the locale in ctx.
func NewLabels(ctx context.Context, f Filter, loc *time.Location) Labels {
	if loc == nil {
		loc = time.UTC
	}
	l := Labels{
		Title:      title(ctx, f),
		FilterLine: describeFilter(ctx, f),
		Sheet:      i18n.T(ctx, "report_sheet"),
		Columns: []string{
			i18n.T(ctx, "report_col_code"),
			i18n.T(ctx, "report_col_kind"),
			i18n.T(ctx, "report_col_state"),
			i18n.T(ctx, "report_col_date"),
			i18n.T(ctx, "report_col_driver"),
			i18n.T(ctx, "report_col_origin"),
			i18n.T(ctx, "report_col_destination"),
		},
		Kinds:    map[models.MovementKind]string{},
		States:   map[models.MovementState]string{},
		Location: loc,
	}
	for _, k := range []models.MovementKind{models.KindDirect, models.KindPrescription, models.KindTransfer, models.KindForward} {
		l.Kinds[k] = i18n.T(ctx, "kind_"+string(k))
	}
	for _, s := range []models.MovementState{models.StateInProgress, models.StateCompleted, models.StateVoided} {
		l.States[s] = i18n.T(ctx, "state_"+string(s))
	}
	return l
}

// title names the report kind when one is selected.
func title(ctx context.Context, f Filter) string {
	var kind string
	switch f.Kind {
	case models.ReportDaily:
		kind = i18n.T(ctx, "report_kind_daily")
	case models.ReportMonthly:
		kind = i18n.T(ctx, "report_kind_monthly")
	case models.ReportAnnual:
		kind = i18n.T(ctx, "report_kind_annual")
	default:
		return i18n.T(ctx, "report_title")
	}
	return i18n.TData(ctx, "report_title_kind", map[string]any{"Kind": kind})
}

func describeFilter(ctx context.Context, f Filter) string {
	switch f.Kind {
	case models.ReportDaily:
		date := time.Date(f.Year, f.Month, f.Day, 0, 0, 0, 0, time.UTC)
		return i18n.TData(ctx, "report_filter_daily", map[string]any{"Date": date.Format(DateLayout)})
	case models.ReportMonthly:
		return i18n.TData(ctx, "report_filter_monthly", map[string]any{
			"Month": fmt.Sprintf("%02d", int(f.Month)),
			"Year":  f.Year,
		})
	case models.ReportAnnual:
		return i18n.TData(ctx, "report_filter_annual", map[string]any{"Year": f.Year})
	}
	return i18n.T(ctx, "report_filter_all")
}

// Cells returns the table cells of a movement. Unset references are empty.
func (l Labels) Cells(m models.Movement) []string {
	loc := l.Location
	if loc == nil {
		loc = time.UTC
	}
	kind, ok := l.Kinds[m.Kind]
	if !ok {
		kind = string(m.Kind)
	}
	state, ok := l.States[m.State]
	if !ok {
		state = string(m.State)
	}
	return []string{
		m.Code,
		kind,
		state,
		m.CreatedAt.In(loc).Format("02/01/2006 15:04"),
		m.DriverName,
		m.OriginName,
		m.Destination,
	}
}
