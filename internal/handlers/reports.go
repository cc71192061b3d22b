// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/logico/fleet/internal/appcontext"
	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/repository"
	"codeberg.org/logico/fleet/internal/services/report"
	"codeberg.org/logico/fleet/internal/templates"
	"github.com/labstack/echo/v4"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandlers serves the movement report and its downloads.
type ReportHandlers struct {
	engine *report.Engine
	repo   *repository.Repository
}

// NewReports creates a new ReportHandlers instance.
func NewReports(engine *report.Engine, repo *repository.Repository) *ReportHandlers {
	return &ReportHandlers{engine: engine, repo: repo}
}

// filterQuery keeps only the report parameters of the request query.
func filterQuery(c echo.Context) url.Values {
	q := url.Values{}
	for _, key := range []string{"tipo", "fecha", "mes", "anio"} {
		if v := strings.TrimSpace(c.QueryParam(key)); v != "" {
			q.Set(key, v)
		}
	}
	return q
}

func parseFilter(q url.Values) (report.Filter, error) {
	return report.ParseFilter(q.Get("tipo"), q.Get("fecha"), q.Get("mes"), q.Get("anio"))
}

// prefersJSON reports whether the Accept header ranks JSON before HTML.
func prefersJSON(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	json := strings.Index(accept, echo.MIMEApplicationJSON)
	if json < 0 {
		return false
	}
	html := strings.Index(accept, echo.MIMETextHTML)
	return html < 0 || json < html
}

// ReportFilter is the JSON form of the applied filter.
type ReportFilter struct {
	Kind        models.ReportKind `json:"kind,omitempty"`
	Year        int               `json:"year,omitempty"`
	Month       int               `json:"month,omitempty"`
	Day         int               `json:"day,omitempty"`
	Description string            `json:"description"`
}

// ReportResponse is the JSON form of a generated report.
type ReportResponse struct {
	Filter    ReportFilter         `json:"filter"`
	Count     int                  `json:"count"`
	Movements []models.Movement    `json:"movements"`
	Record    *models.ReportRecord `json:"record,omitempty"`
}

// Movements generates the report and appends an audit record when a report
// kind is given.
func (h *ReportHandlers) Movements(c echo.Context) error {
	q := filterQuery(c)
	f, err := parseFilter(q)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	result, err := h.engine.Generate(ctx, f, actor(c))
	if err != nil {
		return err
	}
	labels := report.NewLabels(ctx, f, h.engine.Location())

	if prefersJSON(c) {
		return c.JSON(http.StatusOK, ReportResponse{
			Filter: ReportFilter{
				Kind:        f.Kind,
				Year:        f.Year,
				Month:       int(f.Month),
				Day:         f.Day,
				Description: labels.FilterLine,
			},
			Count:     len(result.Movements),
			Movements: result.Movements,
			Record:    result.Record,
		})
	}

	return Render(c, http.StatusOK, templates.Report(templates.ReportPage{
		Labels:    labels,
		Movements: result.Movements,
		Query:     q,
	}))
}

// PDF downloads the filtered report as PDF. Downloads are not audited.
func (h *ReportHandlers) PDF(c echo.Context) error {
	f, rows, labels, err := h.rows(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.RenderPDF(&buf, rows, f, labels); err != nil {
		return err
	}
	setAttachment(c, report.PDFFilename)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

// XLSX downloads the filtered report as a spreadsheet. Downloads are not audited.
func (h *ReportHandlers) XLSX(c echo.Context) error {
	_, rows, labels, err := h.rows(c)
	if err != nil {
		return err
	}

	data, err := report.RenderXLSX(rows, labels)
	if err != nil {
		return err
	}
	setAttachment(c, report.XLSXFilename)
	return c.Blob(http.StatusOK, mimeXLSX, data)
}

// Records lists the report audit log.
func (h *ReportHandlers) Records(c echo.Context) error {
	return list(c, h.repo.ListReportRecords)
}

func (h *ReportHandlers) rows(c echo.Context) (report.Filter, []models.Movement, report.Labels, error) {
	f, err := parseFilter(filterQuery(c))
	if err != nil {
		return report.Filter{}, nil, report.Labels{}, err
	}
	ctx := c.Request().Context()
	rows, err := h.engine.Rows(ctx, f)
	if err != nil {
		return report.Filter{}, nil, report.Labels{}, err
	}
	return f, rows, report.NewLabels(ctx, f, h.engine.Location()), nil
}

func setAttachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
}

func actor(c echo.Context) string {
	if user := appcontext.From(c).GetUser(); user != nil {
		return user.Username
	}
	return ""
}
