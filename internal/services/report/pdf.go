// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package report

import (
	"fmt"
	"io"

	"codeberg.org/logico/fleet/internal/models"
	"github.com/go-pdf/fpdf"
)

// PDFFilename is the suggested download name of the PDF report.
const PDFFilename = "reporte_movimientos.pdf"

// Layout holds the page geometry of the PDF report in points. The cursor y
// grows downwards from the top edge.
type Layout struct {
	PageWidth     float64
	PageHeight    float64
	LeftMargin    float64
	TopMargin     float64
	BottomMargin  float64
	TitleAdvance  float64
	FilterAdvance float64
	HeaderAdvance float64
	LineHeight    float64
	// ColumnWidths must have one entry per column.
	ColumnWidths []float64
}

// DefaultLayout is a US-Letter page.
var DefaultLayout = Layout{
	PageWidth:     612,
	PageHeight:    792,
	LeftMargin:    40,
	TopMargin:     50,
	BottomMargin:  60,
	TitleAdvance:  30,
	FilterAdvance: 30,
	HeaderAdvance: 18,
	LineHeight:    15,
	ColumnWidths:  []float64{70, 70, 70, 85, 85, 80, 72},
}

// limit is the lowest cursor position a row may start at.
func (l Layout) limit() float64 {
	return l.PageHeight - l.BottomMargin
}

func (l Layout) rowsFrom(start float64) int {
	if start > l.limit() {
		return 0
	}
	return int((l.limit()-start)/l.LineHeight) + 1
}

// FirstPageRows is the number of rows that fit under the title block.
func (l Layout) FirstPageRows() int {
	return l.rowsFrom(l.TopMargin + l.TitleAdvance + l.FilterAdvance + l.HeaderAdvance)
}

// PageRows is the number of rows on a continuation page.
func (l Layout) PageRows() int {
	return l.rowsFrom(l.TopMargin + l.HeaderAdvance)
}

// Pages returns the number of pages needed for n rows.
func (l Layout) Pages(n int) int {
	first := l.FirstPageRows()
	if n <= first {
		return 1
	}
	per := l.PageRows()
	return 1 + (n-first+per-1)/per
}

// RenderPDF writes the report for rows to w using DefaultLayout.
func RenderPDF(w io.Writer, rows []models.Movement, f Filter, labels Labels) error {
	pdf, err := DefaultLayout.build(rows, f, labels)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func (l Layout) build(rows []models.Movement, f Filter, labels Labels) (*fpdf.Fpdf, error) {
	if len(labels.Columns) != len(l.ColumnWidths) {
		return nil, fmt.Errorf("layout has %d columns, labels have %d", len(l.ColumnWidths), len(labels.Columns))
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(l.LeftMargin, l.TopMargin, l.LeftMargin)
	pdf.SetTitle(labels.Title, true)
	pdf.SetSubject(labels.FilterLine, true)
	pdf.SetCreator("LogiCo", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func(y float64) float64 {
		pdf.SetFont("Helvetica", "B", 9)
		x := l.LeftMargin
		for i, col := range labels.Columns {
			pdf.Text(x, y, fit(pdf, tr(col), l.ColumnWidths[i]-4))
			x += l.ColumnWidths[i]
		}
		pdf.Line(l.LeftMargin, y+4, l.PageWidth-l.LeftMargin, y+4)
		pdf.SetFont("Helvetica", "", 9)
		return y + l.HeaderAdvance
	}

	pdf.AddPage()
	y := l.TopMargin
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(l.LeftMargin, y, tr(labels.Title))
	y += l.TitleAdvance

	filterLine := labels.FilterLine
	if filterLine == "" && f.Specified() {
		filterLine = string(f.Kind)
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(l.LeftMargin, y, tr(filterLine))
	y += l.FilterAdvance

	y = header(y)

	for _, m := range rows {
		if y > l.limit() {
			pdf.AddPage()
			y = header(l.TopMargin)
		}
		x := l.LeftMargin
		for i, cell := range labels.Cells(m) {
			pdf.Text(x, y, fit(pdf, tr(cell), l.ColumnWidths[i]-4))
			x += l.ColumnWidths[i]
		}
		y += l.LineHeight
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return pdf, nil
}

// fit shortens s until it is at most width points wide in the current font.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	b := []byte(s)
	for len(b) > 0 && pdf.GetStringWidth(string(b)+"..") > width {
		b = b[:len(b)-1]
	}
	return string(b) + ".."
}
