// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package report

import "codeberg.org/logico/fleet/internal/models"

// PageCount renders rows with l and returns the number of pages produced.
func (l Layout) PageCount(rows []models.Movement, f Filter, labels Labels) (int, error) {
	pdf, err := l.build(rows, f, labels)
	if err != nil {
		return 0, err
	}
	return pdf.PageCount(), nil
}
