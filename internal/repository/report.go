// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/logico/fleet/internal/models"
)

// CreateReportRecord appends an audit entry. Records are never updated.
func (r *Repository) CreateReportRecord(ctx context.Context, rec *models.ReportRecord) error {
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = r.timestamp()
	}
	rec.GeneratedAt = rec.GeneratedAt.UTC()
	id, err := r.insert(ctx, `
		INSERT INTO report_records (kind, generated_at, generated_by, movement_count)
		VALUES (?, ?, ?, ?)`,
		rec.Kind, rec.GeneratedAt, rec.GeneratedBy, rec.MovementCount)
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// ListReportRecords returns the audit log, newest first.
func (r *Repository) ListReportRecords(ctx context.Context) ([]models.ReportRecord, error) {
	list := []models.ReportRecord{}
	err := r.selectAll(ctx, &list, `SELECT * FROM report_records ORDER BY generated_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) CountReportRecords(ctx context.Context) (int64, error) {
	var count int64
	err := r.get(ctx, &count, `SELECT COUNT(*) FROM report_records`)
	return count, err
}
