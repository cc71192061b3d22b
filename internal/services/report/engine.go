// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package report filters movements by creation date, keeps the report audit
// log and renders reports as PDF and spreadsheet documents.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/repository"
)

// Result is a generated report.
type Result struct {
	Filter    Filter
	Movements []models.Movement
	// Record is the audit entry, nil for unfiltered reports.
	Record *models.ReportRecord
}

type Engine struct {
	repo *repository.Repository
	loc  *time.Location
	now  func() time.Time
}

// NewEngine creates a report engine evaluating date buckets in loc.
func NewEngine(repo *repository.Repository, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{repo: repo, loc: loc, now: time.Now}
}

// WithClock replaces the clock used to stamp audit records.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Location returns the time zone of the date buckets.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Rows returns the movements selected by f without writing an audit record.
func (e *Engine) Rows(ctx context.Context, f Filter) ([]models.Movement, error) {
	return e.rows(ctx, e.repo, f)
}

func (e *Engine) rows(ctx context.Context, repo *repository.Repository, f Filter) ([]models.Movement, error) {
	from, to, ok := f.Range(e.loc)
	if !ok {
		return repo.ListMovements(ctx)
	}
	return repo.ListMovementsBetween(ctx, from, to)
}

// Generate selects the movements of f. When a kind is specified exactly one
// ReportRecord is appended with the number of rows and the acting user.
func (e *Engine) Generate(ctx context.Context, f Filter, actor string) (*Result, error) {
	result := &Result{Filter: f}

	err := e.repo.InTx(ctx, func(tx *repository.Repository) error {
		rows, err := e.rows(ctx, tx, f)
		if err != nil {
			return fmt.Errorf("listing movements: %w", err)
		}
		result.Movements = rows

		if !f.Specified() {
			return nil
		}
		record := &models.ReportRecord{
			Kind:          f.Kind,
			GeneratedAt:   e.now(),
			GeneratedBy:   actor,
			MovementCount: len(rows),
		}
		if err := tx.CreateReportRecord(ctx, record); err != nil {
			return fmt.Errorf("recording report: %w", err)
		}
		result.Record = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Record != nil {
		slog.Info("report_generated",
			"kind", f.Kind,
			"generated_by", actor,
			"movement_count", result.Record.MovementCount,
		)
	}
	return result, nil
}
