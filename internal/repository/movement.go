// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/logico/fleet/internal/models"
)

const movementSelect = `
	SELECT m.*,
		COALESCE(d.name, '') AS driver_name,
		COALESCE(p.name, '') AS origin_name,
		COALESCE(v.plate, '') AS vehicle_plate
	FROM movements m
	LEFT JOIN drivers d ON d.id = m.driver_id
	LEFT JOIN pharmacies p ON p.id = m.origin_pharmacy_id
	LEFT JOIN vehicles v ON v.id = m.vehicle_id`

const movementOrder = ` ORDER BY m.created_at DESC, m.id DESC`

// CreateMovement inserts a movement. A zero CreatedAt is stamped with the
// current time and an empty State defaults to in progress.
func (r *Repository) CreateMovement(ctx context.Context, m *models.Movement) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.timestamp()
	}
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.CreatedAt
	if m.State == "" {
		m.State = models.StateInProgress
	}

	id, err := r.insert(ctx, `
		INSERT INTO movements (code, kind, description, state, created_at, updated_at,
			origin_pharmacy_id, destination, driver_id, vehicle_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Code, m.Kind, m.Description, m.State, m.CreatedAt, m.UpdatedAt,
		m.OriginPharmacyID, m.Destination, m.DriverID, m.VehicleID)
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// GetMovement retrieves a movement with its resolved reference names.
func (r *Repository) GetMovement(ctx context.Context, id int64) (*models.Movement, error) {
	var m models.Movement
	if err := r.get(ctx, &m, movementSelect+` WHERE m.id = ?`, id); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMovements returns all movements, newest first.
func (r *Repository) ListMovements(ctx context.Context) ([]models.Movement, error) {
	list := []models.Movement{}
	if err := r.selectAll(ctx, &list, movementSelect+movementOrder); err != nil {
		return nil, err
	}
	return list, nil
}

// ListMovementsBetween returns movements created in [from, to), newest first.
func (r *Repository) ListMovementsBetween(ctx context.Context, from, to time.Time) ([]models.Movement, error) {
	list := []models.Movement{}
	err := r.selectAll(ctx, &list,
		movementSelect+` WHERE m.created_at >= ? AND m.created_at < ?`+movementOrder,
		from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateMovement stores the mutable fields of a movement.
func (r *Repository) UpdateMovement(ctx context.Context, m *models.Movement) error {
	m.UpdatedAt = r.timestamp()
	return r.execOne(ctx, `
		UPDATE movements SET code = ?, kind = ?, description = ?, state = ?, updated_at = ?,
			origin_pharmacy_id = ?, destination = ?, driver_id = ?, vehicle_id = ?
		WHERE id = ?`,
		m.Code, m.Kind, m.Description, m.State, m.UpdatedAt,
		m.OriginPharmacyID, m.Destination, m.DriverID, m.VehicleID, m.ID)
}

func (r *Repository) DeleteMovement(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM movements WHERE id = ?`, id)
}
