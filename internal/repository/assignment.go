// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/logico/fleet/internal/models"
)

// ===== Vehicle assignments =====

func (r *Repository) CreateVehicleAssignment(ctx context.Context, a *models.VehicleAssignment) error {
	id, err := r.insert(ctx, `
		INSERT INTO vehicle_assignments (driver_id, vehicle_id, assigned_on, ends_on, active)
		VALUES (?, ?, ?, ?, ?)`,
		a.DriverID, a.VehicleID, a.AssignedOn.UTC(), utcPtr(a.EndsOn), a.Active)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *Repository) GetVehicleAssignment(ctx context.Context, id int64) (*models.VehicleAssignment, error) {
	var a models.VehicleAssignment
	if err := r.get(ctx, &a, `SELECT * FROM vehicle_assignments WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) ListVehicleAssignments(ctx context.Context) ([]models.VehicleAssignment, error) {
	list := []models.VehicleAssignment{}
	err := r.selectAll(ctx, &list, `SELECT * FROM vehicle_assignments ORDER BY assigned_on DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) UpdateVehicleAssignment(ctx context.Context, a *models.VehicleAssignment) error {
	return r.execOne(ctx, `
		UPDATE vehicle_assignments SET driver_id = ?, vehicle_id = ?, assigned_on = ?, ends_on = ?, active = ?
		WHERE id = ?`,
		a.DriverID, a.VehicleID, a.AssignedOn.UTC(), utcPtr(a.EndsOn), a.Active, a.ID)
}

func (r *Repository) DeleteVehicleAssignment(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM vehicle_assignments WHERE id = ?`, id)
}

// ===== Pharmacy assignments =====

func (r *Repository) CreatePharmacyAssignment(ctx context.Context, a *models.PharmacyAssignment) error {
	id, err := r.insert(ctx, `
		INSERT INTO pharmacy_assignments (driver_id, pharmacy_id, assigned_on, ends_on, active)
		VALUES (?, ?, ?, ?, ?)`,
		a.DriverID, a.PharmacyID, a.AssignedOn.UTC(), utcPtr(a.EndsOn), a.Active)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *Repository) GetPharmacyAssignment(ctx context.Context, id int64) (*models.PharmacyAssignment, error) {
	var a models.PharmacyAssignment
	if err := r.get(ctx, &a, `SELECT * FROM pharmacy_assignments WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) ListPharmacyAssignments(ctx context.Context) ([]models.PharmacyAssignment, error) {
	list := []models.PharmacyAssignment{}
	err := r.selectAll(ctx, &list, `SELECT * FROM pharmacy_assignments ORDER BY assigned_on DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) UpdatePharmacyAssignment(ctx context.Context, a *models.PharmacyAssignment) error {
	return r.execOne(ctx, `
		UPDATE pharmacy_assignments SET driver_id = ?, pharmacy_id = ?, assigned_on = ?, ends_on = ?, active = ?
		WHERE id = ?`,
		a.DriverID, a.PharmacyID, a.AssignedOn.UTC(), utcPtr(a.EndsOn), a.Active, a.ID)
}

func (r *Repository) DeletePharmacyAssignment(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM pharmacy_assignments WHERE id = ?`, id)
}
