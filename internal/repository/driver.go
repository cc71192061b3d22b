// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"

	"codeberg.org/logico/fleet/internal/models"
)

// CreateDriver inserts a driver. The national id must be unique.
func (r *Repository) CreateDriver(ctx context.Context, d *models.Driver) error {
	d.NationalID = strings.ToUpper(strings.TrimSpace(d.NationalID))
	if d.Status == "" {
		d.Status = "ACTIVO"
	}
	d.CreatedAt = r.timestamp()
	id, err := r.insert(ctx, `
		INSERT INTO drivers (name, national_id, phone, email, license, status, hired_on, pharmacy_id, vehicle_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Name, d.NationalID, d.Phone, d.Email, d.License, d.Status, d.HiredOn.UTC(),
		d.PharmacyID, d.VehicleID, d.CreatedAt)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (r *Repository) GetDriver(ctx context.Context, id int64) (*models.Driver, error) {
	var d models.Driver
	if err := r.get(ctx, &d, `SELECT * FROM drivers WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	drivers := []models.Driver{}
	if err := r.selectAll(ctx, &drivers, `SELECT * FROM drivers ORDER BY name, id`); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *Repository) UpdateDriver(ctx context.Context, d *models.Driver) error {
	d.NationalID = strings.ToUpper(strings.TrimSpace(d.NationalID))
	return r.execOne(ctx, `
		UPDATE drivers SET name = ?, national_id = ?, phone = ?, email = ?, license = ?, status = ?,
			hired_on = ?, pharmacy_id = ?, vehicle_id = ?
		WHERE id = ?`,
		d.Name, d.NationalID, d.Phone, d.Email, d.License, d.Status, d.HiredOn.UTC(),
		d.PharmacyID, d.VehicleID, d.ID)
}

func (r *Repository) DeleteDriver(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM drivers WHERE id = ?`, id)
}
