// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"

	"codeberg.org/logico/fleet/internal/models"
)

// CreateVehicle inserts a vehicle. Plates are stored upper-case and must be unique.
func (r *Repository) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	v.CreatedAt = r.timestamp()
	id, err := r.insert(ctx, `
		INSERT INTO vehicles (plate, brand, model, year, available, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.Plate, v.Brand, v.Model, v.Year, v.Available, v.CreatedAt)
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

func (r *Repository) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := r.get(ctx, &v, `SELECT * FROM vehicles WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	if err := r.selectAll(ctx, &vehicles, `SELECT * FROM vehicles ORDER BY plate`); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *Repository) UpdateVehicle(ctx context.Context, v *models.Vehicle) error {
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	return r.execOne(ctx, `
		UPDATE vehicles SET plate = ?, brand = ?, model = ?, year = ?, available = ? WHERE id = ?`,
		v.Plate, v.Brand, v.Model, v.Year, v.Available, v.ID)
}

func (r *Repository) DeleteVehicle(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
}
