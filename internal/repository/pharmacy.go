// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/logico/fleet/internal/models"
)

// CreatePharmacy inserts a pharmacy.
func (r *Repository) CreatePharmacy(ctx context.Context, p *models.Pharmacy) error {
	p.CreatedAt = r.timestamp()
	id, err := r.insert(ctx, `
		INSERT INTO pharmacies (name, address, phone, email, region, province, commune, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Address, p.Phone, p.Email, p.Region, p.Province, p.Commune, p.CreatedAt)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *Repository) GetPharmacy(ctx context.Context, id int64) (*models.Pharmacy, error) {
	var p models.Pharmacy
	if err := r.get(ctx, &p, `SELECT * FROM pharmacies WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListPharmacies(ctx context.Context) ([]models.Pharmacy, error) {
	pharmacies := []models.Pharmacy{}
	if err := r.selectAll(ctx, &pharmacies, `SELECT * FROM pharmacies ORDER BY name, id`); err != nil {
		return nil, err
	}
	return pharmacies, nil
}

func (r *Repository) UpdatePharmacy(ctx context.Context, p *models.Pharmacy) error {
	return r.execOne(ctx, `
		UPDATE pharmacies SET name = ?, address = ?, phone = ?, email = ?, region = ?, province = ?, commune = ?
		WHERE id = ?`,
		p.Name, p.Address, p.Phone, p.Email, p.Region, p.Province, p.Commune, p.ID)
}

func (r *Repository) DeletePharmacy(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM pharmacies WHERE id = ?`, id)
}
