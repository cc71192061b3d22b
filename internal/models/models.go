// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

type Pharmacy struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	Region    string    `db:"region" json:"region"`
	Province  string    `db:"province" json:"province"`
	Commune   string    `db:"commune" json:"commune"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Vehicle struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	Plate     string    `db:"plate" json:"plate"`
	Brand     string    `db:"brand" json:"brand"`
	Model     string    `db:"model" json:"model"`
	Year      int       `db:"year" json:"year"`
	Available bool      `db:"available" json:"available"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// License is the professional driving license class.
type License string

const (
	LicenseC1 License = "C1"
	LicenseC2 License = "C2"
	LicenseC3 License = "C3"
)

func (l License) Valid() bool {
	switch l {
	case LicenseC1, LicenseC2, LicenseC3:
		return true
	}
	return false
}

type Driver struct { //nolint:govet // fieldalignment not critical for models
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	NationalID string    `db:"national_id" json:"national_id"`
	Phone      string    `db:"phone" json:"phone"`
	Email      string    `db:"email" json:"email"`
	License    License   `db:"license" json:"license"`
	Status     string    `db:"status" json:"status"`
	HiredOn    time.Time `db:"hired_on" json:"hired_on"`
	PharmacyID *int64    `db:"pharmacy_id" json:"pharmacy_id"`
	VehicleID  *int64    `db:"vehicle_id" json:"vehicle_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// VehicleAssignment links a driver to a vehicle for a period.
type VehicleAssignment struct { //nolint:govet // fieldalignment not critical for models
	ID         int64      `db:"id" json:"id"`
	DriverID   int64      `db:"driver_id" json:"driver_id"`
	VehicleID  int64      `db:"vehicle_id" json:"vehicle_id"`
	AssignedOn time.Time  `db:"assigned_on" json:"assigned_on"`
	EndsOn     *time.Time `db:"ends_on" json:"ends_on"`
	Active     bool       `db:"active" json:"active"`
}

// PharmacyAssignment links a driver to a pharmacy for a period.
type PharmacyAssignment struct { //nolint:govet // fieldalignment not critical for models
	ID         int64      `db:"id" json:"id"`
	DriverID   int64      `db:"driver_id" json:"driver_id"`
	PharmacyID int64      `db:"pharmacy_id" json:"pharmacy_id"`
	AssignedOn time.Time  `db:"assigned_on" json:"assigned_on"`
	EndsOn     *time.Time `db:"ends_on" json:"ends_on"`
	Active     bool       `db:"active" json:"active"`
}
