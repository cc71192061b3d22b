// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"codeberg.org/logico/fleet/internal/models"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// list writes the result of fn as JSON.
func list[T any](c echo.Context, fn func(context.Context) ([]T, error)) error {
	items, err := fn(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// show loads the record named by :id and writes it as JSON.
func show[T any](c echo.Context, fn func(context.Context, int64) (*T, error)) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	item, err := fn(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// remove deletes the record named by :id.
func remove(c echo.Context, fn func(context.Context, int64) error) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := fn(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseOptionalDate(s string) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t := parseDate(s)
	return &t
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}

// ===== Pharmacies =====

type PharmacyRequest struct {
	Name     string `json:"name" form:"name" validate:"notblank,max=100"`
	Address  string `json:"address" form:"address" validate:"notblank,max=200"`
	Phone    string `json:"phone" form:"phone" validate:"max=20"`
	Email    string `json:"email" form:"email" validate:"omitempty,email"`
	Region   string `json:"region" form:"region" validate:"max=100"`
	Province string `json:"province" form:"province" validate:"max=100"`
	Commune  string `json:"commune" form:"commune" validate:"max=100"`
}

func (r PharmacyRequest) apply(p *models.Pharmacy) {
	p.Name = strings.TrimSpace(r.Name)
	p.Address = strings.TrimSpace(r.Address)
	p.Phone = strings.TrimSpace(r.Phone)
	p.Email = strings.TrimSpace(r.Email)
	p.Region = strings.TrimSpace(r.Region)
	p.Province = strings.TrimSpace(r.Province)
	p.Commune = strings.TrimSpace(r.Commune)
}

func (h *Handlers) ListPharmacies(c echo.Context) error {
	return list(c, h.repo.ListPharmacies)
}

func (h *Handlers) GetPharmacy(c echo.Context) error {
	return show(c, h.repo.GetPharmacy)
}

func (h *Handlers) CreatePharmacy(c echo.Context) error {
	var req PharmacyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var p models.Pharmacy
	req.apply(&p)
	if err := h.repo.CreatePharmacy(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handlers) UpdatePharmacy(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req PharmacyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := h.repo.GetPharmacy(ctx, id)
	if err != nil {
		return err
	}
	req.apply(p)
	if err := h.repo.UpdatePharmacy(ctx, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handlers) DeletePharmacy(c echo.Context) error {
	return remove(c, h.repo.DeletePharmacy)
}

// ===== Vehicles =====

type VehicleRequest struct {
	Plate     string `json:"plate" form:"plate" validate:"notblank,max=10"`
	Brand     string `json:"brand" form:"brand" validate:"notblank,max=50"`
	Model     string `json:"model" form:"model" validate:"notblank,max=50"`
	Year      int    `json:"year" form:"year" validate:"gte=1950,lte=2100"`
	Available *bool  `json:"available" form:"available"`
}

func (r VehicleRequest) apply(v *models.Vehicle) {
	v.Plate = strings.TrimSpace(r.Plate)
	v.Brand = strings.TrimSpace(r.Brand)
	v.Model = strings.TrimSpace(r.Model)
	v.Year = r.Year
	v.Available = boolOr(r.Available, v.Available)
}

func (h *Handlers) ListVehicles(c echo.Context) error {
	return list(c, h.repo.ListVehicles)
}

func (h *Handlers) GetVehicle(c echo.Context) error {
	return show(c, h.repo.GetVehicle)
}

func (h *Handlers) CreateVehicle(c echo.Context) error {
	var req VehicleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	v := models.Vehicle{Available: true}
	req.apply(&v)
	if err := h.repo.CreateVehicle(c.Request().Context(), &v); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handlers) UpdateVehicle(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req VehicleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	v, err := h.repo.GetVehicle(ctx, id)
	if err != nil {
		return err
	}
	req.apply(v)
	if err := h.repo.UpdateVehicle(ctx, v); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handlers) DeleteVehicle(c echo.Context) error {
	return remove(c, h.repo.DeleteVehicle)
}

// ===== Drivers =====

type DriverRequest struct {
	Name       string `json:"name" form:"name" validate:"notblank,max=100"`
	NationalID string `json:"national_id" form:"national_id" validate:"notblank,max=12"`
	Phone      string `json:"phone" form:"phone" validate:"max=20"`
	Email      string `json:"email" form:"email" validate:"omitempty,email"`
	License    string `json:"license" form:"license" validate:"oneof=C1 C2 C3"`
	Status     string `json:"status" form:"status" validate:"max=20"`
	HiredOn    string `json:"hired_on" form:"hired_on" validate:"required,datetime=2006-01-02"`
	PharmacyID *int64 `json:"pharmacy_id" form:"pharmacy_id" validate:"omitempty,gt=0"`
	VehicleID  *int64 `json:"vehicle_id" form:"vehicle_id" validate:"omitempty,gt=0"`
}

func (r DriverRequest) apply(d *models.Driver) {
	d.Name = strings.TrimSpace(r.Name)
	d.NationalID = r.NationalID
	d.Phone = strings.TrimSpace(r.Phone)
	d.Email = strings.TrimSpace(r.Email)
	d.License = models.License(r.License)
	if status := strings.ToUpper(strings.TrimSpace(r.Status)); status != "" {
		d.Status = status
	}
	d.HiredOn = parseDate(r.HiredOn)
	d.PharmacyID = r.PharmacyID
	d.VehicleID = r.VehicleID
}

func (h *Handlers) ListDrivers(c echo.Context) error {
	return list(c, h.repo.ListDrivers)
}

func (h *Handlers) GetDriver(c echo.Context) error {
	return show(c, h.repo.GetDriver)
}

func (h *Handlers) CreateDriver(c echo.Context) error {
	var req DriverRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var d models.Driver
	req.apply(&d)
	if err := h.repo.CreateDriver(c.Request().Context(), &d); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handlers) UpdateDriver(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req DriverRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	d, err := h.repo.GetDriver(ctx, id)
	if err != nil {
		return err
	}
	req.apply(d)
	if err := h.repo.UpdateDriver(ctx, d); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handlers) DeleteDriver(c echo.Context) error {
	return remove(c, h.repo.DeleteDriver)
}
