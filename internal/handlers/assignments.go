// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/logico/fleet/internal/models"
	"github.com/labstack/echo/v4"
)

type VehicleAssignmentRequest struct {
	DriverID   int64  `json:"driver_id" form:"driver_id" validate:"gt=0"`
	VehicleID  int64  `json:"vehicle_id" form:"vehicle_id" validate:"gt=0"`
	AssignedOn string `json:"assigned_on" form:"assigned_on" validate:"required,datetime=2006-01-02"`
	EndsOn     string `json:"ends_on" form:"ends_on" validate:"omitempty,datetime=2006-01-02"`
	Active     *bool  `json:"active" form:"active"`
}

func (r VehicleAssignmentRequest) apply(a *models.VehicleAssignment) {
	a.DriverID = r.DriverID
	a.VehicleID = r.VehicleID
	a.AssignedOn = parseDate(r.AssignedOn)
	a.EndsOn = parseOptionalDate(r.EndsOn)
	a.Active = boolOr(r.Active, a.Active)
}

func (h *Handlers) ListVehicleAssignments(c echo.Context) error {
	return list(c, h.repo.ListVehicleAssignments)
}

func (h *Handlers) GetVehicleAssignment(c echo.Context) error {
	return show(c, h.repo.GetVehicleAssignment)
}

func (h *Handlers) CreateVehicleAssignment(c echo.Context) error {
	var req VehicleAssignmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a := models.VehicleAssignment{Active: true}
	req.apply(&a)
	if err := h.repo.CreateVehicleAssignment(c.Request().Context(), &a); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handlers) UpdateVehicleAssignment(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req VehicleAssignmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.repo.GetVehicleAssignment(ctx, id)
	if err != nil {
		return err
	}
	req.apply(a)
	if err := h.repo.UpdateVehicleAssignment(ctx, a); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handlers) DeleteVehicleAssignment(c echo.Context) error {
	return remove(c, h.repo.DeleteVehicleAssignment)
}

type PharmacyAssignmentRequest struct {
	DriverID   int64  `json:"driver_id" form:"driver_id" validate:"gt=0"`
	PharmacyID int64  `json:"pharmacy_id" form:"pharmacy_id" validate:"gt=0"`
	AssignedOn string `json:"assigned_on" form:"assigned_on" validate:"required,datetime=2006-01-02"`
	EndsOn     string `json:"ends_on" form:"ends_on" validate:"omitempty,datetime=2006-01-02"`
	Active     *bool  `json:"active" form:"active"`
}

func (r PharmacyAssignmentRequest) apply(a *models.PharmacyAssignment) {
	a.DriverID = r.DriverID
	a.PharmacyID = r.PharmacyID
	a.AssignedOn = parseDate(r.AssignedOn)
	a.EndsOn = parseOptionalDate(r.EndsOn)
	a.Active = boolOr(r.Active, a.Active)
}

func (h *Handlers) ListPharmacyAssignments(c echo.Context) error {
	return list(c, h.repo.ListPharmacyAssignments)
}

func (h *Handlers) GetPharmacyAssignment(c echo.Context) error {
	return show(c, h.repo.GetPharmacyAssignment)
}

func (h *Handlers) CreatePharmacyAssignment(c echo.Context) error {
	var req PharmacyAssignmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a := models.PharmacyAssignment{Active: true}
	req.apply(&a)
	if err := h.repo.CreatePharmacyAssignment(c.Request().Context(), &a); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handlers) UpdatePharmacyAssignment(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req PharmacyAssignmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.repo.GetPharmacyAssignment(ctx, id)
	if err != nil {
		return err
	}
	req.apply(a)
	if err := h.repo.UpdatePharmacyAssignment(ctx, a); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handlers) DeletePharmacyAssignment(c echo.Context) error {
	return remove(c, h.repo.DeletePharmacyAssignment)
}
