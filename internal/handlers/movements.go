// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/validate"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type MovementRequest struct {
	Code             string  `json:"code" form:"code" validate:"max=50"`
	Kind             string  `json:"kind" form:"kind" validate:"notblank"`
	Description      *string `json:"description" form:"description" validate:"omitempty,max=500"`
	State            string  `json:"state" form:"state"`
	OriginPharmacyID *int64  `json:"origin_pharmacy_id" form:"origin_pharmacy_id" validate:"omitempty,gt=0"`
	Destination      string  `json:"destination" form:"destination" validate:"notblank,max=200"`
	DriverID         *int64  `json:"driver_id" form:"driver_id" validate:"omitempty,gt=0"`
	VehicleID        *int64  `json:"vehicle_id" form:"vehicle_id" validate:"omitempty,gt=0"`
}

// apply copies the request onto m. Kind and state accept the stored codes and
// their English names.
func (r MovementRequest) apply(m *models.Movement) error {
	kind, ok := models.ParseMovementKind(r.Kind)
	if !ok {
		return &validate.Error{Fields: []validate.FieldError{{Field: "kind", Rule: "oneof"}}}
	}
	if strings.TrimSpace(r.State) != "" {
		state, ok := models.ParseMovementState(r.State)
		if !ok {
			return &validate.Error{Fields: []validate.FieldError{{Field: "state", Rule: "oneof"}}}
		}
		m.State = state
	}
	if code := strings.TrimSpace(r.Code); code != "" {
		m.Code = strings.ToUpper(code)
	}
	m.Kind = kind
	m.Description = r.Description
	m.OriginPharmacyID = r.OriginPharmacyID
	m.Destination = strings.TrimSpace(r.Destination)
	m.DriverID = r.DriverID
	m.VehicleID = r.VehicleID
	return nil
}

// newMovementCode returns a generated code for movements created without one.
func newMovementCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("MOV-%s", strings.ToUpper(id[:10]))
}

func (h *Handlers) ListMovements(c echo.Context) error {
	return list(c, h.repo.ListMovements)
}

func (h *Handlers) GetMovement(c echo.Context) error {
	return show(c, h.repo.GetMovement)
}

func (h *Handlers) CreateMovement(c echo.Context) error {
	var req MovementRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var m models.Movement
	if err := req.apply(&m); err != nil {
		return err
	}
	if m.Code == "" {
		m.Code = newMovementCode()
	}

	ctx := c.Request().Context()
	if err := h.repo.CreateMovement(ctx, &m); err != nil {
		return err
	}
	created, err := h.repo.GetMovement(ctx, m.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handlers) UpdateMovement(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req MovementRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	m, err := h.repo.GetMovement(ctx, id)
	if err != nil {
		return err
	}
	if err := req.apply(m); err != nil {
		return err
	}
	if err := h.repo.UpdateMovement(ctx, m); err != nil {
		return err
	}
	updated, err := h.repo.GetMovement(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handlers) DeleteMovement(c echo.Context) error {
	return remove(c, h.repo.DeleteMovement)
}
