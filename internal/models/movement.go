// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"strings"
	"time"
)

// MovementKind classifies a delivery movement.
type MovementKind string

const (
	KindDirect       MovementKind = "DIRECTO"
	KindPrescription MovementKind = "RECETA"
	KindTransfer     MovementKind = "TRASLADO"
	KindForward      MovementKind = "REENVIO"
)

var movementKindAliases = map[string]MovementKind{
	"DIRECT":       KindDirect,
	"PRESCRIPTION": KindPrescription,
	"TRANSFER":     KindTransfer,
	"FORWARD":      KindForward,
}

// ParseMovementKind accepts the stored code or its English name.
func ParseMovementKind(s string) (MovementKind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if k := MovementKind(s); k.Valid() {
		return k, true
	}
	k, ok := movementKindAliases[s]
	return k, ok
}

func (k MovementKind) Valid() bool {
	switch k {
	case KindDirect, KindPrescription, KindTransfer, KindForward:
		return true
	}
	return false
}

// MovementState is the lifecycle state of a movement.
type MovementState string

const (
	StateInProgress MovementState = "EN_PROCESO"
	StateCompleted  MovementState = "COMPLETADO"
	StateVoided     MovementState = "ANULADO"
)

var movementStateAliases = map[string]MovementState{
	"IN_PROGRESS": StateInProgress,
	"COMPLETED":   StateCompleted,
	"VOIDED":      StateVoided,
}

// ParseMovementState accepts the stored code or its English name.
func ParseMovementState(s string) (MovementState, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if st := MovementState(s); st.Valid() {
		return st, true
	}
	st, ok := movementStateAliases[s]
	return st, ok
}

func (s MovementState) Valid() bool {
	switch s {
	case StateInProgress, StateCompleted, StateVoided:
		return true
	}
	return false
}

// Movement is a single delivery or transfer. The name fields are filled by
// joins when the movement is read and are empty for unset references.
type Movement struct { //nolint:govet // fieldalignment: readability over optimization
	ID               int64         `db:"id" json:"id"`
	Code             string        `db:"code" json:"code"`
	Kind             MovementKind  `db:"kind" json:"kind"`
	Description      *string       `db:"description" json:"description"`
	State            MovementState `db:"state" json:"state"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
	OriginPharmacyID *int64        `db:"origin_pharmacy_id" json:"origin_pharmacy_id"`
	Destination      string        `db:"destination" json:"destination"`
	DriverID         *int64        `db:"driver_id" json:"driver_id"`
	VehicleID        *int64        `db:"vehicle_id" json:"vehicle_id"`

	DriverName   string `db:"driver_name" json:"driver_name"`
	OriginName   string `db:"origin_name" json:"origin_name"`
	VehiclePlate string `db:"vehicle_plate" json:"vehicle_plate"`
}

// ReportKind is the time granularity of a movement report.
type ReportKind string

const (
	ReportDaily   ReportKind = "DIARIO"
	ReportMonthly ReportKind = "MENSUAL"
	ReportAnnual  ReportKind = "ANUAL"
)

// ReportRecord is an append-only audit entry for a generated report.
type ReportRecord struct { //nolint:govet // fieldalignment: readability over optimization
	ID            int64      `db:"id" json:"id"`
	Kind          ReportKind `db:"kind" json:"kind"`
	GeneratedAt   time.Time  `db:"generated_at" json:"generated_at"`
	GeneratedBy   string     `db:"generated_by" json:"generated_by"`
	MovementCount int        `db:"movement_count" json:"movement_count"`
}
