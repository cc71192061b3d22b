// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/repository"
	"codeberg.org/logico/fleet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMovement_Defaults(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	m := &models.Movement{Code: "MOV-1", Kind: models.KindPrescription, Destination: "Hospital"}
	require.NoError(t, repo.CreateMovement(ctx, m))

	got, err := repo.GetMovement(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateInProgress, got.State)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Nil(t, got.Description)
	assert.Empty(t, got.DriverName)
	assert.Empty(t, got.OriginName)
	assert.Empty(t, got.VehiclePlate)
}

func TestCreateMovement_DuplicateCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateMovement(ctx, &models.Movement{Code: "MOV-1", Kind: models.KindDirect}))
	err := repo.CreateMovement(ctx, &models.Movement{Code: "MOV-1", Kind: models.KindDirect})

	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestGetMovement_ResolvesReferences(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	d := testutil.NewTestDriver(t, repo, "Ana Rojas")
	v := testutil.NewTestVehicle(t, repo, "KX1234")
	p := testutil.NewTestPharmacy(t, repo, "Farmacia Centro")
	desc := "urgent"

	m := &models.Movement{
		Code: "MOV-2", Kind: models.KindTransfer, Description: &desc, Destination: "Sucursal 2",
		DriverID: &d.ID, VehicleID: &v.ID, OriginPharmacyID: &p.ID,
	}
	require.NoError(t, repo.CreateMovement(ctx, m))

	got, err := repo.GetMovement(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Rojas", got.DriverName)
	assert.Equal(t, "KX1234", got.VehiclePlate)
	assert.Equal(t, "Farmacia Centro", got.OriginName)
	require.NotNil(t, got.Description)
	assert.Equal(t, "urgent", *got.Description)

	// Deleting the driver keeps the movement with an empty reference.
	require.NoError(t, repo.DeleteDriver(ctx, d.ID))
	got, err = repo.GetMovement(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DriverID)
	assert.Empty(t, got.DriverName)
}

func TestListMovements_Ordering(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	base := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	older := testutil.NewTestMovement(t, repo, base.Add(-time.Hour))
	sameA := testutil.NewTestMovement(t, repo, base)
	sameB := testutil.NewTestMovement(t, repo, base)

	list, err := repo.ListMovements(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, sameB.ID, list[0].ID)
	assert.Equal(t, sameA.ID, list[1].ID)
	assert.Equal(t, older.ID, list[2].ID)
}

func TestListMovementsBetween_HalfOpen(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	from := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	testutil.NewTestMovement(t, repo, from.Add(-time.Nanosecond*1000))
	start := testutil.NewTestMovement(t, repo, from)
	late := testutil.NewTestMovement(t, repo, to.Add(-time.Second))
	testutil.NewTestMovement(t, repo, to)

	list, err := repo.ListMovementsBetween(context.Background(), from, to)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, late.ID, list[0].ID)
	assert.Equal(t, start.ID, list[1].ID)
}

func TestUpdateAndDeleteMovement(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	m := testutil.NewTestMovement(t, repo, time.Now())

	m.State = models.StateCompleted
	require.NoError(t, repo.UpdateMovement(ctx, m))

	got, err := repo.GetMovement(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateCompleted, got.State)

	require.NoError(t, repo.DeleteMovement(ctx, m.ID))
	assert.ErrorIs(t, repo.DeleteMovement(ctx, m.ID), repository.ErrNotFound)
}

func TestReportRecords(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	at := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateReportRecord(ctx, &models.ReportRecord{
		Kind: models.ReportDaily, GeneratedAt: at, GeneratedBy: "admin", MovementCount: 4,
	}))
	require.NoError(t, repo.CreateReportRecord(ctx, &models.ReportRecord{
		Kind: models.ReportAnnual, GeneratedAt: at.Add(time.Hour), GeneratedBy: "admin", MovementCount: 9,
	}))

	count, err := repo.CountReportRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	list, err := repo.ListReportRecords(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.ReportAnnual, list[0].Kind)
	assert.Equal(t, 9, list[0].MovementCount)
}
