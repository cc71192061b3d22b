// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/logico/fleet/internal/repository"
	"codeberg.org/logico/fleet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceRecoveryCode_KeepsSingleCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "maria", "password123", "")
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := repo.ReplaceRecoveryCode(ctx, user.ID, "hash-1", now)
	require.NoError(t, err)
	second, err := repo.ReplaceRecoveryCode(ctx, user.ID, "hash-2", now.Add(time.Minute))
	require.NoError(t, err)

	count, err := repo.CountRecoveryCodes(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.GetRecoveryCodeByID(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	latest, err := repo.GetLatestUnusedRecoveryCode(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "hash-2", latest.CodeHash)
	assert.True(t, latest.CreatedAt.Equal(now.Add(time.Minute)))
	assert.False(t, latest.Used)
	assert.Nil(t, latest.VerifiedAt)
}

func TestGetLatestUnusedRecoveryCode_None(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewTestUser(t, repo, "maria", "password123", "")

	_, err := repo.GetLatestUnusedRecoveryCode(context.Background(), user.ID)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkRecoveryCodeVerifiedAndUsed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "maria", "password123", "")
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	code, err := repo.CreateRecoveryCode(ctx, user.ID, "hash", now)
	require.NoError(t, err)

	require.NoError(t, repo.MarkRecoveryCodeVerified(ctx, code.ID, now.Add(time.Minute)))
	require.NoError(t, repo.MarkRecoveryCodeUsed(ctx, code.ID, now.Add(2*time.Minute)))

	stored, err := repo.GetRecoveryCodeByID(ctx, code.ID)
	require.NoError(t, err)
	assert.True(t, stored.Used)
	require.NotNil(t, stored.VerifiedAt)
	require.NotNil(t, stored.UsedAt)
	assert.True(t, stored.UsedAt.Equal(now.Add(2*time.Minute)))

	// A used code cannot be consumed twice.
	err = repo.MarkRecoveryCodeUsed(ctx, code.ID, now.Add(3*time.Minute))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetLatestUnusedRecoveryCode(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteRecoveryCodes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "maria", "password123", "")

	_, err := repo.CreateRecoveryCode(ctx, user.ID, "a", time.Now())
	require.NoError(t, err)
	_, err = repo.CreateRecoveryCode(ctx, user.ID, "b", time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRecoveryCodes(ctx, user.ID))

	count, err := repo.CountRecoveryCodes(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
