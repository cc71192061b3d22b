// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"testing"

	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/services/auth"
	"codeberg.org/logico/fleet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*auth.Service, context.Context) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return auth.NewService(repo, auth.WithBcryptCost(bcrypt.MinCost)), context.Background()
}

func register(t *testing.T, svc *auth.Service, username string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), auth.RegisterParams{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-pass",
		Confirm:  "secret-pass",
	})
	require.NoError(t, err)
	return user
}

func TestRegister_DefaultsToReceptionist(t *testing.T) {
	svc, ctx := newService(t)

	user := register(t, svc, "front")

	role, ok, err := svc.Role(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleReceptionist, role)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, ctx := newService(t)
	register(t, svc, "front")

	_, err := svc.Register(ctx, auth.RegisterParams{
		Username: "front", Email: "other@example.com", Password: "secret-pass", Confirm: "secret-pass",
	})

	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestRegister_Validation(t *testing.T) {
	svc, ctx := newService(t)

	tests := []struct {
		name   string
		params auth.RegisterParams
		code   string
		err    error
	}{
		{
			name:   "short password",
			params: auth.RegisterParams{Username: "a", Email: "a@example.com", Password: "short", Confirm: "short"},
			code:   "min_length",
		},
		{
			name:   "mismatch",
			params: auth.RegisterParams{Username: "a", Email: "a@example.com", Password: "secret-pass", Confirm: "secret-pasS"},
			code:   "mismatch",
		},
		{
			name:   "numeric",
			params: auth.RegisterParams{Username: "a", Email: "a@example.com", Password: "12345678", Confirm: "12345678"},
			code:   "entirely_numeric",
		},
		{
			name:   "bad email",
			params: auth.RegisterParams{Username: "a", Email: "not-an-email", Password: "secret-pass", Confirm: "secret-pass"},
			err:    auth.ErrInvalidEmail,
		},
		{
			name:   "empty username",
			params: auth.RegisterParams{Username: " ", Email: "a@example.com", Password: "secret-pass", Confirm: "secret-pass"},
			err:    auth.ErrInvalidUsername,
		},
		{
			name: "unknown role",
			params: auth.RegisterParams{
				Username: "a", Email: "a@example.com", Password: "secret-pass", Confirm: "secret-pass", Role: "root",
			},
			err: auth.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.params)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			var pve *auth.PasswordValidationError
			require.ErrorAs(t, err, &pve)
			assert.True(t, pve.Has(tt.code), "expected %s in %v", tt.code, pve.Messages())
		})
	}
}

func TestLogin(t *testing.T) {
	svc, ctx := newService(t)
	created := register(t, svc, "front")

	user, err := svc.Login(ctx, "front", "secret-pass")

	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, ctx := newService(t)
	register(t, svc, "front")

	_, err := svc.Login(ctx, "front", "wrong-pass")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, ctx := newService(t)

	_, err := svc.Login(ctx, "ghost", "whatever")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, ctx := newService(t)
	user := register(t, svc, "front")

	err := svc.ChangePassword(ctx, user.ID, "secret-pass", "brand-new-pass", "brand-new-pass")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "front", "secret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "front", "brand-new-pass")
	assert.NoError(t, err)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc, ctx := newService(t)
	user := register(t, svc, "front")

	err := svc.ChangePassword(ctx, user.ID, "nope", "brand-new-pass", "brand-new-pass")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestChangePassword_UnknownUser(t *testing.T) {
	svc, ctx := newService(t)

	err := svc.ChangePassword(ctx, 404, "a", "brand-new-pass", "brand-new-pass")

	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestSetPassword_UnknownUser(t *testing.T) {
	svc, ctx := newService(t)

	assert.ErrorIs(t, svc.SetPassword(ctx, 404, "whatever-pass"), auth.ErrUserNotFound)
}

func TestEnsureUser_Idempotent(t *testing.T) {
	svc, ctx := newService(t)
	seed := auth.SeedUser{Username: "admin", Email: "admin@logico.com", Password: "admin-pass", Role: models.RoleAdmin}

	created, err := svc.EnsureUser(ctx, seed)
	require.NoError(t, err)
	assert.True(t, created)

	seed.Password = "another-pass"
	created, err = svc.EnsureUser(ctx, seed)
	require.NoError(t, err)
	assert.False(t, created)

	// The original password survives the second call.
	user, err := svc.Login(ctx, "admin", "admin-pass")
	require.NoError(t, err)
	role, ok, err := svc.Role(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)
}
