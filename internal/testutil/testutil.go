// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/logico/fleet/internal/database"
	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

var seq atomic.Int64

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a user with the given password (bcrypt MinCost) and role.
// An empty role leaves the user without a role row.
func NewTestUser(t *testing.T, repo *repository.Repository, username, password string, role models.Role) *models.User {
	t.Helper()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	require.NoError(t, repo.CreateUser(ctx, user))

	if role != "" {
		require.NoError(t, repo.SetUserRole(ctx, user.ID, role))
	}
	return user
}

// NewTestPharmacy creates a pharmacy.
func NewTestPharmacy(t *testing.T, repo *repository.Repository, name string) *models.Pharmacy {
	t.Helper()
	p := &models.Pharmacy{Name: name, Address: "Av. Principal 123", Region: "Metropolitana"}
	require.NoError(t, repo.CreatePharmacy(context.Background(), p))
	return p
}

// NewTestVehicle creates an available vehicle.
func NewTestVehicle(t *testing.T, repo *repository.Repository, plate string) *models.Vehicle {
	t.Helper()
	v := &models.Vehicle{Plate: plate, Brand: "Honda", Model: "CB190", Year: 2022, Available: true}
	require.NoError(t, repo.CreateVehicle(context.Background(), v))
	return v
}

// NewTestDriver creates a driver with a unique national id.
func NewTestDriver(t *testing.T, repo *repository.Repository, name string) *models.Driver {
	t.Helper()
	d := &models.Driver{
		Name:       name,
		NationalID: fmt.Sprintf("%d-K", 10000000+seq.Add(1)),
		License:    models.LicenseC3,
		HiredOn:    time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.CreateDriver(context.Background(), d))
	return d
}

// NewTestMovement creates a movement created at the given time.
func NewTestMovement(t *testing.T, repo *repository.Repository, createdAt time.Time) *models.Movement {
	t.Helper()
	m := &models.Movement{
		Code:        fmt.Sprintf("MOV-%05d", seq.Add(1)),
		Kind:        models.KindDirect,
		Destination: "Calle Falsa 123",
		CreatedAt:   createdAt,
	}
	require.NoError(t, repo.CreateMovement(context.Background(), m))
	return m
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// FixedClock is a settable clock for time-dependent services.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
