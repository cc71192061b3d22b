// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"codeberg.org/logico/fleet/internal/config"
	"codeberg.org/logico/fleet/internal/handlers"
	"codeberg.org/logico/fleet/internal/i18n"
	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

var codePattern = regexp.MustCompile(`(?m): ([A-Z0-9]{6})$`)

// mailbox captures recovery mails.
type mailbox struct {
	mu     sync.Mutex
	bodies map[string]string
	err    error
}

func (m *mailbox) Deliver(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.bodies[to] = body
	return nil
}

func (m *mailbox) code(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	match := codePattern.FindStringSubmatch(m.bodies[to])
	require.Len(t, match, 2, "no code in mail to %s", to)
	return match[1]
}

type testApp struct {
	*App
	server *httptest.Server
	mail   *mailbox
	clock  *testutil.FixedClock
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "localhost",
			Port:        8080,
			BaseURL:     "http://localhost:8080",
			MaxBodySize: 1,
		},
		Session: config.SessionConfig{
			CookieName:         "_session",
			RecoveryCookieName: "_recovery",
			MaxAge:             3600,
			HashKey:            testHashKey,
		},
		Recovery: config.RecoveryConfig{
			CodeTTL:      15 * time.Minute,
			RequestRate:  0.2,
			RequestBurst: 3,
		},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	require.NoError(t, i18n.Init())

	db, _ := testutil.NewTestDB(t)
	mail := &mailbox{bodies: map[string]string{}}
	clock := testutil.NewFixedClock(time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app, err := NewApp(ctx, testConfig(), db, Options{
		Notifier:   mail,
		BcryptCost: bcrypt.MinCost,
		Clock:      clock.Now,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(app.Echo())
	t.Cleanup(srv.Close)

	return &testApp{App: app, server: srv, mail: mail, clock: clock}
}

// client returns an HTTP client with its own cookie jar.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (a *testApp) do(t *testing.T, c *http.Client, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, r)
	require.NoError(t, err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	req.Header.Set("Accept-Language", "en")

	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (a *testApp) login(t *testing.T, username, password string) *http.Client {
	t.Helper()
	c := a.client(t)
	resp := a.do(t, c, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return c
}

func TestApp_Health(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, app.client(t), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestApp_TrailingSlashRedirect(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp := app.do(t, c, http.MethodGet, "/health/", nil)

	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/health", resp.Header.Get("Location"))
}

func TestApp_LoginAndMe(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestUser(t, app.Repo, "admin", "admin-pass-123", models.RoleAdmin)
	testutil.NewTestUser(t, app.Repo, "recep", "recep-pass-123", models.RoleReceptionist)
	testutil.NewTestUser(t, app.Repo, "nobody", "nobody-pass-123", "")

	tests := []struct {
		username  string
		password  string
		role      models.Role
		dashboard string
	}{
		{"admin", "admin-pass-123", models.RoleAdmin, models.RoleAdmin.Dashboard()},
		{"recep", "recep-pass-123", models.RoleReceptionist, models.RoleReceptionist.Dashboard()},
		{"nobody", "nobody-pass-123", "", "home"},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			c := app.login(t, tt.username, tt.password)

			resp := app.do(t, c, http.MethodGet, "/me", nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			me := decode[handlers.MeResponse](t, resp)
			assert.Equal(t, tt.username, me.Username)
			assert.Equal(t, tt.role, me.Role)
			assert.Equal(t, tt.dashboard, me.Dashboard)
		})
	}
}

func TestApp_LoginFailure(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestUser(t, app.Repo, "admin", "admin-pass-123", models.RoleAdmin)

	resp := app.do(t, app.client(t), http.MethodPost, "/auth/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, "login_failed", body.Code)
}

func TestApp_Logout(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestUser(t, app.Repo, "admin", "admin-pass-123", models.RoleAdmin)
	c := app.login(t, "admin", "admin-pass-123")

	resp := app.do(t, c, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.do(t, c, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestApp_RoleGating(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestUser(t, app.Repo, "admin", "admin-pass-123", models.RoleAdmin)
	testutil.NewTestUser(t, app.Repo, "recep", "recep-pass-123", models.RoleReceptionist)

	anon := app.client(t)
	admin := app.login(t, "admin", "admin-pass-123")
	recep := app.login(t, "recep", "recep-pass-123")

	tests := []struct {
		name   string
		client *http.Client
		method string
		path   string
		want   int
	}{
		{"anonymous me", anon, http.MethodGet, "/me", http.StatusUnauthorized},
		{"anonymous pharmacies", anon, http.MethodGet, "/pharmacies", http.StatusUnauthorized},
		{"anonymous report", anon, http.MethodGet, "/reports/movements", http.StatusUnauthorized},
		{"receptionist pharmacies", recep, http.MethodGet, "/pharmacies", http.StatusForbidden},
		{"receptionist records", recep, http.MethodGet, "/reports/records", http.StatusForbidden},
		{"receptionist movements", recep, http.MethodGet, "/movements", http.StatusOK},
		{"receptionist movement delete", recep, http.MethodDelete, "/movements/1", http.StatusForbidden},
		{"admin pharmacies", admin, http.MethodGet, "/pharmacies", http.StatusOK},
		{"admin records", admin, http.MethodGet, "/reports/records", http.StatusOK},
		{"admin missing movement", admin, http.MethodGet, "/movements/999", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, tt.client, tt.method, tt.path, nil)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestApp_Register(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	body := map[string]string{
		"username":         "maria",
		"email":            "maria@example.com",
		"password":         "Farmacia2025",
		"password_confirm": "Farmacia2025",
	}
	resp := app.do(t, c, http.MethodPost, "/auth/register", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.do(t, c, http.MethodPost, "/auth/register", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	c = app.login(t, "maria", "Farmacia2025")
	me := decode[handlers.MeResponse](t, app.do(t, c, http.MethodGet, "/me", nil))
	assert.Equal(t, models.RoleReceptionist, me.Role)
}

func TestApp_RegisterValidation(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, app.client(t), http.MethodPost, "/auth/register", map[string]string{
		"username": "maria",
		"email":    "not-an-email",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, "error_validation", body.Code)
	assert.NotEmpty(t, body.Details)
}

func TestApp_RecordCRUD(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestUser(t, app.Repo, "admin", "admin-pass-123", models.RoleAdmin)
	c := app.login(t, "admin", "admin-pass-123")

	vehicle := map[string]any{"plate": "ABCD12", "brand": "Honda", "model": "CB190", "year": 2022}
	resp := app.do(t, c, http.MethodPost, "/vehicles", vehicle)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.Vehicle](t, resp)
	assert.True(t, created.Available)

	t.Run("duplicate plate", func(t *testing.T) {
		resp := app.do(t, c, http.MethodPost, "/vehicles", vehicle)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "error_conflict", decode[handlers.ErrorResponse](t, resp).Code)
	})

	t.Run("unknown reference", func(t *testing.T) {
		resp := app.do(t, c, http.MethodPost, "/assignments/vehicles", map[string]any{
			"driver_id":   999,
			"vehicle_id":  created.ID,
			"assigned_on": "2025-03-01",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "error_invalid_reference", decode[handlers.ErrorResponse](t, resp).Code)
	})

	t.Run("update and delete", func(t *testing.T) {
		vehicle["available"] = false
		resp := app.do(t, c, http.MethodPut, "/vehicles/"+itoa(created.ID), vehicle)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, decode[models.Vehicle](t, resp).Available)

		resp = app.do(t, c, http.MethodDelete, "/vehicles/"+itoa(created.ID), nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = app.do(t, c, http.MethodGet, "/vehicles/"+itoa(created.ID), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestApp_ReceptionistCreatesMovement(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestUser(t, app.Repo, "recep", "recep-pass-123", models.RoleReceptionist)
	c := app.login(t, "recep", "recep-pass-123")
	driver := testutil.NewTestDriver(t, app.Repo, "Juan Perez")

	resp := app.do(t, c, http.MethodPost, "/movements", map[string]any{
		"kind":        "direct",
		"destination": "Calle Falsa 123",
		"driver_id":   driver.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	m := decode[models.Movement](t, resp)
	assert.Equal(t, models.KindDirect, m.Kind)
	assert.Equal(t, models.StateInProgress, m.State)
	assert.Equal(t, "Juan Perez", m.DriverName)
	assert.Regexp(t, `^MOV-[0-9A-F]{10}$`, m.Code)

	resp = app.do(t, c, http.MethodPost, "/movements", map[string]any{
		"kind":        "teleport",
		"destination": "Calle Falsa 123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestApp_Reports(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestUser(t, app.Repo, "admin", "admin-pass-123", models.RoleAdmin)
	c := app.login(t, "admin", "admin-pass-123")

	testutil.NewTestMovement(t, app.Repo, time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC))
	testutil.NewTestMovement(t, app.Repo, time.Date(2025, time.March, 14, 18, 30, 0, 0, time.UTC))
	testutil.NewTestMovement(t, app.Repo, time.Date(2025, time.March, 2, 8, 0, 0, 0, time.UTC))

	t.Run("daily report is recorded", func(t *testing.T) {
		resp := app.do(t, c, http.MethodGet, "/reports/movements?tipo=diario&fecha=2025-03-14", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		report := decode[handlers.ReportResponse](t, resp)
		assert.Equal(t, 2, report.Count)
		assert.Equal(t, models.ReportDaily, report.Filter.Kind)
		require.NotNil(t, report.Record)
		assert.Equal(t, "admin", report.Record.GeneratedBy)
		assert.Equal(t, 2, report.Record.MovementCount)
	})

	t.Run("unfiltered report is not recorded", func(t *testing.T) {
		resp := app.do(t, c, http.MethodGet, "/reports/movements", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		report := decode[handlers.ReportResponse](t, resp)
		assert.Equal(t, 3, report.Count)
		assert.Nil(t, report.Record)
	})

	t.Run("invalid filter", func(t *testing.T) {
		resp := app.do(t, c, http.MethodGet, "/reports/movements?tipo=mensual&mes=13&anio=2025", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("downloads", func(t *testing.T) {
		resp := app.do(t, c, http.MethodGet, "/reports/movements/pdf?tipo=mensual&mes=3&anio=2025", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(echo.HeaderContentType))
		assert.Contains(t, resp.Header.Get(echo.HeaderContentDisposition), "attachment")
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

		resp = app.do(t, c, http.MethodGet, "/reports/movements/xlsx?tipo=anual&anio=2025", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(echo.HeaderContentType), "spreadsheetml")
	})

	t.Run("records", func(t *testing.T) {
		resp := app.do(t, c, http.MethodGet, "/reports/records", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		records := decode[[]models.ReportRecord](t, resp)
		require.Len(t, records, 1)
		assert.Equal(t, models.ReportDaily, records[0].Kind)
	})
}

func TestApp_ReportHTML(t *testing.T) {
	app := newTestApp(t)
	testutil.NewTestUser(t, app.Repo, "recep", "recep-pass-123", models.RoleReceptionist)
	c := app.login(t, "recep", "recep-pass-123")

	req, err := http.NewRequest(http.MethodGet, app.server.URL+"/reports/movements", nil)
	require.NoError(t, err)
	req.Header.Set(echo.HeaderAccept, "text/html")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(echo.HeaderContentType), echo.MIMETextHTML)
}

func TestApp_PasswordRecovery(t *testing.T) {
	app := newTestApp(t)
	user := testutil.NewTestUser(t, app.Repo, "recep", "old-password-1", models.RoleReceptionist)
	c := app.client(t)

	resp := app.do(t, c, http.MethodPost, "/auth/recovery/request", map[string]string{"email": user.Email})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	code := app.mail.code(t, user.Email)

	resp = app.do(t, c, http.MethodPost, "/auth/recovery/verify", map[string]string{"code": "ZZZZZZ"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "incorrect", decode[handlers.VerifyResponse](t, resp).Outcome)

	resp = app.do(t, c, http.MethodPost, "/auth/recovery/verify", map[string]string{"code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "valid", decode[handlers.VerifyResponse](t, resp).Outcome)

	resp = app.do(t, c, http.MethodPost, "/auth/recovery/reset", map[string]string{
		"password":         "new-password-2",
		"password_confirm": "new-password-2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("new password works", func(t *testing.T) {
		app.login(t, "recep", "new-password-2")
	})

	t.Run("old password fails", func(t *testing.T) {
		resp := app.do(t, app.client(t), http.MethodPost, "/auth/login", map[string]string{
			"username": "recep",
			"password": "old-password-1",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("reset cannot be replayed", func(t *testing.T) {
		resp := app.do(t, c, http.MethodPost, "/auth/recovery/reset", map[string]string{
			"password":         "third-password-3",
			"password_confirm": "third-password-3",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestApp_RecoveryResetRequiresVerification(t *testing.T) {
	app := newTestApp(t)
	user := testutil.NewTestUser(t, app.Repo, "recep", "old-password-1", models.RoleReceptionist)
	c := app.client(t)

	resp := app.do(t, c, http.MethodPost, "/auth/recovery/request", map[string]string{"email": user.Email})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = app.do(t, c, http.MethodPost, "/auth/recovery/reset", map[string]string{
		"password":         "new-password-2",
		"password_confirm": "new-password-2",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "recovery_must_verify", decode[handlers.ErrorResponse](t, resp).Code)
}

func TestApp_RecoveryExpiredCode(t *testing.T) {
	app := newTestApp(t)
	user := testutil.NewTestUser(t, app.Repo, "recep", "old-password-1", models.RoleReceptionist)
	c := app.client(t)

	app.do(t, c, http.MethodPost, "/auth/recovery/request", map[string]string{"email": user.Email})
	code := app.mail.code(t, user.Email)

	app.clock.Advance(15*time.Minute + time.Second)

	resp := app.do(t, c, http.MethodPost, "/auth/recovery/verify", map[string]string{"code": code})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "expired", decode[handlers.VerifyResponse](t, resp).Outcome)
}

func TestApp_RecoveryUnknownEmail(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, app.client(t), http.MethodPost, "/auth/recovery/request",
		map[string]string{"email": "ghost@example.com"})

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Empty(t, app.mail.bodies)
}

func TestApp_RecoveryRateLimit(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	body := map[string]string{"email": "ghost@example.com"}

	for range 3 {
		resp := app.do(t, c, http.MethodPost, "/auth/recovery/request", body)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
	}

	resp := app.do(t, c, http.MethodPost, "/auth/recovery/request", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestApp_RecoveryDeliveryFailure(t *testing.T) {
	app := newTestApp(t)
	user := testutil.NewTestUser(t, app.Repo, "recep", "old-password-1", models.RoleReceptionist)
	app.mail.err = errors.New("smtp down")

	resp := app.do(t, app.client(t), http.MethodPost, "/auth/recovery/request", map[string]string{"email": user.Email})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "recovery_delivery_failed", decode[handlers.ErrorResponse](t, resp).Code)

	count, err := app.Repo.CountRecoveryCodes(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	t.Run("unknown email still accepted", func(t *testing.T) {
		resp := app.do(t, app.client(t), http.MethodPost, "/auth/recovery/request",
			map[string]string{"email": "ghost@example.com"})
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})
}

func TestApp_RecoveryVerifyRateLimit(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	body := map[string]string{"email": "ghost@example.com", "code": "AAAAAA"}

	for range 3 {
		resp := app.do(t, c, http.MethodPost, "/auth/recovery/verify", body)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "not_found", decode[handlers.VerifyResponse](t, resp).Outcome)
	}

	resp := app.do(t, c, http.MethodPost, "/auth/recovery/verify", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestNewApp_RequiresSessionKeyOffLocalhost(t *testing.T) {
	db, _ := testutil.NewTestDB(t)
	cfg := testConfig()
	cfg.Server.Host = "0.0.0.0"
	cfg.Session.HashKey = ""

	_, err := NewApp(t.Context(), cfg, db, Options{Notifier: &mailbox{}})
	require.Error(t, err)

	cfg.Server.Host = "localhost"
	_, err = NewApp(t.Context(), cfg, db, Options{Notifier: &mailbox{}})
	assert.NoError(t, err)
}
