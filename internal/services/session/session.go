// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/logico/fleet/internal/config"
	"codeberg.org/logico/fleet/internal/models"
	"github.com/gorilla/securecookie"
)

// RecoveryMaxAge bounds the lifetime of the password recovery cookie.
const RecoveryMaxAge = 15 * 60

const keyLength = 32

// Data is the payload of the login session cookie.
type Data struct {
	UserID    int64       `json:"uid"`
	Username  string      `json:"usr"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"exp"`
}

// Recovery is the payload of the password recovery cookie.
type Recovery struct {
	Email     string    `json:"recovery_email"`
	CodeID    int64     `json:"code_id"`
	Verified  bool      `json:"codigo_verificado"`
	ExpiresAt time.Time `json:"exp"`
}

// Manager signs and parses session cookies.
type Manager struct {
	codec              *securecookie.SecureCookie
	cookieName         string
	recoveryCookieName string
	maxAge             int
	secure             bool
	now                func() time.Time
}

// NewManager creates a cookie session manager. An empty hash key generates a
// random one, which invalidates sessions on restart.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey, "hash")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		hashKey = make([]byte, keyLength)
		if _, err := rand.Read(hashKey); err != nil {
			return nil, fmt.Errorf("generating session hash key: %w", err)
		}
		slog.Warn("session_key_generated", "reason", "no session hash key configured")
	}

	blockKey, err := decodeKey(cfg.BlockKey, "block")
	if err != nil {
		return nil, err
	}

	recoveryName := cfg.RecoveryCookieName
	if recoveryName == "" {
		recoveryName = "_recovery"
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	// Expiry is enforced from the payload, the codec only bounds replays.
	codec.MaxAge(max(cfg.MaxAge, RecoveryMaxAge))

	return &Manager{
		codec:              codec,
		cookieName:         cfg.CookieName,
		recoveryCookieName: recoveryName,
		maxAge:             cfg.MaxAge,
		secure:             secure || cfg.Secure,
		now:                time.Now,
	}, nil
}

func decodeKey(value, name string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid session %s key: %w", name, err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("invalid session %s key: must be %d bytes, got %d", name, keyLength, len(key))
	}
	return key, nil
}

// Create returns a signed login cookie for the user.
func (m *Manager) Create(userID int64, username string, role models.Role) (*http.Cookie, error) {
	data := Data{
		UserID:    userID,
		Username:  username,
		Role:      role,
		ExpiresAt: m.now().Add(time.Duration(m.maxAge) * time.Second),
	}
	encoded, err := m.codec.Encode(m.cookieName, data)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return m.cookie(m.cookieName, encoded, m.maxAge), nil
}

// Parse returns the login session of the request, or nil when the cookie is
// missing, invalid, tampered with, or expired.
func (m *Manager) Parse(r *http.Request) (*Data, error) {
	var data Data
	if !m.decode(r, m.cookieName, &data) {
		return nil, nil
	}
	if m.now().After(data.ExpiresAt) {
		return nil, nil
	}
	return &data, nil
}

// Clear returns a cookie that removes the login session.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie(m.cookieName, "", -1)
}

// CreateRecovery returns a signed recovery cookie.
func (m *Manager) CreateRecovery(state Recovery) (*http.Cookie, error) {
	state.ExpiresAt = m.now().Add(RecoveryMaxAge * time.Second)
	encoded, err := m.codec.Encode(m.recoveryCookieName, state)
	if err != nil {
		return nil, fmt.Errorf("encoding recovery session: %w", err)
	}
	return m.cookie(m.recoveryCookieName, encoded, RecoveryMaxAge), nil
}

// ParseRecovery returns the recovery state of the request, or nil.
func (m *Manager) ParseRecovery(r *http.Request) *Recovery {
	var state Recovery
	if !m.decode(r, m.recoveryCookieName, &state) {
		return nil
	}
	if m.now().After(state.ExpiresAt) {
		return nil
	}
	return &state
}

// ClearRecovery returns a cookie that removes the recovery state.
func (m *Manager) ClearRecovery() *http.Cookie {
	return m.cookie(m.recoveryCookieName, "", -1)
}

func (m *Manager) decode(r *http.Request, name string, dst any) bool {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) || c == nil || c.Value == "" {
		return false
	}
	if err := m.codec.Decode(name, c.Value, dst); err != nil {
		slog.Debug("session_decode_failed", "cookie", name, "error", err)
		return false
	}
	return true
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
