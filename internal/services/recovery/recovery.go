// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package recovery issues, verifies and consumes one-time password recovery codes.
package recovery

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"codeberg.org/logico/fleet/internal/i18n"
	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/repository"
	"codeberg.org/logico/fleet/internal/services/auth"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeLength is the number of characters in a recovery code.
	CodeLength = 6
	// DefaultTTL is how long a code stays valid after issue.
	DefaultTTL = 15 * time.Minute
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	// ErrNotFound is returned when no account matches the email.
	ErrNotFound = errors.New("no account for email")
	// ErrNotVerified is returned by Consume without a prior successful verification.
	ErrNotVerified = errors.New("recovery code must be verified first")
	// ErrInvalidPassword is returned when the new password is rejected.
	ErrInvalidPassword = errors.New("invalid new password")
	// ErrDelivery is returned when the code could not be sent. The code is
	// discarded and the account has no active code afterwards.
	ErrDelivery = errors.New("recovery code could not be delivered")
)

// Outcome is the result of verifying a code.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeExpired
	OutcomeIncorrect
	OutcomeValid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExpired:
		return "expired"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeValid:
		return "valid"
	default:
		return "not_found"
	}
}

// Notifier delivers the plaintext code to the account holder.
type Notifier interface {
	Deliver(ctx context.Context, to, subject, body string) error
}

// Issued is the result of a successful code request.
type Issued struct {
	User *models.User
	Code *models.RecoveryCode
	// Plain is the code as delivered. It is never stored.
	Plain string
}

// Authorization is the session-side proof of a verified code.
type Authorization struct {
	Email    string
	CodeID   int64
	Verified bool
}

type Manager struct {
	repo      *repository.Repository
	notifier  Notifier
	validator *auth.PasswordValidator
	ttl       time.Duration
	now       func() time.Time
	cost      int
}

type Option func(*Manager)

// WithTTL sets the validity window of issued codes.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithBcryptCost sets the cost used for code and password hashes.
func WithBcryptCost(cost int) Option {
	return func(m *Manager) {
		m.cost = cost
	}
}

func NewManager(repo *repository.Repository, notifier Notifier, opts ...Option) *Manager {
	m := &Manager{
		repo:      repo,
		notifier:  notifier,
		validator: &auth.PasswordValidator{MinLength: auth.MinPasswordLength},
		ttl:       DefaultTTL,
		now:       time.Now,
		cost:      bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the configured code lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// RequestCode replaces any code of the account behind email with a fresh one
// and delivers it. Delivery errors are returned to the caller.
func (m *Manager) RequestCode(ctx context.Context, email string) (*Issued, error) {
	user, err := m.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Info("recovery_request_unknown_email")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	plain, err := GenerateCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), m.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing recovery code: %w", err)
	}

	code, err := m.repo.ReplaceRecoveryCode(ctx, user.ID, string(hash), m.now())
	if err != nil {
		return nil, fmt.Errorf("storing recovery code: %w", err)
	}

	subject := i18n.T(ctx, "recovery_email_subject")
	body := i18n.TData(ctx, "recovery_email_body", map[string]any{
		"Username": user.Username,
		"Code":     plain,
		"Minutes":  int(m.ttl.Minutes()),
	})
	if err := m.notifier.Deliver(ctx, user.Email, subject, body); err != nil {
		slog.Error("recovery_code_delivery_failed", "user_id", user.ID, "error", err)
		if delErr := m.repo.DeleteRecoveryCodes(ctx, user.ID); delErr != nil {
			slog.Error("recovery_code_discard_failed", "user_id", user.ID, "error", delErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	slog.Info("recovery_code_issued", "user_id", user.ID, "code_id", code.ID)
	return &Issued{User: user, Code: code, Plain: plain}, nil
}

// VerifyCode checks code against the newest unused code of the account.
// A code is still valid when exactly the TTL has elapsed. On OutcomeValid the
// row is marked verified and returned.
func (m *Manager) VerifyCode(ctx context.Context, email, code string) (Outcome, *models.RecoveryCode, error) {
	user, err := m.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return OutcomeNotFound, nil, nil
	}
	if err != nil {
		return OutcomeNotFound, nil, fmt.Errorf("looking up user: %w", err)
	}

	stored, err := m.repo.GetLatestUnusedRecoveryCode(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return OutcomeNotFound, nil, nil
	}
	if err != nil {
		return OutcomeNotFound, nil, fmt.Errorf("loading recovery code: %w", err)
	}

	now := m.now()
	if now.Sub(stored.CreatedAt) > m.ttl {
		slog.Info("recovery_code_expired", "user_id", user.ID, "code_id", stored.ID)
		return OutcomeExpired, stored, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(NormalizeCode(code))) != nil {
		slog.Warn("recovery_code_incorrect", "user_id", user.ID, "code_id", stored.ID)
		return OutcomeIncorrect, stored, nil
	}

	if err := m.repo.MarkRecoveryCodeVerified(ctx, stored.ID, now); err != nil {
		return OutcomeNotFound, nil, fmt.Errorf("marking code verified: %w", err)
	}
	verifiedAt := now.UTC()
	stored.VerifiedAt = &verifiedAt

	slog.Info("recovery_code_verified", "user_id", user.ID, "code_id", stored.ID)
	return OutcomeValid, stored, nil
}

// Consume sets a new password for a verified, unused code and marks the
// code used. Replays fail with ErrNotVerified.
func (m *Manager) Consume(ctx context.Context, authz Authorization, newPassword, confirm string) error {
	if !authz.Verified || authz.CodeID == 0 {
		return ErrNotVerified
	}

	user, err := m.repo.GetUserByEmail(ctx, authz.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotVerified
	}
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}

	code, err := m.repo.GetRecoveryCodeByID(ctx, authz.CodeID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotVerified
	}
	if err != nil {
		return fmt.Errorf("loading recovery code: %w", err)
	}
	if code.UserID != user.ID || code.Used || !code.Verified() {
		return ErrNotVerified
	}

	if err := m.validator.ValidateConfirmed(newPassword, confirm).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPassword, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), m.cost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	err = m.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.MarkRecoveryCodeUsed(ctx, code.ID, m.now()); err != nil {
			return err
		}
		return tx.UpdateUserPassword(ctx, user.ID, string(hash))
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotVerified
	}
	if err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}

	slog.Info("password_reset", "user_id", user.ID, "code_id", code.ID)
	return nil
}

// GenerateCode returns CodeLength random upper-case alphanumeric characters.
func GenerateCode() (string, error) {
	limit := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, CodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generating recovery code: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

// NormalizeCode trims whitespace and upper-cases user input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
