// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidRole        = errors.New("invalid role")
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

type Service struct {
	repo              *repository.Repository
	passwordValidator *PasswordValidator
	cost              int
}

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost overrides the hashing cost, tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

func NewService(repo *repository.Repository, opts ...Option) *Service {
	s := &Service{
		repo:              repo,
		passwordValidator: DefaultPasswordValidator(),
		cost:              bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PasswordValidator returns the password validator for use in handlers
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.passwordValidator
}

// HashPassword hashes a password with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// RegisterParams holds the parameters for user registration
type RegisterParams struct {
	Username string
	Email    string
	Password string
	Confirm  string
	Role     models.Role
}

// Register creates a new account. Self-registered users get the
// receptionist role unless params.Role says otherwise.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.TrimSpace(params.Email)

	if params.Username == "" {
		return nil, ErrInvalidUsername
	}
	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, ErrInvalidEmail
	}
	if params.Role == "" {
		params.Role = models.RoleReceptionist
	}
	if !params.Role.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.passwordValidator.ValidateConfirmed(params.Password, params.Confirm, params.Username).Err(); err != nil {
		return nil, err
	}

	passwordHash, err := s.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
	}

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.SetUserRole(ctx, user.ID, params.Role)
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("register_success", "user_id", user.ID, "username", user.Username, "role", params.Role)

	return user, nil
}

// Login authenticates a user by username and password.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "username", username, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "username", username, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// ChangePassword changes a user's password when they know the current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword, confirm string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.passwordValidator.ValidateConfirmed(newPassword, confirm, user.Username).Err(); err != nil {
		return err
	}

	if err := s.SetPassword(ctx, userID, newPassword); err != nil {
		return err
	}

	slog.Info("password_changed", "user_id", userID)
	return nil
}

// SetPassword hashes and stores a new password without further checks.
func (s *Service) SetPassword(ctx context.Context, userID int64, newPassword string) error {
	passwordHash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserPassword(ctx, userID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Role returns the active role of the user, if any.
func (s *Service) Role(ctx context.Context, userID int64) (models.Role, bool, error) {
	return s.repo.GetUserRole(ctx, userID)
}

// SeedUser describes an account created by the seed command.
type SeedUser struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// EnsureUser creates the account and role if the username is unknown.
// Existing accounts are left untouched and created is false.
func (s *Service) EnsureUser(ctx context.Context, seed SeedUser) (created bool, err error) {
	exists, err := s.repo.UserExists(ctx, seed.Username)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = s.Register(ctx, RegisterParams{
		Username: seed.Username,
		Email:    seed.Email,
		Password: seed.Password,
		Confirm:  seed.Password,
		Role:     seed.Role,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
