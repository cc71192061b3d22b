// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"

	"codeberg.org/logico/fleet/internal/models"
)

// CreateUser inserts a user and fills in its ID and timestamps.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := r.timestamp()
	user.Email = strings.TrimSpace(user.Email)
	id, err := r.insert(ctx,
		`INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, now, now)
	if err != nil {
		return err
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT * FROM users WHERE username = ?`, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.get(ctx, &user, `SELECT * FROM users WHERE email = ? COLLATE NOCASE`, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists checks if a user with the given username exists.
func (r *Repository) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.get(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
	return exists, err
}

// UpdateUserPassword replaces the stored password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return r.execOne(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, r.timestamp(), id)
}

// ListUsers returns all users ordered by username.
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.selectAll(ctx, &users, `SELECT * FROM users ORDER BY username`); err != nil {
		return nil, err
	}
	return users, nil
}
