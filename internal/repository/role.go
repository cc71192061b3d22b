// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"errors"

	"codeberg.org/logico/fleet/internal/models"
)

// SetUserRole assigns role to the user, replacing any previous role.
func (r *Repository) SetUserRole(ctx context.Context, userID int64, role models.Role) error {
	_, err := r.exec(ctx, `
		INSERT INTO user_roles (user_id, role, active, created_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET role = excluded.role, active = 1`,
		userID, role, r.timestamp())
	return err
}

// SetUserRoleActive enables or disables the user's role.
func (r *Repository) SetUserRoleActive(ctx context.Context, userID int64, active bool) error {
	return r.execOne(ctx, `UPDATE user_roles SET active = ? WHERE user_id = ?`, active, userID)
}

// GetUserRole returns the active role of a user. ok is false when the user
// has no role row or the row is inactive.
func (r *Repository) GetUserRole(ctx context.Context, userID int64) (role models.Role, ok bool, err error) {
	var ur models.UserRole
	err = r.get(ctx, &ur, `SELECT * FROM user_roles WHERE user_id = ?`, userID)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !ur.Active || !ur.Role.Valid() {
		return "", false, nil
	}
	return ur.Role, true, nil
}
