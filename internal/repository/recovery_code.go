// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/logico/fleet/internal/models"
)

// ReplaceRecoveryCode deletes every code of the user and stores a new one,
// so at most one code per user exists at any time.
func (r *Repository) ReplaceRecoveryCode(ctx context.Context, userID int64, codeHash string, createdAt time.Time) (*models.RecoveryCode, error) {
	var code *models.RecoveryCode
	err := r.InTx(ctx, func(tx *Repository) error {
		if err := tx.DeleteRecoveryCodes(ctx, userID); err != nil {
			return err
		}
		var err error
		code, err = tx.CreateRecoveryCode(ctx, userID, codeHash, createdAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return code, nil
}

// CreateRecoveryCode stores a recovery code hash for a user.
func (r *Repository) CreateRecoveryCode(ctx context.Context, userID int64, codeHash string, createdAt time.Time) (*models.RecoveryCode, error) {
	createdAt = createdAt.UTC()
	id, err := r.insert(ctx,
		`INSERT INTO recovery_codes (user_id, code_hash, used, created_at) VALUES (?, ?, 0, ?)`,
		userID, codeHash, createdAt)
	if err != nil {
		return nil, err
	}
	return &models.RecoveryCode{ID: id, UserID: userID, CodeHash: codeHash, CreatedAt: createdAt}, nil
}

// GetRecoveryCodeByID retrieves a recovery code by ID.
func (r *Repository) GetRecoveryCodeByID(ctx context.Context, id int64) (*models.RecoveryCode, error) {
	var code models.RecoveryCode
	if err := r.get(ctx, &code, `SELECT * FROM recovery_codes WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &code, nil
}

// GetLatestUnusedRecoveryCode returns the newest unused code of the user.
func (r *Repository) GetLatestUnusedRecoveryCode(ctx context.Context, userID int64) (*models.RecoveryCode, error) {
	var code models.RecoveryCode
	err := r.get(ctx, &code, `
		SELECT * FROM recovery_codes
		WHERE user_id = ? AND used = 0
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, userID)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// CountRecoveryCodes returns the number of stored codes for the user.
func (r *Repository) CountRecoveryCodes(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.get(ctx, &count, `SELECT COUNT(*) FROM recovery_codes WHERE user_id = ?`, userID)
	return count, err
}

// MarkRecoveryCodeVerified records a successful verification.
func (r *Repository) MarkRecoveryCodeVerified(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx,
		`UPDATE recovery_codes SET verified_at = ? WHERE id = ? AND used = 0`,
		at.UTC(), id)
}

// MarkRecoveryCodeUsed consumes a code. ErrNotFound is returned when the code
// does not exist or was already used.
func (r *Repository) MarkRecoveryCodeUsed(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx,
		`UPDATE recovery_codes SET used = 1, used_at = ? WHERE id = ? AND used = 0`,
		at.UTC(), id)
}

// DeleteRecoveryCodes deletes all recovery codes for a user.
func (r *Repository) DeleteRecoveryCodes(ctx context.Context, userID int64) error {
	_, err := r.exec(ctx, `DELETE FROM recovery_codes WHERE user_id = ?`, userID)
	return err
}
