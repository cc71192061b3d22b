// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// RecoveryCode stores the hash of a one-time password recovery code.
type RecoveryCode struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	CodeHash   string     `db:"code_hash" json:"-"`
	Used       bool       `db:"used" json:"used"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	VerifiedAt *time.Time `db:"verified_at" json:"verified_at,omitempty"`
	UsedAt     *time.Time `db:"used_at" json:"used_at,omitempty"`
}

// Verified reports whether the code passed verification.
func (c *RecoveryCode) Verified() bool {
	return c.VerifiedAt != nil
}
