// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vinovest/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("record already exists")
	// ErrInvalidReference is returned when a foreign key does not resolve.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// Repository provides database operations using sqlx.
type Repository struct {
	db   *sqlx.DB
	q    sqlx.ExtContext
	now  func() time.Time
	inTx bool
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db, q: db, now: time.Now}
}

// DB returns the underlying sqlx DB for direct access.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// WithClock returns a copy of the repository that stamps rows using now.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	cp := *r
	cp.now = now
	return &cp
}

// InTx runs fn against a repository bound to a single transaction.
func (r *Repository) InTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &Repository{db: r.db, q: tx, now: r.now, inTx: true}
	if err := fn(txRepo); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repository) timestamp() time.Time {
	return r.now().UTC()
}

func (r *Repository) get(ctx context.Context, dest any, query string, args ...any) error {
	return wrapError(sqlx.GetContext(ctx, r.q, dest, query, args...))
}

func (r *Repository) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return wrapError(sqlx.SelectContext(ctx, r.q, dest, query, args...))
}

func (r *Repository) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	return res, wrapError(err)
}

// execOne runs a statement that must touch exactly one row.
func (r *Repository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// wrapError converts driver errors to repository errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrConflict, sqliteErr.Error())
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %s", ErrInvalidReference, sqliteErr.Error())
		}
		if sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			msg := sqliteErr.Error()
			switch {
			case strings.Contains(msg, "UNIQUE"):
				return fmt.Errorf("%w: %s", ErrConflict, msg)
			case strings.Contains(msg, "FOREIGN KEY"):
				return fmt.Errorf("%w: %s", ErrInvalidReference, msg)
			}
		}
	}
	return err
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
