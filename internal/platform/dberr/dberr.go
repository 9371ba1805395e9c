// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// pgx.ErrNoRows becomes a not_found error naming resource, a unique violation
// becomes a conflict, and everything else is an opaque database_error. The
// original error is kept as the cause for logging.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource).WithCause(err)
	}

	if constraint, ok := UniqueViolation(err); ok {
		return apperr.Conflict(fmt.Sprintf("%s already exists", resource)).
			WithCause(fmt.Errorf("unique constraint %q: %w", constraint, err))
	}

	return apperr.Database(err)
}

// UniqueViolation reports whether err is a PostgreSQL unique violation (23505)
// and returns the name of the violated constraint or index.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
