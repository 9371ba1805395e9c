// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
	"github.com/taibuivan/wanderly/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_live_key"}

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, apperr.CodeNotFound},
		{"wrapped_no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.CodeNotFound},
		{"unique_violation", unique, apperr.CodeConflict},
		{"other_pg_error", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, apperr.CodeDatabase},
		{"opaque", errors.New("connection reset"), apperr.CodeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "User")
			assert.True(t, apperr.HasCode(wrapped, tt.code))
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "User"))
}

func TestUniqueViolation(t *testing.T) {
	constraint, ok := dberr.UniqueViolation(fmt.Errorf("insert: %w",
		&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_phone_live_key"}))

	assert.True(t, ok)
	assert.Equal(t, "users_phone_live_key", constraint)

	_, ok = dberr.UniqueViolation(errors.New("boom"))
	assert.False(t, ok)
}
