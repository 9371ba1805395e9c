// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
)

/*
TestTaxonomy_StatusCodes pins every domain error to its HTTP status and code.
*/
func TestTaxonomy_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		code   string
		status int
	}{
		{"user_exists", apperr.UserAlreadyExists("exists"), apperr.CodeUserExists, http.StatusForbidden},
		{"user_not_found", apperr.UserNotFound(), apperr.CodeUserNotFound, http.StatusNotFound},
		{"invalid_credentials", apperr.InvalidCredentials(), apperr.CodeInvalidCredentials, http.StatusBadRequest},
		{"invalid_token", apperr.InvalidToken(), apperr.CodeInvalidToken, http.StatusUnauthorized},
		{"revoked_token", apperr.RevokedToken(), apperr.CodeRevokedToken, http.StatusUnauthorized},
		{"access_token_required", apperr.AccessTokenRequired(), apperr.CodeAccessTokenRequired, http.StatusUnauthorized},
		{"refresh_token_required", apperr.RefreshTokenRequired(), apperr.CodeRefreshTokenRequired, http.StatusForbidden},
		{"account_not_verified", apperr.AccountNotVerified(), apperr.CodeAccountNotVerified, http.StatusForbidden},
		{"validation_error", apperr.ValidationError("bad"), apperr.CodeValidation, http.StatusBadRequest},
		{"database_error", apperr.Database(errors.New("boom")), apperr.CodeDatabase, http.StatusInternalServerError},
		{"server_error", apperr.Internal(errors.New("boom")), apperr.CodeServer, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

/*
TestAs_WrappedChain verifies extraction through fmt.Errorf wrapping.
*/
func TestAs_WrappedChain(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("postgres_user_repo_create_failed: %w", apperr.Database(cause))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeDatabase, ae.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, apperr.HasCode(wrapped, apperr.CodeDatabase))
	assert.False(t, apperr.HasCode(cause, apperr.CodeDatabase))
	assert.Nil(t, apperr.As(cause))
}
