// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Wanderly.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable error code and client-safe messages.
  - Taxonomy: One constructor per failure class (credentials, tokens, storage, ...).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

// Machine-readable codes sent to clients in the "code" field.
const (
	CodeUserExists           = "user_exists"
	CodeUserNotFound         = "user_not_found"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeInvalidToken         = "invalid_token"
	CodeRevokedToken         = "revoked_token"
	CodeAccessTokenRequired  = "access_token_required"
	CodeRefreshTokenRequired = "refresh_token_required"
	CodeAccountNotVerified   = "account_not_verified"
	CodeValidation           = "validation_error"
	CodeNotFound             = "not_found"
	CodeUnauthorized         = "unauthorized"
	CodeForbidden            = "forbidden"
	CodeConflict             = "conflict"
	CodeRateLimited          = "rate_limited"
	CodeDatabase             = "database_error"
	CodeServer               = "server_error"
)

// AppError is the canonical error type for the Wanderly API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "user_exists").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// Resolution optionally tells the client how to recover.
	Resolution string `json:"resolution,omitempty"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for validation_error responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches an underlying error for server-side logging and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// # Identity Errors

// UserAlreadyExists creates a 403 [AppError] for a duplicate registration.
func UserAlreadyExists(msg string) *AppError {
	return &AppError{
		Code:       CodeUserExists,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// UserNotFound creates a 404 [AppError] for a missing account.
func UserNotFound() *AppError {
	return &AppError{
		Code:       CodeUserNotFound,
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// InvalidCredentials creates a 400 [AppError] for a wrong email or password.
//
// The message is deliberately identical for both cases to prevent enumeration.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusBadRequest,
	}
}

// AccountNotVerified creates a 403 [AppError] for a login before email verification.
func AccountNotVerified() *AppError {
	return &AppError{
		Code:       CodeAccountNotVerified,
		Message:    "Account not verified",
		Resolution: "Please verify your account through the link sent to your email",
		HTTPStatus: http.StatusForbidden,
	}
}

// # Token Errors

// InvalidToken creates a 401 [AppError] for a malformed, forged or expired token.
func InvalidToken() *AppError {
	return &AppError{
		Code:       CodeInvalidToken,
		Message:    "Token is invalid or expired",
		Resolution: "Get a new token",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// RevokedToken creates a 401 [AppError] for a token whose jti was revoked.
func RevokedToken() *AppError {
	return &AppError{
		Code:       CodeRevokedToken,
		Message:    "Token has been revoked",
		Resolution: "Get a new token",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// AccessTokenRequired creates a 401 [AppError] when a refresh token is presented
// where an access token is expected.
func AccessTokenRequired() *AppError {
	return &AppError{
		Code:       CodeAccessTokenRequired,
		Message:    "Please provide an access token",
		Resolution: "Please get an access token",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// RefreshTokenRequired creates a 403 [AppError] when an access token is presented
// where a refresh token is expected.
func RefreshTokenRequired() *AppError {
	return &AppError{
		Code:       CodeRefreshTokenRequired,
		Message:    "Please provide a valid refresh token",
		Resolution: "Get a new refresh token",
		HTTPStatus: http.StatusForbidden,
	}
}

// # Generic Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Role") // Returns "Role not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Database creates a 500 [AppError] for an unexpected storage failure.
// The cause is stored for logging but is never sent to the client.
func Database(cause error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Oops, something went wrong",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeServer,
		Message:    "Oops, something went wrong",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
