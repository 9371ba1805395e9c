// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/wanderly/internal/platform/sec"
	"github.com/taibuivan/wanderly/pkg/pagination"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Every lookup ignores soft-deleted rows and reports a miss as a
// user_not_found [apperr.AppError].
type UserRepository interface {

	/*
		Create persists a brand-new user account.

		Returns:
		  - error: user_exists when the email or phone number is already bound
		    to a live account
	*/
	Create(ctx context.Context, user *User) error

	// FindByID returns the live account with the given ID.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the live account bound to the (lower-cased) email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// MarkVerified sets is_verified; it is the only writer of that column.
	MarkVerified(ctx context.Context, id string) error

	// UpdatePassword replaces only the password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SoftDelete stamps deleted_at; rows are never removed.
	SoftDelete(ctx context.Context, id string) error

	/*
		List returns one page of live accounts, oldest first.

		Returns:
		  - []*User: The page
		  - int: Total number of live accounts
		  - error: Database failures
	*/
	List(ctx context.Context, params pagination.Params) ([]*User, int, error)
}

// # Role Data Access

// RoleRepository defines the data access contract for roles.
type RoleRepository interface {

	// Ensure returns the role row for name, creating it on first use.
	// Concurrent callers always observe the same single row.
	Ensure(ctx context.Context, name sec.UserRole) (*Role, error)
}

// # Volatile Data Access

// RevocationList records token ids that must no longer be accepted.
type RevocationList interface {

	// Revoke blocks jti until expiresAt. Already expired tokens are ignored.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// # Outbound Notifications

// Notifier hands account emails to the asynchronous mail pipeline.
//
// Implementations must return quickly; delivery happens out of band.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, fullName, token string) error
	SendPasswordResetEmail(ctx context.Context, to, fullName, token string) error
}
