// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the Wanderly identity service: registration, email
verification, login, token refresh, logout and password reset.

# Architecture

  - Entities (this file): User and Role, free of storage concerns.
  - Service: the credential lifecycle state machine
    (unregistered -> registered_unverified -> verified).
  - Repositories: PostgreSQL for accounts and roles, Redis for revoked tokens.
  - Handler: the JSON HTTP surface mounted under /api/v1.
*/
package auth

import (
	"time"

	"github.com/taibuivan/wanderly/internal/platform/sec"
)

// # Domain Entities

// User is a registered Wanderly account.
//
// Accounts are never hard-deleted; a soft-deleted account frees its email
// and phone number for a new registration.
type User struct {
	ID           string       `json:"id"`
	RoleID       string       `json:"-"`
	Role         sec.UserRole `json:"role"`
	FullName     string       `json:"full_name"`
	PhoneNumber  *string      `json:"phone_number"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	IsVerified   bool         `json:"is_verified"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Identity returns the claims embedded in the user's tokens.
func (user *User) Identity() sec.Identity {
	return sec.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
}

// Role is a row of the roles table; at most one exists per role name.
type Role struct {
	ID        string       `json:"id"`
	Name      sec.UserRole `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

// # Field Identifiers

// JSON field names used in payloads and validation details.
const (
	FieldFullName           = "full_name"
	FieldPhoneNumber        = "phone_number"
	FieldEmail              = "email"
	FieldPassword           = "password"
	FieldNewPassword        = "new_password"
	FieldConfirmNewPassword = "confirm_new_password"
	FieldToken              = "token"
)
