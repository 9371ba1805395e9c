// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Input Constraints

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxFullNameLength = 100
	MaxEmailLength    = 254
)

// TokenType is the OAuth 2.0 token type returned with every access token.
const TokenType = "Bearer"

// # Flow Events

// Event names reported to the metrics recorder.
const (
	EventRegister             = "register"
	EventVerifyEmail          = "verify_email"
	EventLogin                = "login"
	EventRefresh              = "refresh"
	EventLogout               = "logout"
	EventPasswordResetRequest = "password_reset_request"
	EventPasswordResetConfirm = "password_reset_confirm"
	EventDeleteAccount        = "delete_account"
)

// # Rate Limit Scopes

const (
	ScopeSignup        = "signup"
	ScopeLogin         = "login"
	ScopePasswordReset = "password_reset"
)

// Unique index names from the users table, used to tell duplicates apart.
const (
	constraintEmail = "users_email_live_key"
	constraintPhone = "users_phone_number_live_key"
)
