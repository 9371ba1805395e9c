// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
	"github.com/taibuivan/wanderly/internal/platform/ctxutil"
	"github.com/taibuivan/wanderly/internal/platform/metrics"
	"github.com/taibuivan/wanderly/internal/platform/sec"
	"github.com/taibuivan/wanderly/internal/platform/validate"
	"github.com/taibuivan/wanderly/pkg/pagination"
	"github.com/taibuivan/wanderly/pkg/uuid"
)

// # Contracts & Types

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPasswordHash(password, hash string) bool
}

// TokenIssuer signs and verifies access, refresh and URL-safe action tokens.
type TokenIssuer interface {
	AccessTTL() time.Duration
	CreateAccessToken(identity sec.Identity, refresh bool, expiry time.Duration) (string, error)
	DecodeToken(token string) (*sec.AuthClaims, error)
	CreateURLSafeToken(email string, purpose sec.Purpose) (string, error)
	DecodeURLSafeToken(token string, purpose sec.Purpose) (*sec.ActionClaims, error)
}

// EventRecorder counts flow outcomes.
type EventRecorder interface {
	AuthEvent(event, outcome string)
}

// Dependencies groups the collaborators of [Service].
type Dependencies struct {
	Users       UserRepository
	Roles       RoleRepository
	Revocations RevocationList
	Hasher      PasswordHasher
	Tokens      TokenIssuer
	Notifier    Notifier
	Events      EventRecorder
}

// Options tunes account policy.
type Options struct {
	// RequireVerifiedLogin rejects logins of accounts that have not confirmed their email.
	RequireVerifiedLogin bool
}

// Service implements the credential lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	users       UserRepository
	roles       RoleRepository
	revocations RevocationList
	hasher      PasswordHasher
	tokens      TokenIssuer
	notifier    Notifier
	events      EventRecorder
	options     Options
}

// NewService constructs a new [Service]. A nil Events recorder disables flow metrics.
func NewService(deps Dependencies, options Options) *Service {
	events := deps.Events
	if events == nil {
		events = nopRecorder{}
	}

	return &Service{
		users:       deps.Users,
		roles:       deps.Roles,
		revocations: deps.Revocations,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		notifier:    deps.Notifier,
		events:      events,
		options:     options,
	}
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string, string) {}

// record reports the outcome of a flow based on its final error.
func (service *Service) record(event string, err *error) {
	outcome := metrics.OutcomeSuccess
	if *err != nil {
		outcome = metrics.OutcomeFailure
	}
	service.events.AuthEvent(event, outcome)
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	FullName    string
	PhoneNumber string
	Email       string
	Password    string
}

/*
Register creates an unverified account and sends the verification email.

The email is only enqueued: a mail pipeline failure is logged and never
rolls the registration back.

Returns:
  - *User: Created entity
  - error: validation_error for a password outside the length bounds,
    user_exists if the email or phone is taken, or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (user *User, err error) {
	defer service.record(EventRegister, &err)
	logger := ctxutil.GetLogger(ctx)

	if err = checkPassword(FieldPassword, input.Password); err != nil {
		return nil, err
	}

	email := validate.NormalizeEmail(input.Email)

	// Fast path for the common duplicate; the unique index settles races.
	_, err = service.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.UserAlreadyExists("User with this email already exists")
	case !apperr.HasCode(err, apperr.CodeUserNotFound):
		return nil, err
	}

	var phone *string
	if input.PhoneNumber != "" {
		normalized, phoneErr := validate.NormalizePhone(input.PhoneNumber)
		if phoneErr != nil {
			return nil, validate.FieldError(FieldPhoneNumber, "Must be a phone number in international format")
		}
		phone = &normalized
	}

	role, err := service.roles.Ensure(ctx, sec.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("auth_service_ensure_role_failed: %w", err)
	}

	passwordHash, err := service.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	user = &User{
		ID:           uuid.New(),
		RoleID:       role.ID,
		Role:         role.Name,
		FullName:     input.FullName,
		PhoneNumber:  phone,
		Email:        email,
		PasswordHash: passwordHash,
		IsVerified:   false,
	}

	if err = service.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "auth_user_registered", slog.String("user_id", user.ID))
	service.sendVerification(ctx, user)

	return user, nil
}

// sendVerification issues a verification token and enqueues the email, logging any failure.
func (service *Service) sendVerification(ctx context.Context, user *User) {
	logger := ctxutil.GetLogger(ctx)

	token, err := service.tokens.CreateURLSafeToken(user.Email, sec.PurposeEmailVerification)
	if err != nil {
		logger.ErrorContext(ctx, "auth_verification_token_failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}

	if err := service.notifier.SendVerificationEmail(ctx, user.Email, user.FullName, token); err != nil {
		logger.ErrorContext(ctx, "auth_verification_email_failed", slog.String("user_id", user.ID), slog.Any("error", err))
	}
}

/*
VerifyEmail confirms the email address carried by a verification token.

Verifying an already verified account succeeds without writing.

Returns:
  - error: invalid_token, user_not_found or storage errors
*/
func (service *Service) VerifyEmail(ctx context.Context, token string) (err error) {
	defer service.record(EventVerifyEmail, &err)

	claims, err := service.tokens.DecodeURLSafeToken(token, sec.PurposeEmailVerification)
	if err != nil {
		return err
	}

	user, err := service.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return nil
	}

	if err = service.users.MarkVerified(ctx, user.ID); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "auth_email_verified", slog.String("user_id", user.ID))
	return nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the token pair issued by a successful login.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

/*
Login checks credentials and issues one access and one refresh token.

An unknown email and a wrong password produce the same invalid_credentials
error so that responses do not reveal which accounts exist.
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (result *LoginResult, err error) {
	defer service.record(EventLogin, &err)
	logger := ctxutil.GetLogger(ctx)

	user, err := service.users.FindByEmail(ctx, validate.NormalizeEmail(input.Email))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeUserNotFound) {
			logger.WarnContext(ctx, "auth_login_failed", slog.String("reason", "unknown_email"))
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}

	if !service.hasher.CheckPasswordHash(input.Password, user.PasswordHash) {
		logger.WarnContext(ctx, "auth_login_failed", slog.String("reason", "wrong_password"), slog.String("user_id", user.ID))
		return nil, apperr.InvalidCredentials()
	}

	if service.options.RequireVerifiedLogin && !user.IsVerified {
		return nil, apperr.AccountNotVerified()
	}

	accessToken, err := service.tokens.CreateAccessToken(user.Identity(), false, 0)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_access_token_failed: %w", err))
	}

	refreshToken, err := service.tokens.CreateAccessToken(user.Identity(), true, 0)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_token_failed: %w", err))
	}

	logger.InfoContext(ctx, "auth_login_succeeded", slog.String("user_id", user.ID))

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenType,
		ExpiresIn:    int(service.tokens.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

// AccessTokenResult is a freshly issued access token.
type AccessTokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

/*
Refresh exchanges a valid refresh token for a new access token.

The refresh token itself is not rotated and stays usable until it expires
or is revoked.

Returns:
  - error: invalid_token, refresh_token_required or revoked_token
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (result *AccessTokenResult, err error) {
	defer service.record(EventRefresh, &err)

	claims, err := service.tokens.DecodeToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if !claims.Refresh {
		return nil, apperr.RefreshTokenRequired()
	}

	if err = service.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	accessToken, err := service.tokens.CreateAccessToken(claims.Identity(), false, 0)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_access_token_failed: %w", err))
	}

	return &AccessTokenResult{
		AccessToken: accessToken,
		TokenType:   TokenType,
		ExpiresIn:   int(service.tokens.AccessTTL().Seconds()),
	}, nil
}

/*
VerifyAccessToken validates a bearer token presented to a protected route.

Returns:
  - *sec.AuthClaims: Claims of the access token
  - error: invalid_token, access_token_required or revoked_token
*/
func (service *Service) VerifyAccessToken(ctx context.Context, token string) (*sec.AuthClaims, error) {
	claims, err := service.tokens.DecodeToken(token)
	if err != nil {
		return nil, err
	}

	if claims.Refresh {
		return nil, apperr.AccessTokenRequired()
	}

	if err := service.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// ensureNotRevoked fails closed: an unreachable revocation list rejects the token.
func (service *Service) ensureNotRevoked(ctx context.Context, claims *sec.AuthClaims) error {
	revoked, err := service.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_revocation_lookup_failed: %w", err))
	}
	if revoked {
		return apperr.RevokedToken()
	}
	return nil
}

/*
Logout revokes the already validated access token until its expiry.

Any later request presenting the same token fails with revoked_token.
*/
func (service *Service) Logout(ctx context.Context, claims *sec.AuthClaims) (err error) {
	defer service.record(EventLogout, &err)

	if claims == nil {
		return apperr.Unauthorized("Authentication required")
	}

	if err = service.revocations.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_logout_failed: %w", err))
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "auth_logout", slog.String("user_id", claims.UserID))
	return nil
}

// # Password Recovery

/*
RequestPasswordReset emails a reset link when the address belongs to an account.

It succeeds for unknown addresses too, so the response never reveals
whether an email is registered.
*/
func (service *Service) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer service.record(EventPasswordResetRequest, &err)
	logger := ctxutil.GetLogger(ctx)

	user, err := service.users.FindByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeUserNotFound) {
			logger.DebugContext(ctx, "auth_password_reset_unknown_email")
			return nil
		}
		return err
	}

	token, err := service.tokens.CreateURLSafeToken(user.Email, sec.PurposePasswordReset)
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_reset_token_failed: %w", err))
	}

	if notifyErr := service.notifier.SendPasswordResetEmail(ctx, user.Email, user.FullName, token); notifyErr != nil {
		logger.ErrorContext(ctx, "auth_password_reset_email_failed", slog.String("user_id", user.ID), slog.Any("error", notifyErr))
	}

	return nil
}

// ConfirmResetInput carries the token from the emailed link and the new password.
type ConfirmResetInput struct {
	Token              string
	NewPassword        string
	ConfirmNewPassword string
}

// ErrPasswordMismatch is the validation failure for differing new/confirm passwords.
var ErrPasswordMismatch = errors.New("auth: passwords do not match")

/*
ConfirmPasswordReset overwrites the password of the account named by the token.

A new/confirm mismatch is reported before the token is even decoded.

Returns:
  - error: validation_error, invalid_token, user_not_found or storage errors
*/
func (service *Service) ConfirmPasswordReset(ctx context.Context, input ConfirmResetInput) (err error) {
	defer service.record(EventPasswordResetConfirm, &err)

	if input.NewPassword != input.ConfirmNewPassword {
		return validate.FieldError(FieldConfirmNewPassword, "Passwords do not match").WithCause(ErrPasswordMismatch)
	}
	if err = checkPassword(FieldNewPassword, input.NewPassword); err != nil {
		return err
	}

	claims, err := service.tokens.DecodeURLSafeToken(input.Token, sec.PurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := service.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return err
	}

	passwordHash, err := service.hasher.HashPassword(input.NewPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_reset_hash_failed: %w", err))
	}

	if err = service.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "auth_password_reset", slog.String("user_id", user.ID))
	return nil
}

// # Account Queries

// Me returns the profile of the authenticated user.
func (service *Service) Me(ctx context.Context, userID string) (*User, error) {
	return service.users.FindByID(ctx, userID)
}

/*
DeleteAccount soft-deletes the caller's account and revokes the presented token.

The email and phone number become free for a new registration; other
outstanding tokens of the account keep verifying until they expire, but
[Service.Me] and [Service.Login] no longer find the user.
*/
func (service *Service) DeleteAccount(ctx context.Context, claims *sec.AuthClaims) (err error) {
	defer service.record(EventDeleteAccount, &err)

	if claims == nil {
		return apperr.Unauthorized("Authentication required")
	}

	if err = service.users.SoftDelete(ctx, claims.UserID); err != nil {
		return err
	}

	if revokeErr := service.revocations.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); revokeErr != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "auth_delete_revoke_failed", slog.Any("error", revokeErr))
	}

	ctxutil.GetLogger(ctx).WarnContext(ctx, "auth_account_deleted", slog.String("user_id", claims.UserID))
	return nil
}

// ListUsers returns one page of the user directory.
func (service *Service) ListUsers(ctx context.Context, params pagination.Params) ([]*User, pagination.Meta, error) {
	users, total, err := service.users.List(ctx, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}
