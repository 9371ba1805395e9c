// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
)

// actionKeyContext separates the action-token key from the access-token key.
const actionKeyContext = "wanderly.url-safe-action-token"

// # Action Tokens

// Purpose binds an action token to exactly one confirmation flow.
type Purpose string

const (
	// PurposeEmailVerification tokens confirm ownership of an email address.
	PurposeEmailVerification Purpose = "email-verification"

	// PurposePasswordReset tokens authorize a single password overwrite.
	PurposePasswordReset Purpose = "password-reset"
)

// ActionClaims is the payload of a URL-safe action token: one email and an expiry.
type ActionClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
}

// CreateURLSafeToken issues a time-boxed token carrying email for the given purpose.
//
// The compact JWT form only uses base64url segments and dots, so the token
// can travel in a URL path without escaping.
func (service *TokenService) CreateURLSafeToken(email string, purpose Purpose) (string, error) {
	ttl, err := service.purposeTTL(purpose)
	if err != nil {
		return "", err
	}

	currentTime := service.clock()
	claims := ActionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{string(purpose)},
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(ttl)),
		},
		Email: email,
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.actionKey)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign action token: %w", err)
	}

	return signedToken, nil
}

// DecodeURLSafeToken verifies an action token for the given purpose.
//
// Tokens issued for another purpose, expired tokens and tokens without an
// email claim all fail with an invalid_token [apperr.AppError].
func (service *TokenService) DecodeURLSafeToken(tokenString string, purpose Purpose) (*ActionClaims, error) {
	claims := &ActionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return service.actionKey, nil
	}, service.parserOptions(jwt.WithAudience(string(purpose)))...)

	if err != nil {
		return nil, apperr.InvalidToken().WithCause(err)
	}

	if !token.Valid || claims.Email == "" {
		return nil, apperr.InvalidToken().WithCause(errors.New("auth: action token has no email"))
	}

	return claims, nil
}

// purposeTTL returns the configured lifetime of an action token kind.
func (service *TokenService) purposeTTL(purpose Purpose) (time.Duration, error) {
	switch purpose {
	case PurposeEmailVerification:
		return service.verificationTTL, nil
	case PurposePasswordReset:
		return service.resetTTL, nil
	default:
		return 0, fmt.Errorf("auth: unknown token purpose %q", purpose)
	}
}

// deriveKey derives a context-specific signing key from the master secret.
func deriveKey(secret, context string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(context))
	return mac.Sum(nil)
}
