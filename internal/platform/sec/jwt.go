// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces declared by the consumer.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
	"github.com/taibuivan/wanderly/pkg/uuid"
)

// minSecretLength is the smallest HS256 secret accepted at start-up.
const minSecretLength = 32

// Identity is the set of user claims carried by access and refresh tokens.
type Identity struct {
	UserID string
	Email  string
	Role   UserRole
}

// AuthClaims represents the payload embedded inside an access or refresh token.
//
// # Why custom claims?
//
// By embedding the UserID, Email, and Role directly inside the JWT, the
// middleware can reconstruct the active user context WITHOUT querying the
// database on every request, and the refresh flow can mint a new access
// token from the refresh token alone.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID  string `json:"uid"`
	Email   string `json:"eml"`
	Role    string `json:"rol"`
	Refresh bool   `json:"refresh"`
}

// Identity returns the user claims of the token.
func (claims *AuthClaims) Identity() Identity {
	return Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   UserRole(claims.Role),
	}
}

// ExpiresAtTime returns the expiry as a [time.Time], or the zero time if absent.
func (claims *AuthClaims) ExpiresAtTime() time.Time {
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// TokenConfig holds the signing secret and lifetimes of every token kind.
type TokenConfig struct {
	Secret          string
	Issuer          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

// TokenService handles generation and verification of HS256 tokens.
type TokenService struct {
	signingKey []byte
	actionKey  []byte
	issuer     string

	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
	resetTTL        time.Duration

	clock func() time.Time
}

// NewTokenService creates a new TokenService.
// It rejects secrets shorter than 32 bytes and non-positive lifetimes.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("auth: signing secret must be at least %d bytes", minSecretLength)
	}

	for name, ttl := range map[string]time.Duration{
		"access":       cfg.AccessTTL,
		"refresh":      cfg.RefreshTTL,
		"verification": cfg.VerificationTTL,
		"reset":        cfg.ResetTTL,
	} {
		if ttl <= 0 {
			return nil, fmt.Errorf("auth: %s token ttl must be positive", name)
		}
	}

	return &TokenService{
		signingKey:      []byte(cfg.Secret),
		actionKey:       deriveKey(cfg.Secret, actionKeyContext),
		issuer:          cfg.Issuer,
		accessTTL:       cfg.AccessTTL,
		refreshTTL:      cfg.RefreshTTL,
		verificationTTL: cfg.VerificationTTL,
		resetTTL:        cfg.ResetTTL,
		clock:           time.Now,
	}, nil
}

// AccessTTL returns the default lifetime of an access token.
func (service *TokenService) AccessTTL() time.Duration {
	return service.accessTTL
}

// CreateAccessToken signs a new access token, or a refresh token when refresh is true.
//
// A zero expiry selects the configured default for the token kind. Every
// call embeds a freshly generated jti, even for identical identities.
func (service *TokenService) CreateAccessToken(identity Identity, refresh bool, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = service.accessTTL
		if refresh {
			expiry = service.refreshTTL
		}
	}

	currentTime := service.clock()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   identity.UserID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(expiry)),
		},
		UserID:  identity.UserID,
		Email:   identity.Email,
		Role:    string(identity.Role),
		Refresh: refresh,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.signingKey)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// DecodeToken checks the signature and validity of an access or refresh token.
//
// Any failure (signature, algorithm, issuer, expiry, missing jti or user)
// yields an invalid_token [apperr.AppError].
func (service *TokenService) DecodeToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return service.signingKey, nil
	}, service.parserOptions()...)

	if err != nil {
		return nil, apperr.InvalidToken().WithCause(err)
	}

	if !token.Valid || !uuid.IsValid(claims.ID) || claims.UserID == "" {
		return nil, apperr.InvalidToken().WithCause(errors.New("auth: incomplete token claims"))
	}

	return claims, nil
}

// parserOptions returns the validation rules shared by every decode path.
func (service *TokenService) parserOptions(extra ...jwt.ParserOption) []jwt.ParserOption {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.clock),
	}
	return append(options, extra...)
}
