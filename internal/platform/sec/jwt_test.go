// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	service, err := NewTokenService(TokenConfig{
		Secret:          testSecret,
		Issuer:          "wanderly.test",
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      48 * time.Hour,
		VerificationTTL: 24 * time.Hour,
		ResetTTL:        time.Hour,
	})
	require.NoError(t, err)
	return service
}

var testIdentity = Identity{UserID: "user-1", Email: "jane@x.com", Role: RoleUser}

/*
TestNewTokenService_RejectsWeakConfig guards start-up against unusable settings.
*/
func TestNewTokenService_RejectsWeakConfig(t *testing.T) {
	_, err := NewTokenService(TokenConfig{Secret: "short", AccessTTL: time.Minute, RefreshTTL: time.Hour, VerificationTTL: time.Hour, ResetTTL: time.Hour})
	assert.Error(t, err)

	_, err = NewTokenService(TokenConfig{Secret: testSecret, AccessTTL: 0, RefreshTTL: time.Hour, VerificationTTL: time.Hour, ResetTTL: time.Hour})
	assert.Error(t, err)
}

/*
TestAccessToken_RoundTrip recovers the identity and issues distinct jtis.
*/
func TestAccessToken_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	first, err := service.CreateAccessToken(testIdentity, false, 0)
	require.NoError(t, err)
	second, err := service.CreateAccessToken(testIdentity, false, 0)
	require.NoError(t, err)

	firstClaims, err := service.DecodeToken(first)
	require.NoError(t, err)
	secondClaims, err := service.DecodeToken(second)
	require.NoError(t, err)

	assert.Equal(t, testIdentity, firstClaims.Identity())
	assert.Equal(t, testIdentity, secondClaims.Identity())
	assert.False(t, firstClaims.Refresh)
	assert.NotEmpty(t, firstClaims.ID)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
	assert.Equal(t, 15*time.Minute, firstClaims.ExpiresAt.Sub(firstClaims.IssuedAt.Time))
}

/*
TestRefreshToken_DefaultExpiry defaults refresh tokens to two days.
*/
func TestRefreshToken_DefaultExpiry(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.CreateAccessToken(testIdentity, true, 0)
	require.NoError(t, err)

	claims, err := service.DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, claims.Refresh)
	assert.Equal(t, 48*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

/*
TestDecodeToken_Rejections covers expired, forged and malformed tokens.
*/
func TestDecodeToken_Rejections(t *testing.T) {
	service := newTestTokenService(t)

	expired, err := service.CreateAccessToken(testIdentity, false, -time.Minute)
	require.NoError(t, err)

	other, err := NewTokenService(TokenConfig{
		Secret:          "fedcba9876543210fedcba9876543210",
		Issuer:          "wanderly.test",
		AccessTTL:       time.Minute,
		RefreshTTL:      time.Hour,
		VerificationTTL: time.Hour,
		ResetTTL:        time.Hour,
	})
	require.NoError(t, err)
	forged, err := other.CreateAccessToken(testIdentity, false, 0)
	require.NoError(t, err)

	action, err := service.CreateURLSafeToken("jane@x.com", PurposePasswordReset)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"foreign_secret", forged},
		{"action_token", action},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.DecodeToken(tt.token)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))
		})
	}
}

/*
TestURLSafeToken_RoundTrip recovers the email for the matching purpose only.
*/
func TestURLSafeToken_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.CreateURLSafeToken("jane@x.com", PurposeEmailVerification)
	require.NoError(t, err)
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "+")

	claims, err := service.DecodeURLSafeToken(token, PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", claims.Email)

	_, err = service.DecodeURLSafeToken(token, PurposePasswordReset)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))
}

/*
TestURLSafeToken_Expired rejects tokens once the purpose TTL has elapsed.
*/
func TestURLSafeToken_Expired(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.CreateURLSafeToken("jane@x.com", PurposePasswordReset)
	require.NoError(t, err)

	service.clock = func() time.Time { return time.Now().Add(61 * time.Minute) }

	_, err = service.DecodeURLSafeToken(token, PurposePasswordReset)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))
}

/*
TestAccessTokenNotAcceptedAsActionToken keeps the two key spaces apart.
*/
func TestAccessTokenNotAcceptedAsActionToken(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.CreateAccessToken(testIdentity, false, 0)
	require.NoError(t, err)

	_, err = service.DecodeURLSafeToken(token, PurposeEmailVerification)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))
}
