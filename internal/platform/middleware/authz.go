// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
	"github.com/taibuivan/wanderly/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/wanderly/internal/platform/request"
	"github.com/taibuivan/wanderly/internal/platform/respond"
	"github.com/taibuivan/wanderly/internal/platform/sec"
)

// TokenVerifier validates an access token for a protected route.
//
// Implementations decide what "valid" means beyond the signature, such as
// rejecting refresh tokens and revoked token ids.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*sec.AuthClaims, error)
}

// Authenticate verifies a bearer token when one is present.
//
// # Flow
//  1. No Authorization header: the request proceeds as anonymous.
//  2. A malformed header or a token rejected by the verifier ends the request
//     with the verifier's error (invalid_token, revoked_token, ...).
//  3. Otherwise the [*sec.AuthClaims] are stored in the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Header.Get("Authorization") == "" {
				next.ServeHTTP(writer, request)
				return
			}

			token, err := requestutil.BearerToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			claims, err := verifier.VerifyAccessToken(request.Context(), token)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With("user_id", claims.UserID))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose user role is below the required one.
//
// It implies [RequireAuth], so mounting both is unnecessary.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !claims.Identity().Role.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
