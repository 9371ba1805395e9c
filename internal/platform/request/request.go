// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides the router's parameter extraction, bearer-token parsing and body
decoding behind small helpers so that every handler fails the same way.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
	"github.com/taibuivan/wanderly/internal/platform/ctxutil"
	"github.com/taibuivan/wanderly/internal/platform/sec"
	"github.com/taibuivan/wanderly/internal/platform/validate"
)

// maxBodyBytes caps JSON payloads; credential bodies are tiny.
const maxBodyBytes = 1 << 20

// bearerPrefix is the RFC 6750 authorization scheme.
const bearerPrefix = "bearer "

/*
DecodeJSON reads the request body and decodes it into the target structure.

Unknown fields are rejected so that typos in field names surface as
validation errors instead of silently empty values.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.ValidationError("Request body is required")
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
BearerToken extracts the token from an "Authorization: Bearer <token>" header.

The scheme is matched case-insensitively. An absent or malformed header
yields apperr.Unauthorized.
*/
func BearerToken(request *http.Request) (string, error) {
	header := request.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", apperr.Unauthorized("Missing or malformed Authorization header")
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", apperr.Unauthorized("Missing or malformed Authorization header")
	}

	return token, nil
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}
