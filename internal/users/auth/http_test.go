// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/wanderly/internal/users/auth"
)

type apiClient struct {
	t      *testing.T
	router http.Handler
}

func newAPIClient(t *testing.T, f *fixture) *apiClient {
	handler := auth.NewHandler(f.service, nil)

	router := chi.NewRouter()
	router.Mount("/api/v1/auth", handler.Routes())
	router.Mount("/api/v1/users", handler.UserRoutes())

	return &apiClient{t: t, router: router}
}

// do sends a request and decodes the JSON envelope.
func (c *apiClient) do(method, path, token string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	c.router.ServeHTTP(recorder, request)

	envelope := map[string]any{}
	require.NoError(c.t, json.Unmarshal(recorder.Body.Bytes(), &envelope), recorder.Body.String())
	return recorder.Code, envelope
}

func data(envelope map[string]any) map[string]any {
	payload, _ := envelope["data"].(map[string]any)
	return payload
}

/*
TestHTTP_AccountLifecycle walks signup, login, refresh and logout end to end.
*/
func TestHTTP_AccountLifecycle(t *testing.T) {
	f := newFixture(t, auth.Options{})
	client := newAPIClient(t, f)

	var verifyToken string
	f.captureVerification("jane@x.com", &verifyToken)

	signup := map[string]string{
		"full_name": "Jane Doe",
		"email":     "jane@x.com",
		"password":  "longpass1",
	}

	status, body := client.do(http.MethodPost, "/api/v1/auth/signup", "", signup)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "jane@x.com", data(body)["email"])
	assert.Equal(t, false, data(body)["is_verified"])
	assert.NotContains(t, data(body), "password_hash")

	status, body = client.do(http.MethodPost, "/api/v1/auth/signup", "", signup)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "user_exists", body["code"])

	status, body = client.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "jane@x.com", "password": "longpass1",
	})
	require.Equal(t, http.StatusOK, status)
	access, _ := data(body)["access_token"].(string)
	refresh, _ := data(body)["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.Equal(t, "Bearer", data(body)["token_type"])

	status, body = client.do(http.MethodGet, "/api/v1/auth/me", access, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Jane Doe", data(body)["full_name"])

	status, body = client.do(http.MethodPost, "/api/v1/auth/verify/"+verifyToken, "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = client.do(http.MethodGet, "/api/v1/auth/me", access, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(body)["is_verified"])

	status, body = client.do(http.MethodGet, "/api/v1/auth/refresh_token", access, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "refresh_token_required", body["code"])

	status, body = client.do(http.MethodGet, "/api/v1/auth/refresh_token", refresh, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, data(body)["access_token"])

	status, body = client.do(http.MethodGet, "/api/v1/auth/me", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "access_token_required", body["code"])

	status, _ = client.do(http.MethodGet, "/api/v1/auth/logout", access, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = client.do(http.MethodGet, "/api/v1/auth/logout", access, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "revoked_token", body["code"])

	status, body = client.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["code"])

	f.notifier.AssertExpectations(t)
}

/*
TestHTTP_SignupValidation reports every failing field at once.
*/
func TestHTTP_SignupValidation(t *testing.T) {
	f := newFixture(t, auth.Options{})
	client := newAPIClient(t, f)

	status, body := client.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"full_name":    "",
		"phone_number": "4155552671",
		"email":        "not-an-email",
		"password":     "short",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body["code"])

	details, _ := body["details"].([]any)
	fields := map[string]bool{}
	for _, detail := range details {
		entry, _ := detail.(map[string]any)
		field, _ := entry["field"].(string)
		fields[field] = true
	}
	assert.True(t, fields["full_name"])
	assert.True(t, fields["phone_number"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.Equal(t, 0, f.users.count())

	status, body = client.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body["code"])
}

/*
TestHTTP_PasswordReset covers the request and confirm endpoints.
*/
func TestHTTP_PasswordReset(t *testing.T) {
	f := newFixture(t, auth.Options{})
	client := newAPIClient(t, f)
	f.notifier.On("SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	status, _ := client.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"full_name": "Jane Doe", "email": "jane@x.com", "password": "longpass1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, unknown := client.do(http.MethodPost, "/api/v1/auth/password-reset-request", "", map[string]string{"email": "ghost@x.com"})
	require.Equal(t, http.StatusOK, status)

	var resetToken string
	f.captureReset("jane@x.com", &resetToken)
	status, known := client.do(http.MethodPost, "/api/v1/auth/password-reset-request", "", map[string]string{"email": "jane@x.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, unknown, known)

	status, body := client.do(http.MethodPost, "/api/v1/auth/password-reset-confirm/"+resetToken, "", map[string]string{
		"new_password": "newpass123", "confirm_new_password": "newpass124",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body["code"])

	status, body = client.do(http.MethodPost, "/api/v1/auth/password-reset-confirm/garbage", "", map[string]string{
		"new_password": "newpass123", "confirm_new_password": "newpass123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_token", body["code"])

	status, _ = client.do(http.MethodPost, "/api/v1/auth/password-reset-confirm/"+resetToken, "", map[string]string{
		"new_password": "newpass123", "confirm_new_password": "newpass123",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = client.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "jane@x.com", "password": "longpass1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_credentials", body["code"])

	status, _ = client.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "jane@x.com", "password": "newpass123",
	})
	assert.Equal(t, http.StatusOK, status)
}

/*
TestHTTP_UserDirectory is reserved for administrators.
*/
func TestHTTP_UserDirectory(t *testing.T) {
	f := newFixture(t, auth.Options{})
	client := newAPIClient(t, f)
	f.notifier.On("SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	f.seedAdmin(t, "root@x.com", "adminpass1")
	status, _ := client.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"full_name": "Jane Doe", "email": "jane@x.com", "password": "longpass1",
	})
	require.Equal(t, http.StatusCreated, status)

	login := func(email, password string) string {
		status, body := client.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": email, "password": password,
		})
		require.Equal(t, http.StatusOK, status)
		token, _ := data(body)["access_token"].(string)
		return token
	}

	status, body := client.do(http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["code"])

	status, body = client.do(http.MethodGet, "/api/v1/users", login("jane@x.com", "longpass1"), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["code"])

	status, body = client.do(http.MethodGet, "/api/v1/users?page=1&limit=1", login("root@x.com", "adminpass1"), nil)
	require.Equal(t, http.StatusOK, status)

	users, _ := body["data"].([]any)
	assert.Len(t, users, 1)

	meta, _ := body["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["total"])
	assert.Equal(t, float64(2), meta["total_pages"])
	assert.Equal(t, true, meta["has_next"])
}
