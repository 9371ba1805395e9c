// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/wanderly/internal/platform/middleware"
	requestutil "github.com/taibuivan/wanderly/internal/platform/request"
	"github.com/taibuivan/wanderly/internal/platform/respond"
	"github.com/taibuivan/wanderly/internal/platform/sec"
	"github.com/taibuivan/wanderly/internal/platform/validate"
	"github.com/taibuivan/wanderly/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the authentication and user directory HTTP endpoints.
//
// Handlers only decode, validate and encode; every decision is made by [Service].
type Handler struct {
	authService *Service
	limiter     *middleware.CredentialLimiter
}

// NewHandler constructs a new [Handler]. A nil limiter leaves the credential
// endpoints unthrottled.
func NewHandler(service *Service, limiter *middleware.CredentialLimiter) *Handler {
	return &Handler{authService: service, limiter: limiter}
}

// Routes returns the router mounted at /api/v1/auth.
//
// # Endpoints
//   - POST /signup                         : Creates an unverified account.
//   - POST /verify/{token}                 : Confirms the email address.
//   - POST /login                          : Issues an access and a refresh token.
//   - GET  /refresh_token                  : Exchanges a refresh token for an access token.
//   - GET  /logout                         : Revokes the presented access token.
//   - POST /password-reset-request         : Emails a reset link.
//   - POST /password-reset-confirm/{token} : Sets a new password.
//   - GET  /me                             : Returns the caller's profile.
//   - DELETE /me                           : Soft-deletes the caller's account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.With(handler.throttle(ScopeSignup)).Post("/signup", handler.signup)
	router.Post("/verify/{token}", handler.verifyEmail)
	router.With(handler.throttle(ScopeLogin)).Post("/login", handler.login)
	router.Get("/refresh_token", handler.refresh)
	router.With(handler.throttle(ScopePasswordReset)).Post("/password-reset-request", handler.requestPasswordReset)
	router.Post("/password-reset-confirm/{token}", handler.confirmPasswordReset)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(handler.authService), middleware.RequireAuth)
		r.Get("/logout", handler.logout)
		r.Get("/me", handler.me)
		r.Delete("/me", handler.deleteMe)
	})

	return router
}

// UserRoutes returns the admin-only router mounted at /api/v1/users.
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.Authenticate(handler.authService), middleware.RequireRole(sec.RoleAdmin))
	router.Get("/", handler.listUsers)

	return router
}

func (handler *Handler) throttle(scope string) func(http.Handler) http.Handler {
	if handler.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return handler.limiter.Middleware(scope)
}

// # Request Payloads

type signupRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

/*
Signup handles the creation of a new account.

POST /api/v1/auth/signup

Response:
  - 201: User: Created profile (never includes the password hash)
  - 400: validation_error
  - 403: user_exists
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, MaxFullNameLength).
		Phone(FieldPhoneNumber, input.PhoneNumber).
		Required(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, MaxEmailLength).
		Email(FieldEmail, input.Email)
	passwordRules(validator, FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		Password:    input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
VerifyEmail confirms the address carried by the emailed token.

POST /api/v1/auth/verify/{token}

Response:
  - 200: Confirmation message
  - 401: invalid_token
  - 404: user_not_found
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	if err := handler.authService.VerifyEmail(request.Context(), requestutil.Param(request, FieldToken)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Email verified"})
}

/*
Login authenticates with email and password.

POST /api/v1/auth/login

Response:
  - 200: LoginResult: access token, refresh token and user
  - 400: invalid_credentials or validation_error
  - 403: account_not_verified
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
Refresh issues a new access token from the bearer refresh token.

GET /api/v1/auth/refresh_token

Response:
  - 200: AccessTokenResult
  - 401: invalid_token or revoked_token
  - 403: refresh_token_required
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	token, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Refresh(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
Logout revokes the bearer access token.

GET /api/v1/auth/logout

Response:
  - 200: Confirmation message
  - 401: invalid_token, revoked_token or access_token_required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), claims); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Logged out"})
}

/*
RequestPasswordReset emails a reset link if the address is registered.

POST /api/v1/auth/password-reset-request

Response:
  - 200: Identical for known and unknown addresses
  - 400: validation_error
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input passwordResetRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "If the email is registered, a reset link has been sent"})
}

/*
ConfirmPasswordReset sets a new password using the emailed token.

POST /api/v1/auth/password-reset-confirm/{token}

Response:
  - 200: Confirmation message
  - 400: validation_error (including mismatched passwords)
  - 401: invalid_token
  - 404: user_not_found
*/
func (handler *Handler) confirmPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input passwordResetConfirmRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	passwordRules(validator, FieldNewPassword, input.NewPassword)
	validator.Custom(FieldConfirmNewPassword, input.NewPassword != input.ConfirmNewPassword, "Passwords do not match")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ConfirmPasswordReset(request.Context(), ConfirmResetInput{
		Token:              requestutil.Param(request, FieldToken),
		NewPassword:        input.NewPassword,
		ConfirmNewPassword: input.ConfirmNewPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Password has been reset"})
}

/*
Me returns the authenticated user's profile.

GET /api/v1/auth/me
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Me(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DeleteMe soft-deletes the authenticated account.

DELETE /api/v1/auth/me

Response:
  - 200: Confirmation message
  - 404: user_not_found
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.DeleteAccount(request.Context(), claims); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Account deleted"})
}

/*
ListUsers returns one page of the user directory.

GET /api/v1/users?page=1&limit=20
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	users, meta, err := handler.authService.ListUsers(request.Context(), pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

// passwordRules applies the shared password length policy.
func passwordRules(validator *validate.Validator, field, password string) {
	validator.Required(field, password).
		MinLen(field, password, MinPasswordLength).
		MaxLen(field, password, MaxPasswordLength)
}

// checkPassword applies [passwordRules] on their own.
func checkPassword(field, password string) error {
	validator := &validate.Validator{}
	passwordRules(validator, field, password)
	return validator.Err()
}
