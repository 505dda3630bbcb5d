// Package handler contains the HTTP layer: it decodes requests, calls
// services, and encodes responses. No business rules live here — a
// handler that does more than translate between HTTP and a service call
// is doing the wrong job.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/auth"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/service"
)

// AuthHandler exposes signup, login, and the password reset flow.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/auth/signup
// REQUEST BODY: {"name": "Ada", "email": "ada@example.com", "password": "..."}
// RESPONSE: 201 {"token": "...", "user": {...}}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.auth.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleLogin authenticates an existing account.
//
// HTTP: POST /api/auth/login
// REQUEST BODY: {"email": "ada@example.com", "password": "..."}
// RESPONSE: 200 {"token": "...", "user": {...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleMe returns the account behind the bearer token.
//
// HTTP: GET /api/auth/me (requires auth)
// RESPONSE: 200 {"id": "...", "name": "...", "email": "...", ...}
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleForgotPassword issues a short-lived password reset token.
//
// HTTP: POST /api/auth/forgot-password
// REQUEST BODY: {"email": "ada@example.com"}
// RESPONSE: 200 {"resetToken": "..."}
//
// The token comes back in the response body; wiring an email sender in
// front of this endpoint is a deployment concern, not an API one.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	token, err := h.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"resetToken": token})
}

// HandleResetPassword consumes a reset token and sets a new password.
//
// HTTP: POST /api/auth/reset-password
// REQUEST BODY: {"email": "...", "token": "...", "password": "..."}
// RESPONSE: 200 {"token": "...", "user": {...}} — logged in immediately
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.auth.ResetPassword(r.Context(), req.Email, req.Token, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
