package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskpad/taskpad-go/internal/apperr"
	"github.com/taskpad/taskpad-go/internal/crypto"
	"github.com/taskpad/taskpad-go/internal/model"
	"github.com/taskpad/taskpad-go/internal/service"
)

// AuthHandler handles HTTP requests for the auth endpoints.
type AuthHandler struct {
	service *service.AuthService
	respond *Responder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, respond *Responder) *AuthHandler {
	return &AuthHandler{service: svc, respond: respond}
}

// HandleSignup handles POST /api/auth/signup.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeBody(w, r, h.respond, &req) {
		return
	}

	data, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.respond.Error(w, r, translateAuthError(err))
		return
	}

	h.respond.JSON(w, http.StatusCreated, "User registered successfully", data)
}

// HandleLogin handles POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, h.respond, &req) {
		return
	}

	data, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.respond.Error(w, r, translateAuthError(err))
		return
	}

	h.respond.JSON(w, http.StatusOK, "Login successful", data)
}

// HandleForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotPasswordRequest
	if !decodeBody(w, r, h.respond, &req) {
		return
	}

	message, err := h.service.ForgotPassword(r.Context(), req)
	if err != nil {
		h.respond.Error(w, r, translateAuthError(err))
		return
	}

	h.respond.JSON(w, http.StatusOK, message, nil)
}

// HandleResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if !decodeBody(w, r, h.respond, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		h.respond.Error(w, r, translateAuthError(err))
		return
	}

	h.respond.JSON(w, http.StatusOK, "Password has been reset successfully", nil)
}

// translateAuthError maps service and token sentinels to response kinds.
// Anything unrecognized stays as-is and surfaces as an internal error.
func translateAuthError(err error) error {
	switch {
	case errors.Is(err, service.ErrNameTooShort),
		errors.Is(err, service.ErrEmailInvalid),
		errors.Is(err, service.ErrPasswordTooShort):
		return apperr.Validation(err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return apperr.Conflict(err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperr.Auth(err.Error())
	case errors.Is(err, crypto.ErrTokenExpired):
		return apperr.Auth("Reset token expired")
	case errors.Is(err, crypto.ErrTokenMalformed):
		return apperr.Auth("Invalid reset token")
	default:
		return err
	}
}

// decodeBody decodes a JSON request body, responding with a validation error
// on failure. Returns false when the request has already been answered.
func decodeBody(w http.ResponseWriter, r *http.Request, rp *Responder, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rp.Error(w, r, apperr.Validation("invalid request body"))
		return false
	}
	return true
}
