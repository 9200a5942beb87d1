package handler

import (
	"net/http"

	"github.com/qrdesk-api/internal/application/auth"
	"github.com/qrdesk-api/internal/transport/http/middleware"
)

// AuthHandler handles account, OTP and password-reset endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	msg := "User registered successfully"
	if !res.OTPSent {
		msg = "User registered, but the verification email could not be sent; request a new OTP"
	}
	writeJSON(w, http.StatusCreated, UserEnvelope{Message: msg, User: res.User, OTPSent: &res.OTPSent})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{Message: "Login Successful", Token: res.Token, User: res.User})
}

func (h *AuthHandler) VerifyEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.VerifyEmailOTP(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP verified successfully"})
}

func (h *AuthHandler) RequestForgotPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestForgotPassword(r.Context(), req.Email); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent for password reset"})
}

func (h *AuthHandler) VerifyForgotPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	token, err := h.svc.VerifyForgotPasswordOTP(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResetTokenEnvelope{
		Message:    "OTP verified, you may now reset your password",
		ResetToken: token,
	})
}

// ResetPassword takes the reset token from the body, falling back to the
// Authorization header.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	token := req.ResetToken
	if token == "" {
		token, _ = middleware.BearerToken(r)
	}
	if err := h.svc.ResetPassword(r.Context(), token, req.NewPassword); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Password reset successful"})
}

func (h *AuthHandler) ResendEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ResendEmailOTP(r.Context(), req.Email); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP resent successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.Me(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
