package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qrdesk-api/internal/application/auth"
	"github.com/qrdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rr
}

func TestRegister_Created(t *testing.T) {
	svc := &mockAuthSvc{}
	user := &domain.PublicUser{UserID: "u1", Email: "a@b.com", Role: "user"}
	svc.On("Register", mock.Anything, auth.RegisterRequest{Email: "a@b.com", Password: "password1"}).
		Return(&auth.RegisterResult{User: user, OTPSent: true}, nil)

	rr := post(NewAuthHandler(svc).Register, `{"email":"a@b.com","password":"password1"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var body UserEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "User registered successfully", body.Message)
	assert.Equal(t, "u1", body.User.UserID)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestRegister_ValidationFails(t *testing.T) {
	svc := &mockAuthSvc{}

	rr := post(NewAuthHandler(svc).Register, `{"email":"not-an-email","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	svc := &mockAuthSvc{}

	rr := post(NewAuthHandler(svc).Register, `{"email":"a@b.com","password":"password1","role":"admin"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("email already registered: %w", domain.ErrConflict))

	rr := post(NewAuthHandler(svc).Register, `{"email":"a@b.com","password":"password1"}`)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLogin_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("login: %w", domain.ErrInvalidCredentials), http.StatusUnauthorized},
		{fmt.Errorf("email not verified: %w", domain.ErrForbidden), http.StatusForbidden},
	}
	for _, tc := range cases {
		svc := &mockAuthSvc{}
		svc.On("Login", mock.Anything, mock.Anything).Return(nil, tc.err)

		rr := post(NewAuthHandler(svc).Login, `{"email":"a@b.com","password":"x"}`)

		assert.Equal(t, tc.want, rr.Code)
		assert.Contains(t, rr.Body.String(), `"message"`)
	}
}

func TestLogin_ReturnsToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(&auth.LoginResult{Token: "tok", User: &domain.PublicUser{Email: "a@b.com"}}, nil)

	rr := post(NewAuthHandler(svc).Login, `{"email":"a@b.com","password":"x"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body LoginEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "tok", body.Token)
}

func TestVerifyEmailOTP_Expired(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyEmailOTP", mock.Anything, auth.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"}).
		Return(fmt.Errorf("otp has expired: %w", domain.ErrExpired))

	rr := post(NewAuthHandler(svc).VerifyEmailOTP, `{"email":"a@b.com","otp":"123456"}`)

	assert.Equal(t, http.StatusGone, rr.Code)
}

func TestVerifyEmailOTP_RejectsNonNumeric(t *testing.T) {
	svc := &mockAuthSvc{}
	rr := post(NewAuthHandler(svc).VerifyEmailOTP, `{"email":"a@b.com","otp":"12a456"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyForgotPasswordOTP_ReturnsResetToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyForgotPasswordOTP", mock.Anything, mock.Anything).Return("reset-tok", nil)

	rr := post(NewAuthHandler(svc).VerifyForgotPasswordOTP, `{"email":"a@b.com","otp":"123456"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"resetToken":"reset-tok"`)
}

func TestResetPassword_TokenFromBody(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResetPassword", mock.Anything, "body-tok", "newpassword").Return(nil)

	rr := post(NewAuthHandler(svc).ResetPassword, `{"reset_token":"body-tok","new_password":"newpassword"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestResetPassword_TokenFromHeader(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResetPassword", mock.Anything, "hdr-tok", "newpassword").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"new_password":"newpassword"}`))
	req.Header.Set("Authorization", "Bearer hdr-tok")
	rr := httptest.NewRecorder()
	NewAuthHandler(svc).ResetPassword(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestResetPassword_WrongTokenType(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResetPassword", mock.Anything, "", "newpassword").Return(fmt.Errorf("reset token missing: %w", domain.ErrUnauthorized))

	rr := post(NewAuthHandler(svc).ResetPassword, `{"new_password":"newpassword"}`)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestResendEmailOTP_AlreadyVerified(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResendEmailOTP", mock.Anything, "a@b.com").Return(fmt.Errorf("user is already verified: %w", domain.ErrBadRequest))

	rr := post(NewAuthHandler(svc).ResendEmailOTP, `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "already verified")
}

func TestRequestForgotPasswordOTP_UnknownEmail(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RequestForgotPassword", mock.Anything, "a@b.com").Return(fmt.Errorf("user: %w", domain.ErrNotFound))

	rr := post(NewAuthHandler(svc).RequestForgotPasswordOTP, `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMe(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Me", mock.Anything, "u1").Return(&domain.PublicUser{UserID: "u1", Email: "a@b.com"}, nil)

	rr := httptest.NewRecorder()
	NewAuthHandler(svc).Me(rr, authedReq(http.MethodGet, "/", "u1", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"a@b.com"`)
}

func TestMe_NoClaims(t *testing.T) {
	rr := httptest.NewRecorder()
	NewAuthHandler(&mockAuthSvc{}).Me(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
