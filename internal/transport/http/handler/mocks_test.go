package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/qrdesk-api/internal/application/auth"
	"github.com/qrdesk-api/internal/application/qrcode"
	"github.com/qrdesk-api/internal/application/upload"
	"github.com/qrdesk-api/internal/domain"
	jwtinfra "github.com/qrdesk-api/internal/infrastructure/jwt"
	"github.com/qrdesk-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/mock"
)

// --- auth ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.RegisterResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) RequestForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) VerifyEmailOTP(ctx context.Context, req auth.VerifyOTPRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAuthSvc) VerifyForgotPasswordOTP(ctx context.Context, req auth.VerifyOTPRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockAuthSvc) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	return m.Called(ctx, resetToken, newPassword).Error(0)
}

func (m *mockAuthSvc) ResendEmailOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.PublicUser); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- qr codes ---

type mockQRSvc struct{ mock.Mock }

func (m *mockQRSvc) Create(ctx context.Context, ownerID string, req domain.CreateQRCodeRequest) (*domain.QRCode, error) {
	args := m.Called(ctx, ownerID, req)
	if q, _ := args.Get(0).(*domain.QRCode); q != nil {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQRSvc) Update(ctx context.Context, qrID, ownerID string, req domain.UpdateQRCodeRequest) (*domain.QRCode, error) {
	args := m.Called(ctx, qrID, ownerID, req)
	if q, _ := args.Get(0).(*domain.QRCode); q != nil {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQRSvc) Delete(ctx context.Context, qrID, ownerID string) error {
	return m.Called(ctx, qrID, ownerID).Error(0)
}

func (m *mockQRSvc) TogglePause(ctx context.Context, qrID, ownerID string) (*domain.QRCode, error) {
	args := m.Called(ctx, qrID, ownerID)
	if q, _ := args.Get(0).(*domain.QRCode); q != nil {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQRSvc) Get(ctx context.Context, qrID, ownerID string) (*domain.QRCode, error) {
	args := m.Called(ctx, qrID, ownerID)
	if q, _ := args.Get(0).(*domain.QRCode); q != nil {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQRSvc) ListByOwner(ctx context.Context, ownerID string) ([]domain.QRCode, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.QRCode), args.Error(1)
}

func (m *mockQRSvc) GetPublic(ctx context.Context, shortCode string) (*domain.PublicQRCode, error) {
	args := m.Called(ctx, shortCode)
	if q, _ := args.Get(0).(*domain.PublicQRCode); q != nil {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQRSvc) Resolve(ctx context.Context, shortCode string, meta qrcode.RequestMeta) (string, error) {
	args := m.Called(ctx, shortCode, meta)
	return args.String(0), args.Error(1)
}

func (m *mockQRSvc) GetAnalytics(ctx context.Context, qrID, ownerID string) (*qrcode.Analytics, error) {
	args := m.Called(ctx, qrID, ownerID)
	if a, _ := args.Get(0).(*qrcode.Analytics); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQRSvc) GetRealTimeAnalytics(ctx context.Context, qrID, ownerID string) (*qrcode.RealTimeAnalytics, error) {
	args := m.Called(ctx, qrID, ownerID)
	if a, _ := args.Get(0).(*qrcode.RealTimeAnalytics); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQRSvc) GetUserScanAnalytics(ctx context.Context, ownerID string) (*qrcode.UserScanAnalytics, error) {
	args := m.Called(ctx, ownerID)
	if a, _ := args.Get(0).(*qrcode.UserScanAnalytics); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- uploads ---

type mockUploadSvc struct{ mock.Mock }

func (m *mockUploadSvc) Upload(ctx context.Context, in upload.Input) (*domain.Upload, error) {
	args := m.Called(ctx, in.Kind, in.UserID, in.Filename)
	if u, _ := args.Get(0).(*domain.Upload); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploadSvc) List(ctx context.Context, userID string) ([]domain.Upload, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Upload), args.Error(1)
}

// --- helpers ---

// authedReq builds a request whose context already carries session claims.
func authedReq(method, target, userID, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	claims := &jwtinfra.Claims{UserID: userID, Role: domain.RoleUser, Type: jwtinfra.TypeSession}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}
