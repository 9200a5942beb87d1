package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/qrdesk-api/internal/domain"
	jwtinfra "github.com/qrdesk-api/internal/infrastructure/jwt"
	"github.com/qrdesk-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric,len=6"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type RegisterResult struct {
	User    *domain.PublicUser `json:"user"`
	OTPSent bool               `json:"otp_sent"`
}

type LoginResult struct {
	Token string             `json:"token"`
	User  *domain.PublicUser `json:"user"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	RequestForgotPassword(ctx context.Context, email string) error
	VerifyEmailOTP(ctx context.Context, req VerifyOTPRequest) error
	VerifyForgotPasswordOTP(ctx context.Context, req VerifyOTPRequest) (resetToken string, err error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	ResendEmailOTP(ctx context.Context, email string) error
	Me(ctx context.Context, userID string) (*domain.PublicUser, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkVerified(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, hash string) error
}

// otpStore holds one live code per user and purpose. Consume removes the
// code atomically, so a code is redeemed at most once.
type otpStore interface {
	Put(ctx context.Context, c *domain.OneTimeCode) error
	Consume(ctx context.Context, userID string, purpose domain.OTPPurpose, code string) (*domain.OneTimeCode, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenIssuer interface {
	SignSession(userID, role string) (string, error)
	SignPasswordReset(userID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type ServiceDeps struct {
	UserRepo                 userStore
	OTPRepo                  otpStore
	Mailer                   mailer
	Tokens                   tokenIssuer
	OTPTTL                   time.Duration
	RequireEmailVerification bool
	AdminEmails              []string
}

type service struct {
	users         userStore
	otps          otpStore
	mailer        mailer
	tokens        tokenIssuer
	otpTTL        time.Duration
	requireVerify bool
	admins        map[string]struct{}
}

func NewService(deps ServiceDeps) Service {
	admins := make(map[string]struct{}, len(deps.AdminEmails))
	for _, e := range deps.AdminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}
	ttl := deps.OTPTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		users:         deps.UserRepo,
		otps:          deps.OTPRepo,
		mailer:        deps.Mailer,
		tokens:        deps.Tokens,
		otpTTL:        ttl,
		requireVerify: deps.RequireEmailVerification,
		admins:        admins,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := domain.RoleUser
	if _, ok := s.admins[email]; ok {
		role = domain.RoleAdmin
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// Create enforces email uniqueness atomically.
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	sent := true
	if err := s.issueOTP(ctx, u, domain.OTPEmailVerification); err != nil {
		slog.Warn("verification otp not delivered", "user_id", u.UserID, "err", err)
		sent = false
	}
	return &RegisterResult{User: u.Public(), OTPSent: sent}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
			return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}
	if s.requireVerify && !u.IsVerified {
		return nil, fmt.Errorf("email not verified, verify your email before logging in: %w", domain.ErrForbidden)
	}
	token, err := s.tokens.SignSession(u.UserID, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u.Public()}, nil
}

func (s *service) RequestForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	return s.issueOTP(ctx, u, domain.OTPForgotPassword)
}

func (s *service) VerifyEmailOTP(ctx context.Context, req VerifyOTPRequest) error {
	u, err := s.consumeOTP(ctx, req, domain.OTPEmailVerification)
	if err != nil {
		return err
	}
	return s.users.MarkVerified(ctx, u.UserID)
}

func (s *service) VerifyForgotPasswordOTP(ctx context.Context, req VerifyOTPRequest) (string, error) {
	u, err := s.consumeOTP(ctx, req, domain.OTPForgotPassword)
	if err != nil {
		return "", err
	}
	return s.tokens.SignPasswordReset(u.UserID)
}

func (s *service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return fmt.Errorf("reset token missing: %w", domain.ErrUnauthorized)
	}
	claims, err := s.tokens.Verify(resetToken)
	if err != nil {
		return fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	if claims.Type != jwtinfra.TypePasswordReset {
		return fmt.Errorf("invalid token type: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.UserID, string(hash))
}

func (s *service) ResendEmailOTP(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if u.IsVerified {
		return fmt.Errorf("user is already verified: %w", domain.ErrBadRequest)
	}
	return s.issueOTP(ctx, u, domain.OTPEmailVerification)
}

func (s *service) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// consumeOTP redeems the user's code for purpose. The code is gone
// afterwards whether or not it had expired.
func (s *service) consumeOTP(ctx context.Context, req VerifyOTPRequest, purpose domain.OTPPurpose) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid otp: %w", domain.ErrInvalidOTP)
		}
		return nil, err
	}
	c, err := s.otps.Consume(ctx, u.UserID, purpose, req.OTP)
	if err != nil {
		return nil, err
	}
	if c.Expired(time.Now()) {
		return nil, fmt.Errorf("otp has expired: %w", domain.ErrExpired)
	}
	return u, nil
}

func (s *service) issueOTP(ctx context.Context, u *domain.User, purpose domain.OTPPurpose) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	c := &domain.OneTimeCode{
		UserID:    u.UserID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.otpTTL).Unix(),
		CreatedAt: now,
	}
	if err := s.otps.Put(ctx, c); err != nil {
		return err
	}
	subject, body := otpMessage(purpose, code, s.otpTTL)
	return s.mailer.SendEmail(u.Email, subject, body)
}

func otpMessage(purpose domain.OTPPurpose, code string, ttl time.Duration) (subject, body string) {
	minutes := int(ttl.Minutes())
	if purpose == domain.OTPForgotPassword {
		return "Reset Password OTP",
			fmt.Sprintf("Your OTP for resetting your password is: %s\nIt expires in %d minutes.", code, minutes)
	}
	return "Your OTP Code",
		fmt.Sprintf("Your verification OTP is: %s\nIt expires in %d minutes.", code, minutes)
}

// dummyHash is compared against for unknown emails so that login does the
// same bcrypt work whether or not the account exists.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)
	return h
})

// generateOTP returns a uniformly random 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
