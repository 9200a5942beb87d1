package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3010", cfg.AppPort)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 10*time.Minute, cfg.ResetTokenExpiry)
	assert.True(t, cfg.RequireEmailVerification)
	assert.Equal(t, "qr_codes", cfg.DynamoTables.QRCodes)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.AdminEmails)
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("REQUIRE_EMAIL_VERIFICATION", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("FRONTEND_URL", "https://qr.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.com,https://b.com")
	t.Setenv("ADMIN_EMAILS", " root@example.com, ,ops@example.com")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg := Load()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.RequireEmailVerification)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "https://qr.example.com", cfg.FrontendURL)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"root@example.com", "ops@example.com"}, cfg.AdminEmails)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("OTP_TTL", "ten minutes")
	t.Setenv("REDIS_DB", "x")
	t.Setenv("REQUIRE_EMAIL_VERIFICATION", "maybe")

	cfg := Load()

	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.True(t, cfg.RequireEmailVerification)
}
