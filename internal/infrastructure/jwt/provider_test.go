package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qrdesk-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, expiry time.Duration) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	p, err := NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         expiry,
		ResetTokenExpiry:  expiry,
	})
	require.NoError(t, err)
	return p
}

func TestSignSession_RoundTrip(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, err := p.SignSession("u1", "admin")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, TypeSession, claims.Type)
}

func TestSignPasswordReset_Type(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, err := p.SignPasswordReset("u1")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, TypePasswordReset, claims.Type)
	assert.Empty(t, claims.Role)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t, -time.Minute)
	tok, err := p.SignSession("u1", "user")
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestVerify_ForeignKey(t *testing.T) {
	a := newTestProvider(t, time.Hour)
	b := newTestProvider(t, time.Hour)
	tok, err := a.SignSession("u1", "user")
	require.NoError(t, err)

	_, err = b.Verify(tok)
	assert.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	_, err := p.Verify("not.a.jwt")
	assert.Error(t, err)
}
