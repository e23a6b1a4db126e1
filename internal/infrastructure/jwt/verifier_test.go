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

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePublicKey(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}), 0600))
	return path
}

func sign(t *testing.T, key *rsa.PrivateKey, service string, expiresIn time.Duration) string {
	t.Helper()
	claims := &Claims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerify_Valid(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v, err := NewVerifier(writePublicKey(t, key))
	require.NoError(t, err)

	claims, err := v.Verify(sign(t, key, "email-verifier", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "email-verifier", claims.Service)
}

func TestVerify_Expired(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v, err := NewVerifier(writePublicKey(t, key))
	require.NoError(t, err)

	_, err = v.Verify(sign(t, key, "email-verifier", -time.Hour))
	assert.Error(t, err)
}

func TestVerify_WrongKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v, err := NewVerifier(writePublicKey(t, key))
	require.NoError(t, err)

	_, err = v.Verify(sign(t, other, "email-verifier", time.Hour))
	assert.Error(t, err)
}

func TestVerify_MissingService(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v, err := NewVerifier(writePublicKey(t, key))
	require.NoError(t, err)

	_, err = v.Verify(sign(t, key, "", time.Hour))
	assert.Error(t, err)
}

func TestNewVerifier_MissingFile(t *testing.T) {
	_, err := NewVerifier(filepath.Join(t.TempDir(), "absent.pem"))
	assert.Error(t, err)
}
