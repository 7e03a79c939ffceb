package testutils

import (
	"context"
	"testing"

	"github.com/bridgehead/bridgehead-api/internal/config"
	"github.com/bridgehead/bridgehead-api/internal/service/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	// TestJWTSecret is a dedicated test-only secret for signing JWTs.
	// This must never be used in production.
	TestJWTSecret = "test-jwt-secret-that-is-32-chars-long"

	// TestTokenLifetimeMinutes is the lifetime of test access tokens.
	TestTokenLifetimeMinutes = 15
)

// TestAuthConfig returns an auth configuration using the test secret.
func TestAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: TestJWTSecret, TokenLifetimeMinutes: TestTokenLifetimeMinutes}
}

// NewTestJWTService creates the production JWT service configured with the test secret.
func NewTestJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(TestAuthConfig())
	require.NoError(t, err, "Failed to create test JWT service")
	return svc
}

// GenerateAuthHeader returns an "Authorization" header value for userID.
func GenerateAuthHeader(t *testing.T, svc auth.JWTService, userID uuid.UUID) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err, "Failed to generate test token")
	return "Bearer " + token
}
