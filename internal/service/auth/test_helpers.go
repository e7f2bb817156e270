package auth

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock"
	"github.com/petcare/catalog-api/internal/config"
	"github.com/stretchr/testify/require"
)

// TestJWTSecret is a signing secret long enough for NewJWTService.
const TestJWTSecret = "test-jwt-secret-that-is-32-chars-long"

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            TestJWTSecret,
		TokenLifetimeMinutes: 60,
	}
}

// RequireTestJWTService creates a JWT service on clk and fails the test if
// that is not possible. A nil clk uses the wall clock.
func RequireTestJWTService(t *testing.T, clk clock.Clock) JWTService {
	t.Helper()
	svc, err := NewJWTService(DefaultJWTConfig(), clk)
	require.NoError(t, err, "Failed to create test JWT service")
	return svc
}

// GenerateAuthHeaderForTestingT returns an Authorization header value
// carrying a valid token for subject.
func GenerateAuthHeaderForTestingT(t *testing.T, svc JWTService, subject string) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), subject)
	require.NoError(t, err, "Failed to generate token")
	return "Bearer " + token
}

// MockJWTService is a function-field implementation of JWTService.
type MockJWTService struct {
	GenerateTokenFunc func(ctx context.Context, subject string) (string, error)
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*Claims, error)

	Token           string
	TokenError      error
	ValidationError error
	Claims          *Claims
}

// NewMockJWTService returns a mock that accepts every token.
func NewMockJWTService() *MockJWTService {
	now := time.Now()
	return &MockJWTService{
		Token: "mock-jwt-token",
		Claims: &Claims{
			Subject:   "test-client",
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
			ID:        "mock-token-id",
		},
	}
}

// GenerateToken implements JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, subject string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(ctx, subject)
	}
	return m.Token, m.TokenError
}

// ValidateToken implements JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, tokenString)
	}
	if m.ValidationError != nil {
		return nil, m.ValidationError
	}
	return m.Claims, nil
}
