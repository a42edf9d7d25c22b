// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/luxury-storefront/internal/config"
)

func testManager() *JWTManager {
	cfg := &config.Config{}
	cfg.App.Name = "luxury-storefront"
	cfg.JWT.Secret = "test-secret-key"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	return NewJWTManager(cfg)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()

	token, err := m.GenerateAccessToken(42, "jordan@example.com", true)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "jordan@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "luxury-storefront", claims.Issuer)
}

func TestRefreshTokenNeverCarriesAdmin(t *testing.T) {
	m := testManager()

	token, err := m.GenerateRefreshToken(42, "jordan@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
}

func TestTokenKindsDoNotCross(t *testing.T) {
	m := testManager()

	access, err := m.GenerateAccessToken(1, "a@b.com", false)
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(1, "a@b.com")
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := testManager().GenerateAccessToken(1, "a@b.com", false)
	require.NoError(t, err)

	other := testManager()
	other.config.JWT.Secret = "a-different-secret"
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic dXNlcjpwYXNz"))
}
