package auth_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-core/internal/config"
	"github.com/your-org/storefront-core/internal/pkg/auth"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "storefront-test"
	cfg.JWT.Secret = "test-secret-key-that-is-long-enough-0123"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	cfg.Security.BcryptCost = 4
	return cfg
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := auth.NewJWTManager(testConfig())
	email := gofakeit.Email()

	token, err := manager.GenerateAccessToken(7, email, "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	manager := auth.NewJWTManager(testConfig())

	token, err := manager.GenerateRefreshToken(7, gofakeit.Email())
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := auth.NewJWTManager(testConfig())

	token, err := manager.GenerateAccessToken(7, gofakeit.Email(), "customer")
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "a-completely-different-secret-key-456789"

	_, err = auth.NewJWTManager(other).ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenExpiry = -time.Minute
	manager := auth.NewJWTManager(cfg)

	token, err := manager.GenerateAccessToken(7, gofakeit.Email(), "customer")
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc123", auth.ExtractTokenFromHeader("Bearer abc123"))
	assert.Empty(t, auth.ExtractTokenFromHeader("abc123"))
	assert.Empty(t, auth.ExtractTokenFromHeader(""))
	assert.Empty(t, auth.ExtractTokenFromHeader("Bearer "))
}

func TestPasswordManager(t *testing.T) {
	pm := auth.NewPasswordManager(testConfig())

	password := gofakeit.Password(true, true, true, false, false, 12)
	hash, err := pm.HashPassword(password)
	require.NoError(t, err)
	require.NotEqual(t, password, hash)

	assert.NoError(t, pm.VerifyPassword(password, hash))
	assert.Error(t, pm.VerifyPassword(password+"x", hash))

	assert.Error(t, pm.ValidatePassword("short"))
	assert.NoError(t, pm.ValidatePassword("long-enough"))
}
