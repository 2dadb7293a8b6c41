package services

import (
	"testing"

	"gymcore-http-service/internal/infrastructure/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(secret string) InterfaceJWTService {
	return NewJWTService(&config.Config{JWTSecretKey: secret}, nil)
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService("test-secret")

	branchID := uint(7)
	tokenString, err := svc.GenerateToken(42, "staff", &branchID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "staff", claims["role"])
	assert.Equal(t, float64(7), claims["branch_id"])
	assert.Equal(t, "gymcore-http-service", claims["iss"])
}

func TestGenerateTokenAdminHasNoBranch(t *testing.T) {
	svc := newTestJWTService("test-secret")

	tokenString, err := svc.GenerateToken(1, "admin", nil)
	require.NoError(t, err)

	token, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["role"])
	// branch_id为omitempty，管理员令牌不携带
	_, hasBranch := claims["branch_id"]
	assert.False(t, hasBranch)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := newTestJWTService("secret-a")
	verifier := newTestJWTService("secret-b")

	tokenString, err := issuer.GenerateToken(1, "admin", nil)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := newTestJWTService("test-secret")

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnsignedAlg(t *testing.T) {
	svc := newTestJWTService("test-secret")

	// alg=none的令牌必须被拒绝
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.Error(t, err)
}
