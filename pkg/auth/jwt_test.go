package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-signing"

func newValidator(t *testing.T, cfg JWTConfig) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(cfg)
	require.NoError(t, err)
	return v
}

func newGenerator(t *testing.T, issuer string, audience []string, ttl time.Duration) *JWTGenerator {
	t.Helper()
	g, err := NewJWTGenerator(testSecret, issuer, audience, ttl)
	require.NoError(t, err)
	return g
}

func TestValidateTokenRoundTrip(t *testing.T) {
	g := newGenerator(t, "snipgraph", []string{"snipgraph-api"}, time.Hour)
	v := newValidator(t, JWTConfig{
		SecretKey: testSecret,
		Issuer:    "snipgraph",
		Audience:  []string{"snipgraph-api"},
	})

	token, err := g.GenerateToken("user-123", "user@example.com", []string{"editor"})
	require.NoError(t, err)

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, []string{"editor"}, claims.Roles)
}

func TestValidateTokenStripsBearerPrefix(t *testing.T) {
	g := newGenerator(t, "", nil, time.Hour)
	v := newValidator(t, JWTConfig{SecretKey: testSecret})

	token, err := g.GenerateToken("user-123", "", nil)
	require.NoError(t, err)

	claims, err := v.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestValidateTokenExpired(t *testing.T) {
	g := newGenerator(t, "", nil, -time.Minute)
	v := newValidator(t, JWTConfig{SecretKey: testSecret})

	token, err := g.GenerateToken("user-123", "", nil)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	g := newGenerator(t, "", nil, time.Hour)
	v := newValidator(t, JWTConfig{SecretKey: "a-different-secret"})

	token, err := g.GenerateToken("user-123", "", nil)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidateTokenIssuerMismatch(t *testing.T) {
	g := newGenerator(t, "someone-else", nil, time.Hour)
	v := newValidator(t, JWTConfig{SecretKey: testSecret, Issuer: "snipgraph"})

	token, err := g.GenerateToken("user-123", "", nil)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestValidateTokenAudienceMismatch(t *testing.T) {
	g := newGenerator(t, "", []string{"other-api"}, time.Hour)
	v := newValidator(t, JWTConfig{SecretKey: testSecret, Audience: []string{"snipgraph-api"}})

	token, err := g.GenerateToken("user-123", "", nil)
	require.NoError(t, err)

	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestValidateTokenMissing(t *testing.T) {
	v := newValidator(t, JWTConfig{SecretKey: testSecret})

	_, err := v.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = v.ValidateToken("Bearer ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	v := newValidator(t, JWTConfig{SecretKey: testSecret})

	_, err := v.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserContextRoundTrip(t *testing.T) {
	user := &UserContext{UserID: "user-123", Email: "user@example.com"}

	ctx := SetUserInContext(context.Background(), user)
	got, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = GetUserFromContext(context.Background())
	assert.Error(t, err)
}

func TestNewJWTValidatorRequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}
