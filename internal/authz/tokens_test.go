package authz

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	tok, exp, err := tokens.Issue("u1", RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1", claims.Subject)
	assert.True(t, IsAdmin(claims.Role))
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	_, err := tokens.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := NewTokens("secret", -time.Hour).Issue("u1", RoleUser)
	require.NoError(t, err)
	_, err = tokens.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Within leeway.
	recent, _, err := NewTokens("secret", -time.Minute).Issue("u1", RoleUser)
	require.NoError(t, err)
	_, err = tokens.Parse(recent)
	assert.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u1", Role: RoleUser}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tokens.Parse(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken, "expiry is required")

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Parse(noneAlg)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("user"))
	assert.True(t, IsValidRole("admin"))
	assert.False(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole(""))
}
