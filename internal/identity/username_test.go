package identity

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsignedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestClaimsUsername(t *testing.T) {
	source := ClaimsUsername{Fallback: "service-account"}
	ctx := context.Background()

	idToken := unsignedToken(t, jwt.MapClaims{"preferred_username": "ana"})
	assert.Equal(t, "ana", source.Username(ctx, TokenPair{AccessToken: "opaque", IDToken: idToken}))

	accessToken := unsignedToken(t, jwt.MapClaims{"preferred_username": "bo"})
	assert.Equal(t, "bo", source.Username(ctx, TokenPair{AccessToken: accessToken, IDToken: "opaque"}))

	noClaim := unsignedToken(t, jwt.MapClaims{"sub": "123"})
	assert.Equal(t, "service-account", source.Username(ctx, TokenPair{AccessToken: noClaim, IDToken: noClaim}))

	assert.Equal(t, "service-account", source.Username(ctx, TokenPair{}))
}
