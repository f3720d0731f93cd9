package identity

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// UsernameSource resolves the user an entry is attributed to.
type UsernameSource interface {
	Username(ctx context.Context, tokens TokenPair) string
}

// ClaimsUsername reads preferred_username from the id token without
// verifying it; the token came straight from the provider. Fallback is used
// when the claim is absent or the token is opaque.
type ClaimsUsername struct {
	Fallback string
}

func (s ClaimsUsername) Username(_ context.Context, tokens TokenPair) string {
	if name := preferredUsername(tokens.IDToken); name != "" {
		return name
	}
	if name := preferredUsername(tokens.AccessToken); name != "" {
		return name
	}
	return s.Fallback
}

func preferredUsername(raw string) string {
	if raw == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	name, _ := claims["preferred_username"].(string)
	return name
}
