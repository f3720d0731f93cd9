package middleware

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/dashlog/internal/api/problem"
	"github.com/Togather-Foundation/dashlog/internal/identity"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
)

// TokenVerifier checks a raw token and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (string, error)
}

// VerifyTokens rejects requests that do not carry a token the verifier
// accepts, taken from the Authorization header or the kcToken cookie.
func VerifyTokens(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := identity.TokenFromRequest(r)
			if err == nil {
				_, err = verifier.Verify(r.Context(), raw)
			}
			if err != nil {
				metrics.IngestRejectedTotal.WithLabelValues("unauthorized").Inc()
				problem.Write(w, r, http.StatusUnauthorized, "invalid or missing token", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
