package middleware

import (
	"net/http"

	"github.com/Togather-Foundation/dashlog/internal/api/problem"
	"github.com/gorilla/csrf"
)

// CSRFHeader is the request header the dashboard sends the token in.
const CSRFHeader = "X-CSRF-Token"

// CSRFProtection guards state-changing dashboard calls with gorilla/csrf's
// double-submit cookie. The token is rendered into the page and echoed back
// in CSRFHeader. When secure is false, plain-HTTP requests are marked as
// such so the strict HTTPS referer check does not reject them.
func CSRFProtection(authKey []byte, secure bool, cookiePath string) func(http.Handler) http.Handler {
	if cookiePath == "" {
		cookiePath = "/"
	}
	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path(cookiePath),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	problem.Write(w, r, http.StatusForbidden, "CSRF token validation failed", csrf.FailureReason(r))
}

// CSRFToken returns the masked token for the current request.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}
