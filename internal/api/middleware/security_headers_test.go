package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, res.Header().Get("Content-Security-Policy"), "script-src 'self'")
	assert.Empty(t, res.Header().Get("Strict-Transport-Security"), "no HSTS over plain HTTP")

	tlsReq := httptest.NewRequest(http.MethodGet, "/", nil)
	tlsReq.TLS = &tls.ConnectionState{}
	tlsRes := httptest.NewRecorder()
	handler.ServeHTTP(tlsRes, tlsReq)
	assert.NotEmpty(t, tlsRes.Header().Get("Strict-Transport-Security"))
}
