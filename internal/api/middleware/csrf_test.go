package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

func csrfHandler() http.Handler {
	return CSRFProtection(testCSRFKey, false, "/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(CSRFToken(r)))
			return
		}
		_, _ = w.Write([]byte("cleared"))
	}))
}

func TestCSRFProtection_BlocksMissingToken(t *testing.T) {
	res := httptest.NewRecorder()
	csrfHandler().ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/clear", nil))

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.JSONEq(t, `{"error":"CSRF token validation failed"}`, res.Body.String())
}

func TestCSRFProtection_AcceptsHeaderToken(t *testing.T) {
	handler := csrfHandler()

	// Fetch the page to obtain the token and its cookie.
	get := httptest.NewRecorder()
	handler.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, get.Code)
	token := get.Body.String()
	require.NotEmpty(t, token)

	post := httptest.NewRequest(http.MethodPost, "/api/clear", strings.NewReader(""))
	post.Header.Set(CSRFHeader, token)
	for _, c := range get.Result().Cookies() {
		post.AddCookie(c)
	}

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, post)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "cleared", res.Body.String())
}

func TestCSRFProtection_AllowsSafeMethods(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		res := httptest.NewRecorder()
		csrfHandler().ServeHTTP(res, httptest.NewRequest(method, "/api/entries", nil))
		assert.Equal(t, http.StatusOK, res.Code, method)
	}
}
