package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubVerifier struct{ valid string }

func (s stubVerifier) Verify(_ context.Context, raw string) (string, error) {
	if raw == s.valid {
		return "user-1", nil
	}
	return "", errors.New("bad signature")
}

func TestVerifyTokens(t *testing.T) {
	handler := VerifyTokens(stubVerifier{valid: "good"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"bearer accepted", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"cookie accepted", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "kcToken", Value: base64.StdEncoding.EncodeToString([]byte("good"))})
		}, http.StatusOK},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") }, http.StatusUnauthorized},
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/add_entry", nil)
			tt.setup(req)
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			assert.Equal(t, tt.status, res.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"invalid or missing token"}`, res.Body.String())
			}
		})
	}
}
