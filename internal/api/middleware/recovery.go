package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Togather-Foundation/dashlog/internal/api/problem"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
	"github.com/rs/zerolog"
)

// Recovery turns a panic in a handler into a 500 whose error text is the
// panic value.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			metrics.IngestRejectedTotal.WithLabelValues("panic").Inc()
			zerolog.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			problem.Write(w, r, http.StatusInternalServerError, fmt.Sprint(rec), nil)
		}()
		next.ServeHTTP(w, r)
	})
}
