// Package problem writes JSON error bodies of the form {"error": "..."}.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Body is the error payload every endpoint returns.
type Body struct {
	Error string `json:"error"`
}

// Write sends status with message as the error text. err, when non-nil, is
// logged from the request logger: warn for 4xx, error for 5xx. It is never
// included in the response unless the caller puts it in message.
func Write(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if r != nil {
		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}
		if event != nil {
			event.Err(err).
				Int("status", status).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg(message)
		}
	}

	WriteBody(w, status, Body{Error: message})
}

// WriteBody encodes body as JSON with the given status.
func WriteBody(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
