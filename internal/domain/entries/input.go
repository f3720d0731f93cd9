package entries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MissingFieldsMessage is the client-facing text for an incomplete payload.
const MissingFieldsMessage = "Missing required fields: app_name, username, timestamp"

var ErrMissingFields = errors.New("missing required fields")

var requiredFields = []string{"app_name", "username", "timestamp"}

// ParseInput decodes an ingestion payload. The body must be a JSON object
// holding app_name, username and timestamp with non-null values; anything
// else yields ErrMissingFields. Malformed JSON is returned as a decode error.
// Values are stored as text: numbers keep their literal form.
func ParseInput(body io.Reader) (Entry, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Entry{}, fmt.Errorf("decode payload: %w", err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Entry{}, ErrMissingFields
	}

	values := make(map[string]string, len(requiredFields))
	for _, field := range requiredFields {
		v, present := obj[field]
		if !present || v == nil {
			return Entry{}, ErrMissingFields
		}
		text, err := coerce(v)
		if err != nil {
			return Entry{}, fmt.Errorf("field %s: %w", field, err)
		}
		values[field] = text
	}

	return Entry{
		AppName:   values["app_name"],
		Username:  values["username"],
		Timestamp: values["timestamp"],
	}, nil
}

func coerce(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return "", err
		}
		return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
	}
}
