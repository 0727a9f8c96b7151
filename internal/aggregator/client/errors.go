package client

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"insurance_portal_backend/platform/sanitize"
)

const maxMessageRunes = 300

// APIError is a non-2xx response from the aggregation backend.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("aggregator %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message())
}

// Message extracts the human readable message from the response body.
// The backend uses {"message": ...}, {"error": ...} or {"errors": [...]}
// depending on the endpoint; anything else is returned as sanitized text.
func (e *APIError) Message() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("status %d", e.Status)
	}

	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
		Errors  []any  `json:"errors"`
	}
	if err := json.Unmarshal(e.Body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := flattenMessage(payload.Error); msg != "" {
			return msg
		}
		parts := make([]string, 0, len(payload.Errors))
		for _, item := range payload.Errors {
			if msg := flattenMessage(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	return sanitize.Truncate(sanitize.Text(string(e.Body)), maxMessageRunes)
}

// RawBody returns the response body as JSON when it is JSON, otherwise as text.
// Session-fatal errors surface it verbatim to the user.
func (e *APIError) RawBody() any {
	if len(e.Body) == 0 {
		return nil
	}
	if json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	return sanitize.Truncate(sanitize.Text(string(e.Body)), maxMessageRunes)
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func flattenMessage(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]any:
		for _, key := range []string{"message", "detail", "description"} {
			if text, ok := typed[key].(string); ok && strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text)
			}
		}
	}
	return ""
}
