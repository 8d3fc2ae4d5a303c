package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is any non-2xx backend response, decoded against the backend's
// error conventions: login returns {"error": ...} or {"detail": ...},
// registration returns a per-field error map. The raw body is kept so callers
// can fall back to their own presentation.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Fields     map[string][]string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Message)
	}
	return e.Status
}

// Unauthorized reports whether the response carried the 401 status.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func decodeAPIError(res *http.Response, payload []byte) *APIError {
	apiErr := &APIError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Body:       payload,
	}

	var envelope struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil {
		if envelope.Error != "" {
			apiErr.Message = envelope.Error
		} else if envelope.Detail != "" {
			apiErr.Message = envelope.Detail
		}
	}

	if apiErr.Message == "" {
		// Registration failures come back as {"field": ["problem", ...]}.
		var fields map[string][]string
		if err := json.Unmarshal(payload, &fields); err == nil && len(fields) > 0 {
			apiErr.Fields = fields
		}
	}

	return apiErr
}
