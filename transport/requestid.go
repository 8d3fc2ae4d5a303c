package transport

import (
	"net/http"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestIDStage tags every outgoing request with a generated identifier so
// backend logs can be correlated with client logs. A retried request keeps
// its original identifier.
func RequestIDStage() RequestStage {
	return RequestStageFunc(func(req *http.Request) (*http.Request, error) {
		if req.Header.Get(requestIDHeader) == "" {
			req.Header.Set(requestIDHeader, uuid.NewString())
		}
		return req, nil
	})
}
