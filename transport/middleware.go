package transport

import "net/http"

// RequestStage transforms an outgoing request before it is sent. Stages are
// applied in registration order; returning an error aborts the call.
type RequestStage interface {
	ProcessRequest(req *http.Request) (*http.Request, error)
}

// ResponseStage transforms the response (or transport error) of a call.
// Stages are applied in registration order; a stage may replace the response
// entirely, which is how the refresh stage substitutes the retried result.
type ResponseStage interface {
	ProcessResponse(req *http.Request, res *http.Response, err error) (*http.Response, error)
}

// RequestStageFunc adapts a function to the RequestStage interface.
type RequestStageFunc func(req *http.Request) (*http.Request, error)

func (f RequestStageFunc) ProcessRequest(req *http.Request) (*http.Request, error) {
	return f(req)
}

// ResponseStageFunc adapts a function to the ResponseStage interface.
type ResponseStageFunc func(req *http.Request, res *http.Response, err error) (*http.Response, error)

func (f ResponseStageFunc) ProcessResponse(req *http.Request, res *http.Response, err error) (*http.Response, error) {
	return f(req, res, err)
}
