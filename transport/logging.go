package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type startTimeKey struct{}

var (
	_ RequestStage  = (*LoggingStage)(nil)
	_ ResponseStage = (*LoggingStage)(nil)
)

// LoggingStage emits one debug line per request attempt. A refreshed retry
// re-enters the pipeline, so both the failed attempt and the retry are logged.
type LoggingStage struct {
	logger zerolog.Logger
}

func NewLoggingStage(logger zerolog.Logger) *LoggingStage {
	return &LoggingStage{logger: logger}
}

func (s *LoggingStage) ProcessRequest(req *http.Request) (*http.Request, error) {
	ctx := context.WithValue(req.Context(), startTimeKey{}, time.Now())
	return req.WithContext(ctx), nil
}

func (s *LoggingStage) ProcessResponse(req *http.Request, res *http.Response, err error) (*http.Response, error) {
	event := s.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path)

	if start, ok := req.Context().Value(startTimeKey{}).(time.Time); ok {
		event = event.Dur("duration", time.Since(start))
	}
	if id := req.Header.Get(requestIDHeader); id != "" {
		event = event.Str("request_id", id)
	}

	switch {
	case err != nil:
		event.Err(err).Msg("request failed")
	case res != nil:
		event.Int("status", res.StatusCode).Msg("request completed")
	}
	return res, err
}
