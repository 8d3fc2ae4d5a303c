package transport

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	interrors "github.com/agrilink/agrilink-go/internal/errors"
	"github.com/agrilink/agrilink-go/token"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const refreshEndpoint = "token/refresh/"

// UnauthorizedPredicate decides whether a response is the authorization-expired
// signal that should trigger the refresh protocol.
type UnauthorizedPredicate func(res *http.Response) bool

// DefaultUnauthorized matches a 401 whose status text is "Unauthorized". The
// narrow text match mirrors the backend contract; inject a broader predicate
// if the backend's 401 reason phrasing changes.
func DefaultUnauthorized(res *http.Response) bool {
	return res.StatusCode == http.StatusUnauthorized && strings.HasSuffix(res.Status, "Unauthorized")
}

type retriedKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func isRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey{}).(bool)
	return retried
}

var _ ResponseStage = (*RefreshStage)(nil)

// RefreshStage repairs authorization-expired failures transparently: when a
// response matches the unauthorized predicate and a usable refresh token is
// on hand, it mints a new credential pair and replays the original request
// exactly once. Any terminal failure clears the token store and emits on the
// invalidation signal; the original caller gets an error satisfying
// errors.Is(err, ErrSessionInvalidated).
//
// Concurrent requests that all discover the same expired access token share a
// single in-flight refresh.
type RefreshStage struct {
	client       *Client
	store        token.Store
	signal       *InvalidationSignal
	unauthorized UnauthorizedPredicate
	metrics      *Metrics
	logger       zerolog.Logger
	group        singleflight.Group
}

// RefreshOption defines a function type to modify the RefreshStage instance.
type RefreshOption func(*RefreshStage)

// WithUnauthorizedPredicate replaces the default 401 match condition.
func WithUnauthorizedPredicate(p UnauthorizedPredicate) RefreshOption {
	return func(s *RefreshStage) {
		s.unauthorized = p
	}
}

// WithRefreshMetrics records refresh outcomes and retries on m.
func WithRefreshMetrics(m *Metrics) RefreshOption {
	return func(s *RefreshStage) {
		s.metrics = m
	}
}

// WithRefreshLogger sets the stage logger.
func WithRefreshLogger(logger zerolog.Logger) RefreshOption {
	return func(s *RefreshStage) {
		s.logger = logger
	}
}

// NewRefreshStage creates the refresh stage. It holds the client so a retried
// request re-enters the full pipeline; the refresh call itself goes straight
// to the underlying http.Client so it can never trigger another refresh.
//
// Register this as the last response stage: the retried request already runs
// the full pipeline, so any stage ordered after this one would observe the
// retry's response a second time.
func NewRefreshStage(client *Client, store token.Store, signal *InvalidationSignal, options ...RefreshOption) *RefreshStage {
	s := &RefreshStage{
		client:       client,
		store:        store,
		signal:       signal,
		unauthorized: DefaultUnauthorized,
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *RefreshStage) ProcessResponse(req *http.Request, res *http.Response, err error) (*http.Response, error) {
	if err != nil || res == nil {
		return res, err
	}
	if isRetried(req.Context()) {
		// At most one retry per original request; a 401 on the retry is final.
		return res, err
	}
	if !s.unauthorized(res) {
		return res, err
	}

	pair, perr := s.store.Pair()
	if perr != nil {
		return nil, s.invalidate(res, perr)
	}
	if pair.Refresh == "" {
		s.countRefresh(RefreshOutcomeNoToken)
		return nil, s.invalidate(res, interrors.ErrNoRefreshToken)
	}

	exp, derr := token.ExpiresAt(pair.Refresh)
	if derr != nil {
		s.countRefresh(RefreshOutcomeDecodeFailed)
		return nil, s.invalidate(res, derr)
	}
	if token.NowTimeFunc().After(exp) {
		// A refresh known to fail is not worth a network round trip.
		s.countRefresh(RefreshOutcomeSkipped)
		return nil, s.invalidate(res, interrors.ErrRefreshTokenExpired)
	}

	staleAccess := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	if rerr := s.ensureFresh(req.Context(), staleAccess); rerr != nil {
		s.countRefresh(RefreshOutcomeFailure)
		return nil, s.invalidate(res, rerr)
	}

	retryReq, cerr := cloneForRetry(req)
	if cerr != nil {
		return nil, cerr
	}

	drainAndClose(res)
	if s.metrics != nil {
		s.metrics.Retries.Inc()
	}
	s.logger.Debug().Str("path", req.URL.Path).Msg("replaying request with refreshed token")
	return s.client.execute(retryReq)
}

// ensureFresh refreshes the credential pair unless another caller already did
// so since staleAccess was issued. Concurrent callers coalesce onto a single
// refresh call.
func (s *RefreshStage) ensureFresh(ctx context.Context, staleAccess string) error {
	_, err, _ := s.group.Do("token-refresh", func() (any, error) {
		pair, err := s.store.Pair()
		if err != nil {
			return nil, err
		}
		if pair.Access != "" && pair.Access != staleAccess {
			// An earlier flight already rotated the pair.
			return nil, nil
		}

		fresh, err := s.refreshCall(ctx, pair.Refresh)
		if err != nil {
			return nil, err
		}
		if err := s.store.SetPair(fresh); err != nil {
			return nil, err
		}
		s.countRefresh(RefreshOutcomeSuccess)
		s.logger.Debug().Msg("access token refreshed")
		return nil, nil
	})
	return err
}

func (s *RefreshStage) refreshCall(ctx context.Context, refreshToken string) (token.Pair, error) {
	body, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return token.Pair{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.Resolve(refreshEndpoint), bytes.NewReader(body))
	if err != nil {
		return token.Pair{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := s.client.httpClient.Do(req)
	if err != nil {
		return token.Pair{}, err
	}
	defer drainAndClose(res)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return token.Pair{}, interrors.Wrapf(interrors.ErrRefreshRejected, "status %d", res.StatusCode)
	}

	var pair token.Pair
	if err := json.NewDecoder(res.Body).Decode(&pair); err != nil {
		return token.Pair{}, err
	}
	if pair.Access == "" {
		return token.Pair{}, interrors.Wrapf(interrors.ErrRefreshRejected, "response missing access token")
	}
	return pair, nil
}

// invalidate tears the session down: credentials are cleared as a unit and
// subscribers are notified so the shell can navigate to the login entry point.
func (s *RefreshStage) invalidate(res *http.Response, cause error) error {
	drainAndClose(res)
	if err := s.store.Clear(); err != nil {
		s.logger.Error().Err(err).Msg("clearing credentials")
	}
	s.logger.Info().Err(cause).Msg("session invalidated")
	s.signal.Emit()
	return stderrors.Join(interrors.ErrSessionInvalidated, cause)
}

func (s *RefreshStage) countRefresh(outcome string) {
	if s.metrics != nil {
		s.metrics.Refreshes.WithLabelValues(outcome).Inc()
	}
}

func cloneForRetry(req *http.Request) (*http.Request, error) {
	clone := req.Clone(markRetried(req.Context()))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}

func drainAndClose(res *http.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
