package transport

import (
	"net/http"

	"github.com/agrilink/agrilink-go/token"
)

var _ RequestStage = (*BearerStage)(nil)

// BearerStage attaches the current access token as a bearer credential.
// When the store holds no access token the request goes out without an
// Authorization header; no other mutation is made.
type BearerStage struct {
	store token.Store
}

func NewBearerStage(store token.Store) *BearerStage {
	return &BearerStage{store: store}
}

func (s *BearerStage) ProcessRequest(req *http.Request) (*http.Request, error) {
	pair, err := s.store.Pair()
	if err != nil {
		return req, err
	}
	if pair.Access != "" {
		req.Header.Set("Authorization", "Bearer "+pair.Access)
	}
	return req, nil
}
