package storefake

import (
	"sync"

	"github.com/agrilink/agrilink-go/token"
)

var _ token.Store = (*FakeTokenStore)(nil)

// FakeTokenStore is an in-memory token store for tests. It also counts writes
// so tests can assert how often credentials were persisted or cleared.
type FakeTokenStore struct {
	pair   token.Pair
	Sets   int
	Clears int
	lock   sync.RWMutex
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{}
}

func (ts *FakeTokenStore) Pair() (token.Pair, error) {
	ts.lock.RLock()
	defer ts.lock.RUnlock()
	return ts.pair, nil
}

func (ts *FakeTokenStore) SetPair(pair token.Pair) error {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.pair = pair
	ts.Sets++
	return nil
}

func (ts *FakeTokenStore) Clear() error {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.pair = token.Pair{}
	ts.Clears++
	return nil
}
