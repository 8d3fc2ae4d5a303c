package transport

import "sync"

// InvalidationSignal decouples the transport layer from navigation: when the
// session becomes unrecoverable the refresh stage emits on this signal, and
// the application shell translates it into a redirect to the login entry
// point. The transport itself never touches routing.
type InvalidationSignal struct {
	lock        sync.Mutex
	subscribers []func()
}

func NewInvalidationSignal() *InvalidationSignal {
	return &InvalidationSignal{}
}

// Subscribe registers a callback invoked on every emit. Callbacks run
// synchronously in emit order.
func (s *InvalidationSignal) Subscribe(fn func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Emit notifies all subscribers that the session has been invalidated.
func (s *InvalidationSignal) Emit() {
	s.lock.Lock()
	subscribers := make([]func(), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.lock.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}
