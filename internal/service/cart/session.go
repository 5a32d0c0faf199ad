package cart

import "sync"

const (
	sessionCartKey   = "cart"
	sessionCouponKey = "coupon_id"
)

// Session is the per-shopper key-value store a Cart persists through.
// Implementations decide when the values reach the client.
type Session interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// MemorySession is a Session held in memory, used by tools and tests.
type MemorySession struct {
	mu     sync.Mutex
	values map[string]string
	dirty  bool
}

func NewMemorySession() *MemorySession {
	return &MemorySession{values: make(map[string]string)}
}

func (s *MemorySession) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemorySession) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.dirty = true
}

func (s *MemorySession) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Dirty reports whether the session changed since creation.
func (s *MemorySession) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}
