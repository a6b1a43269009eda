package netif

import (
	"sync"
)

// Shared guards a single Registry so that concurrent callers get exclusive
// access for the duration of one operation. Reads serialize with writes.
type Shared struct {
	mu  sync.Mutex
	reg Registry
}

// NewShared wraps reg. reg must not be used directly afterwards.
func NewShared(reg Registry) *Shared {
	return &Shared{reg: reg}
}

// Do runs fn while holding the lock. The registry passed to fn must not be
// retained after fn returns.
func (s *Shared) Do(fn func(Registry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.reg)
}

func (s *Shared) All() ([]Interface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.All()
}

func (s *Shared) Get(name string) (*Interface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Get(name)
}

func (s *Shared) Create(name string) (Interface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Create(name)
}

func (s *Shared) Delete(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Delete(name)
}

func (s *Shared) Modify(iface Interface) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Modify(iface)
}
