package connectivity

import "sync"

// Monitor reports whether the network is reachable and announces transitions.
type Monitor interface {
	Online() bool
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Switch is a Monitor whose state is set explicitly.
type Switch struct {
	mu          sync.Mutex
	online      bool
	subscribers map[int]func(bool)
	nextID      int
}

var _ Monitor = (*Switch)(nil)

func NewSwitch(online bool) *Switch {
	return &Switch{
		online:      online,
		subscribers: make(map[int]func(bool)),
	}
}

func (s *Switch) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *Switch) Subscribe(fn func(online bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Set changes the state. Subscribers are called only when it actually changes,
// synchronously and outside the lock.
func (s *Switch) Set(online bool) {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return
	}
	s.online = online

	subscribers := make([]func(bool), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(online)
	}
}
