package monitor

import (
	"sync"

	"github.com/MKhiriev/go-offline-sync/internal/events"
)

// Signal is the binary connectivity state consulted by the repository
// facade. It publishes [events.Online] and [events.Offline] on transitions
// only.
type Signal struct {
	mu        sync.Mutex
	online    bool
	publisher events.Publisher
}

// NewSignal returns a signal in the given initial state.
func NewSignal(online bool, publisher events.Publisher) *Signal {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Signal{online: online, publisher: publisher}
}

// IsOnline reports the current state.
func (s *Signal) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline changes the state and reports whether it was a transition.
func (s *Signal) SetOnline(online bool) bool {
	s.mu.Lock()
	changed := s.online != online
	s.online = online
	s.mu.Unlock()

	if !changed {
		return false
	}

	kind := events.Offline
	if online {
		kind = events.Online
	}
	s.publisher.Publish(events.Event{Kind: kind})
	return true
}
