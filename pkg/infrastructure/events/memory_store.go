package events

import (
	"context"
	"sync"
)

// InMemoryEventStore keeps published events in process, numbered per stream. With a positive
// retention only the newest events are kept.
type InMemoryEventStore struct {
	mu        sync.RWMutex
	retention int
	versions  map[string]int
	log       []Event
	dropped   int
}

// NewInMemoryEventStore creates an unbounded store
func NewInMemoryEventStore() *InMemoryEventStore {
	return NewBoundedEventStore(0)
}

// NewBoundedEventStore creates a store keeping at most retention events; zero keeps all of them
func NewBoundedEventStore(retention int) *InMemoryEventStore {
	return &InMemoryEventStore{
		retention: retention,
		versions:  make(map[string]int),
	}
}

// Publish records the event under the next version of its stream
func (s *InMemoryEventStore) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := event.StreamID()
	s.versions[stream]++
	s.log = append(s.log, BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       stream,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: s.versions[stream],
	})

	if s.retention > 0 && len(s.log) > s.retention {
		n := len(s.log) - s.retention
		s.log = append([]Event(nil), s.log[n:]...)
		s.dropped += n
	}
	return nil
}

// ReadEvents returns the retained events of one stream starting at fromVersion
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0)
	for _, e := range s.log {
		if e.StreamID() == streamID && e.Version() >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadAllEvents returns the events at or after the global position. Positions count every
// event ever published, including the ones retention dropped.
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := fromPosition - s.dropped
	if start < 0 {
		start = 0
	}
	if start >= len(s.log) {
		return []Event{}, nil
	}
	return append([]Event(nil), s.log[start:]...), nil
}

// EventsOfType returns every retained event of the given type in publish order
func (s *InMemoryEventStore) EventsOfType(eventType string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0)
	for _, e := range s.log {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Position is the number of events published so far
func (s *InMemoryEventStore) Position() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped + len(s.log)
}
