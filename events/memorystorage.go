package events

import (
	"sync"

	"github.com/arcnetwork/arc-processing/util"
)

// InMemoryEventStorage stores events in memory, simply using a slice of
// pointers. It implements EventStorage interface. InMemoryEventStorage does
// not provide any kind of persistence, safety or efficiency and is meant for
// testing and single-process deployments. PostgresEventStorage should be
// used in production
type InMemoryEventStorage struct {
	mutex  *sync.Mutex
	events []*storedEvent

	lastCallbackSentSeq int
}

// StoreEvent adds event to storage. Implementation is naive: it actually just
// appends event to a slice and index in that slice becomes its sequence number.
// Retuned storedEvent has the same type and data as event arg, but also has a
// sequence number.
func (s *InMemoryEventStorage) StoreEvent(event Notification) (*storedEvent, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	eventWithSeq := &storedEvent{event, len(s.events)}
	s.events = append(s.events, eventWithSeq)

	return eventWithSeq, nil
}

// GetEventsFromSeq returns events from storage with sequence number greater or
// equal to given one. The seq is clamped to the stored range, so negative
// values from remote subscribers read from the beginning instead of slicing
// out of bounds. It returns a subslice of internal storage, so modifications
// of events returned will change events in storage.
func (s *InMemoryEventStorage) GetEventsFromSeq(seq int) ([]*storedEvent, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	seq = util.Min(util.Max(seq, 0), len(s.events))
	return s.events[seq:], nil
}

func (s *InMemoryEventStorage) GetLastCallbackSentSeq() (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.lastCallbackSentSeq, nil
}

func (s *InMemoryEventStorage) StoreLastCallbackSentSeq(seq int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.lastCallbackSentSeq = seq
	return nil
}
