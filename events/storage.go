package events

import (
	"database/sql"
	"log"
	"sync"
)

type storedEvent = NotificationWithSeq

// EventStorage stores the sequence of emitted events together with delivery
// cursors telling which events were already pushed to websocket subscribers
// and which were delivered to the merchant HTTP callback
type EventStorage interface {
	StoreEvent(event Notification) (*storedEvent, error)
	GetEventsFromSeq(seq int) ([]*storedEvent, error)

	GetLastCallbackSentSeq() (int, error)
	StoreLastCallbackSentSeq(seq int) error
}

// NewEventStorage returns an EventStorage backed by given database or an
// in-memory one when db is nil
func NewEventStorage(db *sql.DB) EventStorage {
	if db == nil {
		log.Print("Warning: initializing in-memory event storage since no " +
			"db connection is passed. Note it should not be used in " +
			"production")
		// Memory seqs start at 0, so the cursor starts just before them
		return &InMemoryEventStorage{
			mutex:               &sync.Mutex{},
			events:              make([]*storedEvent, 0),
			lastCallbackSentSeq: -1,
		}
	}

	return &PostgresEventStorage{db: db}
}
