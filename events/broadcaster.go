package events

import (
	"log"
	"sync"

	"github.com/arcnetwork/arc-processing/util"
)

type broadcastedEvent = *NotificationWithSeq
type broadcastedEventSequence = []broadcastedEvent

const channelSize = 10000

// broadcasterWithStorage fans stored events out to websocket subscribers.
// Each subscriber has its own seq cursor, so a late subscriber first gets
// backlog from storage and then live events. Events are delivered in slices,
// a subscriber iterates over each slice to get single events
type broadcasterWithStorage struct {
	mu sync.Mutex

	storage     EventStorage
	subscribers map[chan broadcastedEventSequence]int

	// earliestWantedSeq is the minimum of all subscriber cursors, events
	// before it are never fetched from storage again
	earliestWantedSeq int
}

func newBroadcasterWithStorage(storage EventStorage) *broadcasterWithStorage {
	return &broadcasterWithStorage{
		storage:     storage,
		subscribers: make(map[chan broadcastedEventSequence]int),
	}
}

// Broadcast pushes all stored events that subscribers did not see yet to
// their channels. A subscriber whose channel is full is disconnected rather
// than slowing everyone else down: it can resubscribe from its last seq
func (b *broadcasterWithStorage) Broadcast() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pendingEvents, err := b.storage.GetEventsFromSeq(b.earliestWantedSeq)

	if err != nil {
		return err
	}

	if len(pendingEvents) == 0 {
		return nil
	}

	nextSeq := pendingEvents[len(pendingEvents)-1].Seq + 1

	for ch, wantedSeq := range b.subscribers {
		for i, event := range pendingEvents {
			if event.Seq < wantedSeq {
				continue
			}
			select {
			case ch <- pendingEvents[i:]:
				b.subscribers[ch] = nextSeq
			default:
				log.Printf(
					"ws event broadcaster: disconnecting client due to " +
						"overflow of his channel")
				close(ch)
				delete(b.subscribers, ch)
			}
			break
		}
	}

	b.earliestWantedSeq = nextSeq

	return nil
}

func (b *broadcasterWithStorage) SubscribeFromSeq(seq int) chan broadcastedEventSequence {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Remote subscribers can ask for any seq, a negative one means "from
	// the beginning"
	seq = util.Max(seq, 0)

	ch := make(chan broadcastedEventSequence, channelSize)
	b.subscribers[ch] = seq
	b.earliestWantedSeq = util.Min(seq, b.earliestWantedSeq)

	return ch
}

func (b *broadcasterWithStorage) Unsubscribe(subch chan broadcastedEventSequence) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.subscribers[subch]
	if !ok {
		return
	}

	close(subch)
	delete(b.subscribers, subch)
}

func (b *broadcasterWithStorage) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, ch)
	}
}
