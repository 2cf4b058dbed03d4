package events

import (
	"log"
	"time"

	"github.com/arcnetwork/arc-processing/settings"
)

type eventBrokerData struct {
	eventBroadcaster *broadcasterWithStorage

	callbackURL        string
	callbackBackoff    int
	callbackRetries    int
	callbackRetryDelay time.Duration
	callbackIsRetrying bool

	wsNotificationTrigger       chan struct{}
	callbackNotificationTrigger chan bool
}

// eventBroker is responsible for processing events - sending them to merchant
// pages via http callback and websocket and storing them in DB
type eventBroker struct {
	*eventBrokerData
	storage EventStorage
}

// NewEventBroker creates new instance of eventBroker. Merchant callback URL
// may be empty, in which case events are only delivered to websocket
// subscribers
func NewEventBroker(s settings.Settings, storage EventStorage) EventBroker {
	return &eventBroker{
		storage: storage,
		eventBrokerData: &eventBrokerData{
			eventBroadcaster:            newBroadcasterWithStorage(storage),
			callbackURL:                 s.GetString("merchant.callback.url"),
			callbackBackoff:             s.GetInt("merchant.callback.backoff"),
			wsNotificationTrigger:       make(chan struct{}, 3),
			callbackNotificationTrigger: make(chan bool, 3),
		},
	}
}

// Notify creates new event with given type and associated data. The event will
// be processed depending on its type.
func (e *eventBroker) Notify(eventType EventType, data interface{}) error {
	_, err := e.storage.StoreEvent(Notification{eventType, data})
	return err
}

// SendNotifications schedules delivery of stored events to websocket
// subscribers and the merchant HTTP callback. It never blocks: delivery
// happens in the broker goroutine started by Run
func (e *eventBroker) SendNotifications() {
	e.triggerWSNotificationSending()
	e.triggerCallbackNotificationSending()
}

func (e *eventBroker) triggerWSNotificationSending() {
	select {
	case e.wsNotificationTrigger <- struct{}{}:
	default:
	}
}

func (e *eventBroker) triggerCallbackNotificationSending() {
	select {
	case e.callbackNotificationTrigger <- false:
	default:
	}
}

func (e *eventBroker) triggerCallbackNotificationRetry() {
	// NB: blocking send so that retry is not lost
	e.callbackNotificationTrigger <- true
}

// SubscribeFromSeq allows to get old events starting with given sequence number
// and new ones. It returns a channel of SLICES of events. When loading old
// events from DB, all events that were fetched simultaneously will be written
// to a channel in one slice, not one by one. Otherwise, with large number of
// events channel may overflow. Subscriber should iterate over each slice to
// get all events.
// This method is used for websocket subscription
func (e *eventBroker) SubscribeFromSeq(seq int) chan []*NotificationWithSeq {
	subch := e.eventBroadcaster.SubscribeFromSeq(seq)
	e.triggerWSNotificationSending()
	return subch
}

// UnsubscribeFromSeq cancels subscription created by SubscribeFromSeq. Channel
// given to it as an argument must be one returned by SubscribeFromSeq
func (e *eventBroker) UnsubscribeFromSeq(eventChannel chan []*NotificationWithSeq) {
	e.eventBroadcaster.Unsubscribe(eventChannel)
}

// GetEventsFromSeq returns a slice of old events starting with given sequence
// number. This method is used by HTTP API endpoint /get_events
func (e *eventBroker) GetEventsFromSeq(seq int) ([]*NotificationWithSeq, error) {
	return e.storage.GetEventsFromSeq(seq)
}

func (e *eventBroker) sendWSNotifications() {
	err := e.eventBroadcaster.Broadcast()
	if err != nil {
		log.Printf("Error: event broker: failed to broadcast events: %v", err)
	}
}

// Run starts event broker. Most of the broker is event-driven, routine started
// by Run is the notifier loop, which works in background because the merchant
// callback has to retry requests with backoff and maintains a queue of
// requests
func (e *eventBroker) Run() error {
	for {
		select {
		case <-e.wsNotificationTrigger:
			e.sendWSNotifications()
		case isRetry := <-e.callbackNotificationTrigger:
			e.sendCallbackNotifications(isRetry)
		}
	}
}
