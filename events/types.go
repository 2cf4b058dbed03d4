package events

import (
	"encoding/json"
	"errors"
)

// EventBroker is responsible for processing events - sending them to merchant
// pages via http callback and websocket and storing them in DB
type EventBroker interface {
	Notify(eventType EventType, data interface{}) error
	SubscribeFromSeq(seq int) chan []*NotificationWithSeq
	UnsubscribeFromSeq(chan []*NotificationWithSeq)
	GetEventsFromSeq(seq int) ([]*NotificationWithSeq, error)
	SendNotifications()

	Run() error
}

// Notification is a structure describing an event. It holds Type field telling
// what kind of event it is and Data which is an arbitrary data attached to
// this event.
type Notification struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// NotificationWithSeq is same as Notification, but also has a sequence number.
// NotificationWithSeq is produced when event is stored in DB. Sequence number
// can be used to uniquely identify events and determine their order. Clients
// can use them to tell if they have already seen a particular event or, on the
// contrary, have missed some events - and to request only needed portion of
// events.
type NotificationWithSeq struct {
	Notification
	Seq int `json:"seq"`
}

// EventType is a enum describing type of event.
type EventType int

const (
	// PaymentTriggeredEvent is emitted when a merchant page triggers a
	// payment and the order amount is persisted into the shared store
	PaymentTriggeredEvent EventType = iota

	// PaymentStatusEvent is emitted for every payment status notification
	// relayed to the merchant page. Its data is a
	// payment/types.StatusNotification
	PaymentStatusEvent

	// TabOpenedEvent is emitted when the coordinator opens or reuses an
	// extension surface tab
	TabOpenedEvent

	// TabClosedEvent is emitted when the coordinator closes the tracked
	// extension surface tab
	TabClosedEvent

	// BadgeUpdatedEvent is emitted when the badge changes state. It is not
	// reported via HTTP callback because badge state is of no interest to
	// merchant pages
	BadgeUpdatedEvent

	// InvalidEvent is for convertion from other types when value of source
	// type is invalid
	InvalidEvent
)

var eventTypeToStringMap = map[EventType]string{
	PaymentTriggeredEvent: "payment-triggered",
	PaymentStatusEvent:    "payment-status",
	TabOpenedEvent:        "tab-opened",
	TabClosedEvent:        "tab-closed",
	BadgeUpdatedEvent:     "badge-updated",
}

var stringToEventTypeMap = make(map[string]EventType)

var notificationUnmarshalers = make(map[EventType]func([]byte) (interface{}, error))

func init() {
	for eventType, eventTypeStr := range eventTypeToStringMap {
		stringToEventTypeMap[eventTypeStr] = eventType
	}
}

func (et EventType) String() string {
	eventTypeStr, ok := eventTypeToStringMap[et]
	if !ok {
		return "invalid"
	}
	return eventTypeStr
}

// EventTypeFromString converts string representation of event type to EventType
func EventTypeFromString(eventTypeStr string) (EventType, error) {
	et, ok := stringToEventTypeMap[eventTypeStr]
	if !ok {
		return InvalidEvent, errors.New(
			"Failed to convert string '" + eventTypeStr + "' to event type",
		)
	}
	return et, nil
}

// MarshalJSON serializes EventType to JSON. Resulting JSON value is simply
// a string representation of event type
func (et EventType) MarshalJSON() ([]byte, error) {
	return []byte("\"" + et.String() + "\""), nil
}

// UnmarshalJSON deserializes EventType from JSON. Resulting value is mapped
// from string representation of event type
func (et *EventType) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}
	*et, err = EventTypeFromString(j)
	return err
}

// RegisterNotificationUnmarshaler allows other packages to attach a typed
// unmarshaler for data of their event types, so that clients decoding event
// feeds get concrete types instead of generic maps
func RegisterNotificationUnmarshaler(et EventType, unmarshaler func([]byte) (interface{}, error)) {
	notificationUnmarshalers[et] = unmarshaler
}

type genericNotificationData struct {
	eventType  EventType
	resultData interface{}
}

func (n *genericNotificationData) UnmarshalJSON(b []byte) error {
	unmarshaler, ok := notificationUnmarshalers[n.eventType]

	if !ok {
		var genericData interface{}
		err := json.Unmarshal(b, &genericData)
		if err != nil {
			return err
		}
		n.resultData = genericData
		return nil
	}
	data, err := unmarshaler(b)
	if err != nil {
		return err
	}
	n.resultData = data
	return nil
}

func (n *NotificationWithSeq) UnmarshalJSON(b []byte) error {
	var notificationWithoutData struct {
		Type EventType `json:"type"`
		Seq  int       `json:"seq"`
	}
	err := json.Unmarshal(b, &notificationWithoutData)

	if err != nil {
		return err
	}

	n.Type = notificationWithoutData.Type
	n.Seq = notificationWithoutData.Seq

	var notificationWithGenericData struct {
		Data genericNotificationData `json:"data"`
	}
	notificationWithGenericData.Data.eventType = n.Type
	err = json.Unmarshal(b, &notificationWithGenericData)
	if err != nil {
		return err
	}
	n.Data = notificationWithGenericData.Data.resultData
	return nil
}
