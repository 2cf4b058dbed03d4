package types

import (
	"encoding/json"

	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/events"
)

// TriggerNotification is data attached to a payment-triggered event
type TriggerNotification struct {
	Amount arc.Amount `json:"amount"`
}

// TabNotification is data attached to tab-opened and tab-closed events
type TabNotification struct {
	TabID  int  `json:"tabId"`
	Reused bool `json:"reused,omitempty"`
}

func init() {
	events.RegisterNotificationUnmarshaler(events.PaymentStatusEvent, func(b []byte) (interface{}, error) {
		var notification StatusNotification

		err := json.Unmarshal(b, &notification)
		return &notification, err
	})
	events.RegisterNotificationUnmarshaler(events.PaymentTriggeredEvent, func(b []byte) (interface{}, error) {
		var notification TriggerNotification

		err := json.Unmarshal(b, &notification)
		return &notification, err
	})
}
