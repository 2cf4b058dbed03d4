package types

import (
	"encoding/json"
	"errors"

	"github.com/arcnetwork/arc-processing/arc"
)

// NotificationStatus is a enum describing status field of a merchant-facing
// payment status notification.
type NotificationStatus int

const (
	// SuccessNotification reports that payment completed and a transaction
	// was committed on backend. Notifications with this status always carry
	// a transaction id
	SuccessNotification NotificationStatus = iota

	// FailedNotification reports that payment terminated without a committed
	// transaction: face verification was negative or backend rejected the
	// transaction
	FailedNotification

	// CancelledNotification reports that payment was cancelled, either
	// explicitly by user or implicitly by popup teardown
	CancelledNotification

	// PendingNotification reports that payment is still in flight. It is the
	// only non-terminal status and does not end the session's notification
	// obligation
	PendingNotification

	// InvalidNotification is a status value generated when converting status
	// from other type and value of source type is invalid
	InvalidNotification
)

var notificationStatusToStringMap = map[NotificationStatus]string{
	SuccessNotification:   "success",
	FailedNotification:    "failed",
	CancelledNotification: "cancelled",
	PendingNotification:   "pending",
}

var stringToNotificationStatusMap = make(map[string]NotificationStatus)

func init() {
	for status, statusStr := range notificationStatusToStringMap {
		stringToNotificationStatusMap[statusStr] = status
	}
}

func (ns NotificationStatus) String() string {
	statusStr, ok := notificationStatusToStringMap[ns]
	if !ok {
		return "invalid"
	}
	return statusStr
}

// IsTerminal tells whether this status ends a payment session's notification
// obligation. Pending is the only non-terminal status
func (ns NotificationStatus) IsTerminal() bool {
	switch ns {
	case SuccessNotification, FailedNotification, CancelledNotification:
		return true
	}
	return false
}

// NotificationStatusFromString converts string representation of notification
// status to NotificationStatus
func NotificationStatusFromString(statusStr string) (NotificationStatus, error) {
	ns, ok := stringToNotificationStatusMap[statusStr]
	if !ok {
		return InvalidNotification, errors.New(
			"Failed to convert string '" + statusStr +
				"' to notification status",
		)
	}
	return ns, nil
}

// MarshalJSON serializes NotificationStatus to JSON as its string
// representation
func (ns NotificationStatus) MarshalJSON() ([]byte, error) {
	return []byte("\"" + ns.String() + "\""), nil
}

// UnmarshalJSON deserializes NotificationStatus from JSON
func (ns *NotificationStatus) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}
	*ns, err = NotificationStatusFromString(j)
	return err
}

// StatusNotification is a value object sent from the extension to the
// merchant page to report the outcome of a payment. It is derived 1:1 from a
// payment session transition, never persisted by the session and always
// transient. Amount, TransactionID and Currency are only set for success,
// Reason is only set for cancellations
type StatusNotification struct {
	Status        NotificationStatus `json:"status"`
	Amount        *arc.Amount        `json:"amount,omitempty"`
	TransactionID string             `json:"transactionId,omitempty"`
	Currency      string             `json:"currency,omitempty"`
	Reason        string             `json:"reason,omitempty"`
}

// Key uniquely identifies a notification for consumer-side deduplication.
// Because delivery is two-tier (direct message, then injected rebroadcast),
// the same notification can reach a page twice and receivers drop repeats
// with the same key
func (n StatusNotification) Key() string {
	return n.Status.String() + ":" + n.TransactionID
}

// SuccessStatusNotification builds a notification for a committed
// transaction
func SuccessStatusNotification(amount arc.Amount, transactionID string) StatusNotification {
	return StatusNotification{
		Status:        SuccessNotification,
		Amount:        &amount,
		TransactionID: transactionID,
		Currency:      arc.Currency,
	}
}

// FailedStatusNotification builds a notification for a payment that
// terminated without a committed transaction
func FailedStatusNotification() StatusNotification {
	return StatusNotification{Status: FailedNotification}
}

// CancelledStatusNotification builds a notification for a cancelled payment
// with a context-specific reason
func CancelledStatusNotification(reason string) StatusNotification {
	return StatusNotification{Status: CancelledNotification, Reason: reason}
}
