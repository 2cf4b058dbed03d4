package types

import (
	"encoding/json"
	"errors"
)

// SessionStatus is a enum describing current state of a payment session.
type SessionStatus int

const (
	// InitiatedSession is a status session gets when an order amount was
	// found in the shared store on popup load. Camera is being acquired and
	// the user has not yet confirmed the payment
	InitiatedSession SessionStatus = iota

	// InProgressSession is a status session gets after face verification
	// succeeded and a transaction creation request was sent to backend, but
	// has not resolved yet
	InProgressSession

	// SucceededSession is a status session gets when backend accepted the
	// transaction and returned a transaction hash. Sessions in this status
	// always have TransactionHash set
	SucceededSession

	// FailedSession is a status session gets when face verification was
	// negative or backend rejected or errored on transaction creation
	FailedSession

	// CancelledSession is a status session gets when user cancelled payment
	// explicitly or the popup was torn down before the payment resolved
	CancelledSession

	// InvalidSession is a status value generated when converting status
	// from other type and value of source type is invalid
	InvalidSession
)

var sessionStatusToStringMap = map[SessionStatus]string{
	InitiatedSession:  "initiated",
	InProgressSession: "in-progress",
	SucceededSession:  "succeeded",
	FailedSession:     "failed",
	CancelledSession:  "cancelled",
}

var stringToSessionStatusMap = make(map[string]SessionStatus)

func init() {
	for status, statusStr := range sessionStatusToStringMap {
		stringToSessionStatusMap[statusStr] = status
	}
}

func (ss SessionStatus) String() string {
	statusStr, ok := sessionStatusToStringMap[ss]
	if !ok {
		return "invalid"
	}
	return statusStr
}

// IsTerminal tells whether session reached a state from which no further
// payment activity is possible. Exactly one terminal merchant notification
// corresponds to each terminal session state
func (ss SessionStatus) IsTerminal() bool {
	switch ss {
	case SucceededSession, FailedSession, CancelledSession:
		return true
	}
	return false
}

// SessionStatusFromString converts string representation of session status
// to SessionStatus
func SessionStatusFromString(statusStr string) (SessionStatus, error) {
	ss, ok := stringToSessionStatusMap[statusStr]
	if !ok {
		return InvalidSession, errors.New(
			"Failed to convert string '" + statusStr + "' to session status",
		)
	}
	return ss, nil
}

// MarshalJSON serializes SessionStatus to JSON. Resulting JSON value is
// simply a string representation of session status
func (ss SessionStatus) MarshalJSON() ([]byte, error) {
	return []byte("\"" + ss.String() + "\""), nil
}

// UnmarshalJSON deserializes SessionStatus from JSON. Resulting value is
// mapped from string representation of session status
func (ss *SessionStatus) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}
	*ss, err = SessionStatusFromString(j)
	return err
}
