package types

import (
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/arcnetwork/arc-processing/arc"
)

// Session describes one payment attempt driven inside the popup. It is
// ephemeral: created when an order amount is read from the shared store and
// logically destroyed when the popup unloads or auto-close fires.
// TransactionHash is empty until backend accepts the transaction; a session
// in SucceededSession status always has it set
type Session struct {
	ID              uuid.UUID     `json:"id"`
	Amount          arc.Amount    `json:"amount"`
	Status          SessionStatus `json:"status"`
	TransactionHash string        `json:"transaction_hash,omitempty"`
}

// NewSession creates a session for given order amount in InitiatedSession
// status. Amount must be positive
func NewSession(amount arc.Amount) (*Session, error) {
	if err := arc.CheckPositive(amount); err != nil {
		return nil, err
	}
	return &Session{
		ID:     uuid.Must(uuid.NewV4()),
		Amount: amount,
		Status: InitiatedSession,
	}, nil
}

// CheckInvariants verifies structural session invariants: a succeeded
// session carries a transaction hash and a session that never reached
// in-progress has none
func (s *Session) CheckInvariants() error {
	if s.Status == SucceededSession && s.TransactionHash == "" {
		return fmt.Errorf(
			"Session %s is succeeded but has no transaction hash", s.ID,
		)
	}
	if s.Status == InitiatedSession && s.TransactionHash != "" {
		return fmt.Errorf(
			"Session %s is initiated but already has transaction hash %s",
			s.ID, s.TransactionHash,
		)
	}
	return nil
}
