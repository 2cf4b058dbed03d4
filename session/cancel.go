package session

import (
	"log"
	"time"

	"github.com/arcnetwork/arc-processing/payment/types"
)

// Cancel handles explicit user-initiated cancellation. When a transaction
// was already created on backend, a best-effort cancel request is issued for
// it; its failure does not block the rest of cancellation. The merchant page
// is always notified and the popup is closed after a short delay
func (c *Controller) Cancel() error {
	c.mutex.Lock()
	if c.session == nil {
		c.mutex.Unlock()
		return ErrNoActiveSession
	}
	txHash := c.session.TransactionHash
	c.session.Status = types.CancelledSession
	c.session.TransactionHash = ""
	c.mutex.Unlock()

	c.cancelBackendTransaction(txHash)

	c.setStatusText("Payment cancelled by user")
	c.emitTerminal(types.CancelledStatusNotification(ReasonUserCancelled))

	time.AfterFunc(c.cancelCloseDelay, c.requestClose)
	return nil
}

// Teardown handles implicit cancellation when the popup context is being
// destroyed. It is registered on both the "about to unload" and "unloaded"
// lifecycle hooks and fires only when a payment was started but neither
// succeeded nor was explicitly resolved. The merchant page always gets a
// cancelled notification so it is never left waiting indefinitely; the
// backend cancel racing against context destruction is a known best-effort
// gap
func (c *Controller) Teardown(reason string) {
	c.mutex.Lock()
	if c.session == nil || c.session.Status.IsTerminal() {
		c.mutex.Unlock()
		return
	}
	txHash := c.session.TransactionHash
	c.session.Status = types.CancelledSession
	c.session.TransactionHash = ""
	c.mutex.Unlock()

	log.Printf("Popup closing during payment process, cancelling: %s", reason)

	c.cancelBackendTransaction(txHash)
	c.emitTerminal(types.CancelledStatusNotification(reason))
}

func (c *Controller) cancelBackendTransaction(txHash string) {
	if txHash == "" {
		return
	}
	token, err := c.authToken()
	if err != nil || token == "" {
		return
	}
	if err := c.backendAPI.CancelTransaction(token, txHash); err != nil {
		log.Printf(
			"Warning: session: backend cancel of tx %s failed: %v",
			txHash, err,
		)
	}
}
