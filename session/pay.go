package session

import (
	"fmt"
	"log"
	"time"

	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/backend"
	"github.com/arcnetwork/arc-processing/payment/types"
)

// AuthenticateAndPay runs the payment flow once the camera is live: capture
// a still frame, verify the user's face against backend, then create the
// merchant transaction. A negative verification result terminates the flow
// without any transaction being created. Failures of any later step
// terminate the session with a failed notification; success emits exactly
// one success notification carrying the transaction id and schedules
// auto-close of the popup
func (c *Controller) AuthenticateAndPay() error {
	c.mutex.Lock()
	if c.session == nil {
		c.mutex.Unlock()
		return ErrNoActiveSession
	}
	if c.session.Status != types.InitiatedSession {
		status := c.session.Status
		c.mutex.Unlock()
		return fmt.Errorf(
			"Payment session is %s, expected %s",
			status, types.InitiatedSession,
		)
	}
	amount := c.session.Amount
	c.mutex.Unlock()

	c.setStatusText("Authenticating...")

	// No payment attempt is ever made without a token
	token, err := c.authToken()
	if err != nil {
		c.setStatusText("Could not read login state. Please try again.")
		return err
	}
	if token == "" {
		c.setStatusText("Please login first.")
		return backend.ErrNotAuthenticated
	}

	frame, err := c.camera.CaptureFrame()
	if err != nil {
		c.failSession()
		return err
	}

	faceOk, err := c.backendAPI.FaceAuth(token, frame)
	if err != nil {
		c.failSession()
		return err
	}
	if !faceOk {
		c.setStatusText("Face authentication failed.")
		c.failSession()
		return nil
	}

	c.setStatusText("Processing payment...")
	c.mutex.Lock()
	c.session.Status = types.InProgressSession
	c.session.TransactionHash = ""
	c.mutex.Unlock()

	txHash, err := c.backendAPI.CreateMerchantPayment(
		token, c.merchantName, amount,
	)
	if err != nil {
		c.setStatusText("Payment failed: " + err.Error())
		c.failSession()
		return err
	}

	c.mutex.Lock()
	c.session.TransactionHash = txHash
	// Transaction is now the source of truth, not the in-memory state
	c.session.Status = types.SucceededSession
	c.mutex.Unlock()

	c.setStatusText(fmt.Sprintf(
		"Payment successful! Amount: %s %s Tx: %s",
		amount, arc.Currency, txHash,
	))
	c.refreshBalance(token)

	c.emitTerminal(types.SuccessStatusNotification(amount, txHash))

	// Give the merchant page time to process the success message before
	// the visible countdown starts. Neither timer is cancellable in this
	// version; closing the popup early goes through the teardown path
	// instead
	time.AfterFunc(c.settleDelay, c.runCloseCountdown)

	return nil
}

// failSession moves the session to its failed terminal state and notifies
// the merchant page. Any transaction hash reference is dropped: failed
// notifications never carry a hash
func (c *Controller) failSession() {
	c.mutex.Lock()
	if c.session == nil || c.session.Status.IsTerminal() {
		c.mutex.Unlock()
		return
	}
	c.session.Status = types.FailedSession
	c.session.TransactionHash = ""
	c.mutex.Unlock()

	c.emitTerminal(types.FailedStatusNotification())
}

func (c *Controller) refreshBalance(token string) {
	wallet, err := c.backendAPI.GetARCWallet(token)
	if err != nil {
		log.Printf("Warning: session: failed to refresh balance: %v", err)
		return
	}
	c.mutex.Lock()
	c.balance = wallet.Balance
	c.mutex.Unlock()
}

func (c *Controller) runCloseCountdown() {
	for remaining := c.countdownSeconds; remaining > 0; remaining-- {
		c.setStatusText(fmt.Sprintf(
			"Payment successful! Closing in %d seconds...", remaining,
		))
		time.Sleep(c.countdownTick)
	}
	c.requestClose()
}
