package coordinator

import (
	"log"

	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/events"
	"github.com/arcnetwork/arc-processing/payment/types"
	"github.com/arcnetwork/arc-processing/storage"
)

type internalTriggerRequest struct {
	amount arc.Amount
	result chan error
}

// TriggerPayment starts the merchant payment flow for given amount: the
// amount is persisted into the shared store, the badge is set to the pending
// glyph and a fixed-size popup window is opened. The returned acknowledgement
// does not wait for window creation: persistence happens first, so if window
// creation fails the amount remains readable by a retry. Triggering again
// before the first amount is consumed overwrites it (last-write-wins,
// single-active-payment assumption)
func (c *Coordinator) TriggerPayment(amount arc.Amount) error {
	resultCh := make(chan error, 1)
	c.triggerQueue <- internalTriggerRequest{amount: amount, result: resultCh}
	return <-resultCh
}

func (c *Coordinator) handleTriggerPayment(req internalTriggerRequest) {
	if err := arc.CheckPositive(req.amount); err != nil {
		req.result <- err
		return
	}

	// Order matters: the payment-intent record must exist before any UI
	// appears, so that a failed window creation never drops the amount
	if err := storage.StoreOrderAmount(c.kvStore, req.amount); err != nil {
		req.result <- err
		return
	}

	c.browser.SetBadge(c.pendingBadge, c.pendingColor)
	c.badgePendingGauge.Set(1)
	c.paymentsTriggeredCount.Inc()
	c.notify(events.PaymentTriggeredEvent, types.TriggerNotification{
		Amount: req.amount,
	})
	c.notify(events.BadgeUpdatedEvent, c.pendingBadge)

	// Acknowledge now, window creation completes on its own
	req.result <- nil

	window, err := c.browser.CreateWindow(
		c.popupURL, c.popupWidth, c.popupHeight,
	)
	if err != nil {
		log.Printf(
			"Error: coordinator: failed to create popup window: %v", err,
		)
		return
	}
	if len(window.Tabs) > 0 {
		c.trackedTabID = window.Tabs[0].ID
		c.notify(events.TabOpenedEvent, types.TabNotification{
			TabID: c.trackedTabID,
		})
	}
}
