package coordinator

import (
	"log"

	"github.com/arcnetwork/arc-processing/browser"
	"github.com/arcnetwork/arc-processing/events"
	"github.com/arcnetwork/arc-processing/payment/types"
)

type internalRelayRequest struct {
	notification types.StatusNotification
	result       chan struct{}
}

type internalBadgeRequest struct {
	result chan struct{}
}

// RelayStatus delivers a payment status notification to the merchant page.
// Delivery is at-most-once and best-effort: failures are logged, never
// returned. A page is located by matching tabs against the configured
// merchant origins, falling back to the currently active tab. Delivery first
// tries the direct message channel and, when the page has no listener
// registered, falls back to injecting a one-shot rebroadcast through the
// page's own messaging channel. The badge is cleared unless the status is
// pending
func (c *Coordinator) RelayStatus(notification types.StatusNotification) {
	resultCh := make(chan struct{}, 1)
	c.relayQueue <- internalRelayRequest{
		notification: notification,
		result:       resultCh,
	}
	<-resultCh
}

func (c *Coordinator) handleRelayStatus(req internalRelayRequest) {
	defer func() { req.result <- struct{}{} }()

	notification := req.notification

	c.deliverToMerchantPage(notification)

	if notification.Status != types.PendingNotification {
		c.browser.ClearBadge()
		c.badgePendingGauge.Set(0)
		c.notify(events.BadgeUpdatedEvent, "")
	}

	c.notify(events.PaymentStatusEvent, notification)
}

func (c *Coordinator) deliverToMerchantPage(notification types.StatusNotification) {
	target := c.findMerchantTab()
	if target == nil {
		log.Printf(
			"Warning: coordinator: no page found to deliver %s status to",
			notification.Status,
		)
		c.relayUndeliveredCount.Inc()
		return
	}

	err := c.browser.SendMessage(target.ID, notification)
	if err == nil {
		return
	}

	log.Printf(
		"Warning: coordinator: direct delivery to tab %d failed (%v), "+
			"falling back to injected rebroadcast", target.ID, err,
	)
	c.relayFallbackCount.Inc()

	err = c.browser.InjectBroadcast(target.ID, notification)
	if err != nil {
		log.Printf(
			"Error: coordinator: fallback rebroadcast to tab %d failed: %v",
			target.ID, err,
		)
		c.relayUndeliveredCount.Inc()
	}
}

func (c *Coordinator) findMerchantTab() *browser.Tab {
	if len(c.merchantOrigins) > 0 {
		tabs := c.browser.QueryTabs(c.merchantOrigins)
		if len(tabs) > 0 {
			return tabs[0]
		}
	}
	// Last resort: the currently active tab
	return c.browser.ActiveTab()
}

// ClearBadge clears the visual payment indicator. It is idempotent
func (c *Coordinator) ClearBadge() {
	resultCh := make(chan struct{}, 1)
	c.clearBadgeQueue <- internalBadgeRequest{result: resultCh}
	<-resultCh
}

func (c *Coordinator) handleClearBadge(req internalBadgeRequest) {
	c.browser.ClearBadge()
	c.badgePendingGauge.Set(0)
	req.result <- struct{}{}
}
