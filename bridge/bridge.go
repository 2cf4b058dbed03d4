package bridge

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/browser"
	"github.com/arcnetwork/arc-processing/payment/types"
)

var (
	// ErrPaymentAlreadyPending is returned by RequestPayment when an earlier
	// payment request has not reached a terminal status yet. The merchant
	// page holds at most one in-flight payment
	ErrPaymentAlreadyPending = errors.New(
		"Merchant page already has a pending payment",
	)

	// ErrResultTimeout is returned by AwaitResult when no terminal status
	// arrives within given timeout
	ErrResultTimeout = errors.New("Timed out waiting for payment result")
)

// PaymentInitiator starts a payment for the merchant page. Coordinator
// satisfies it
type PaymentInitiator interface {
	TriggerPayment(amount arc.Amount) error
}

// Bridge is the merchant-page endpoint of the payment protocol. It requests
// payments through the coordinator and consumes status notifications from
// both delivery paths of the browser, the direct runtime message channel and
// the injected page broadcast channel. Because a notification may arrive on
// both paths, or twice on one, every notification is deduplicated by its key
// and a pending payment is resolved by the first terminal status only
type Bridge struct {
	mutex sync.Mutex

	initiator PaymentInitiator
	tabID     int

	directMessages <-chan types.StatusNotification
	pageMessages   <-chan types.StatusNotification

	seen     map[string]struct{}
	awaiting bool
	result   chan types.StatusNotification

	stopTrigger chan struct{}
}

// NewBridge attaches a merchant bridge to given tab. It registers the
// direct-message listener right away so coordinator deliveries to this tab
// succeed without the broadcast fallback
func NewBridge(b *browser.MemoryBrowser, initiator PaymentInitiator, tabID int) (*Bridge, error) {
	directMessages, err := b.Listen(tabID)
	if err != nil {
		return nil, err
	}
	pageMessages, err := b.PageMessages(tabID)
	if err != nil {
		return nil, err
	}
	return &Bridge{
		initiator:      initiator,
		tabID:          tabID,
		directMessages: directMessages,
		pageMessages:   pageMessages,
		seen:           make(map[string]struct{}),
		result:         make(chan types.StatusNotification, 1),
		stopTrigger:    make(chan struct{}),
	}, nil
}

// Run consumes status notifications from both delivery channels until Stop
// is called or the tab is removed
func (b *Bridge) Run() error {
	directMessages, pageMessages := b.directMessages, b.pageMessages
	for directMessages != nil || pageMessages != nil {
		select {
		case notification, ok := <-directMessages:
			if !ok {
				directMessages = nil
				continue
			}
			b.handleNotification(notification)
		case notification, ok := <-pageMessages:
			if !ok {
				pageMessages = nil
				continue
			}
			b.handleNotification(notification)
		case <-b.stopTrigger:
			return nil
		}
	}
	return nil
}

func (b *Bridge) Stop() {
	close(b.stopTrigger)
}

func (b *Bridge) handleNotification(notification types.StatusNotification) {
	key := notification.Key()

	b.mutex.Lock()
	if _, ok := b.seen[key]; ok {
		b.mutex.Unlock()
		log.Printf(
			"Merchant bridge: dropping duplicate notification %s for tab %d",
			key, b.tabID,
		)
		return
	}
	b.seen[key] = struct{}{}

	if !notification.Status.IsTerminal() || !b.awaiting {
		b.mutex.Unlock()
		return
	}
	b.awaiting = false
	b.mutex.Unlock()

	b.result <- notification
}

// RequestPayment asks the coordinator to start a payment for given amount
// and arms the bridge to resolve on the next terminal status. Notification
// keys seen for earlier payments are forgotten, a repeat of the same outcome
// is a new notification to the new payment
func (b *Bridge) RequestPayment(amount arc.Amount) error {
	b.mutex.Lock()
	if b.awaiting {
		b.mutex.Unlock()
		return ErrPaymentAlreadyPending
	}
	b.awaiting = true
	b.seen = make(map[string]struct{})
	b.mutex.Unlock()

	if err := b.initiator.TriggerPayment(amount); err != nil {
		b.mutex.Lock()
		b.awaiting = false
		b.mutex.Unlock()
		return err
	}
	return nil
}

// AwaitResult blocks until the pending payment reaches a terminal status or
// the timeout expires
func (b *Bridge) AwaitResult(timeout time.Duration) (types.StatusNotification, error) {
	select {
	case notification := <-b.result:
		return notification, nil
	case <-time.After(timeout):
		return types.StatusNotification{}, ErrResultTimeout
	}
}
