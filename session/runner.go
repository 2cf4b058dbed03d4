package session

import (
	"log"
	"sync"

	"github.com/arcnetwork/arc-processing/events"
)

// EventFeed is the slice of event broker functionality Runner subscribes to.
// It is satisfied by events.EventBroker
type EventFeed interface {
	SubscribeFromSeq(seq int) chan []*events.NotificationWithSeq
	UnsubscribeFromSeq(chan []*events.NotificationWithSeq)
}

// Runner attends triggered payments in deployments where no interactive
// popup process exists: it watches the event feed and drives a Controller
// through the full flow for every payment trigger. Replayed or stale
// triggers are harmless because the pending order amount is consumed on
// read, so a second Start for the same order finds no pending order and is
// skipped
type Runner struct {
	controller *Controller
	feed       EventFeed

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRunner creates new Runner instance
func NewRunner(controller *Controller, feed EventFeed) *Runner {
	return &Runner{
		controller: controller,
		feed:       feed,
		stop:       make(chan struct{}),
	}
}

// Run subscribes to the event feed and attends payment triggers until Stop
// is called. On shutdown an in-flight session is torn down so its terminal
// status still reaches the merchant page
func (r *Runner) Run() error {
	sub := r.feed.SubscribeFromSeq(0)
	defer r.feed.UnsubscribeFromSeq(sub)

	for {
		select {
		case <-r.stop:
			r.controller.Teardown(ReasonPopupClosing)
			return nil
		case eventSequence, ok := <-sub:
			if !ok {
				return nil
			}
			for _, event := range eventSequence {
				if event.Type != events.PaymentTriggeredEvent {
					continue
				}
				r.attendPayment()
			}
		}
	}
}

// Stop makes Run tear down any in-flight session and return
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Runner) attendPayment() {
	err := r.controller.Start()
	if err == ErrNoPendingOrder {
		// Stale trigger, its order amount was already consumed
		return
	}
	if err != nil {
		log.Printf("Error: payment runner: could not start session: %v", err)
		return
	}
	if err := r.controller.AuthenticateAndPay(); err != nil {
		log.Printf("Error: payment runner: payment attempt failed: %v", err)
	}
}
