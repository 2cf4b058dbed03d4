package coordinator

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arcnetwork/arc-processing/browser"
	"github.com/arcnetwork/arc-processing/events"
	"github.com/arcnetwork/arc-processing/settings"
	"github.com/arcnetwork/arc-processing/storage"
)

const internalQueueSize = 10000

type coordinatorData struct {
	settings settings.Settings
	browser  browser.Browser
	kvStore  storage.KVStore

	popupURL        string
	popupWidth      int
	popupHeight     int
	merchantOrigins []string
	pendingBadge    string
	pendingColor    string

	// trackedTabID names the currently-open extension surface. Zero means
	// no surface is tracked. It is read and written only by the main loop
	// goroutine
	trackedTabID int

	openTabQueue    chan internalOpenTabRequest
	triggerQueue    chan internalTriggerRequest
	relayQueue      chan internalRelayRequest
	clearBadgeQueue chan internalBadgeRequest
	closeTabQueue   chan internalCloseRequest

	stopTrigger chan struct{}

	paymentsTriggeredCount prometheus.Counter
	relayFallbackCount     prometheus.Counter
	relayUndeliveredCount  prometheus.Counter
	badgePendingGauge      prometheus.Gauge
}

// Coordinator is the single authority for extension-surface lifecycle and
// message routing. It owns the tracked tab reference and the badge and routes
// payment status notifications from the popup to the merchant page. It holds
// no UI state itself. All state mutations happen in a single main loop
// goroutine consuming internal request queues, so no locks are needed on the
// tracked reference or the badge
type Coordinator struct {
	*coordinatorData
	eventBroker events.EventBroker
}

// NewCoordinator creates new Coordinator instance. It needs a Browser to
// manage tabs and the badge, a shared KV store to persist pending order
// amounts and an EventBroker to publish protocol events
func NewCoordinator(s settings.Settings, b browser.Browser, kv storage.KVStore, eventBroker events.EventBroker) *Coordinator {
	c := &Coordinator{
		eventBroker: eventBroker,
		coordinatorData: &coordinatorData{
			settings:        s,
			browser:         b,
			kvStore:         kv,
			popupURL:        s.GetStringMandatory("popup.url"),
			popupWidth:      s.GetInt("popup.width"),
			popupHeight:     s.GetInt("popup.height"),
			merchantOrigins: s.GetStringSlice("merchant.origins"),
			pendingBadge:    s.GetString("badge.pending.text"),
			pendingColor:    s.GetString("badge.pending.color"),
			openTabQueue:    make(chan internalOpenTabRequest, internalQueueSize),
			triggerQueue:    make(chan internalTriggerRequest, internalQueueSize),
			relayQueue:      make(chan internalRelayRequest, internalQueueSize),
			clearBadgeQueue: make(chan internalBadgeRequest, internalQueueSize),
			closeTabQueue:   make(chan internalCloseRequest, internalQueueSize),
			stopTrigger:     make(chan struct{}),
		},
	}
	c.initMetrics()
	return c
}

func (c *Coordinator) initMetrics() {
	c.paymentsTriggeredCount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arc_processing",
		Subsystem: "coordinator",
		Name:      "payments_triggered_total",
		Help:      "Total number of payments triggered by merchant pages.",
	})
	c.relayFallbackCount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arc_processing",
		Subsystem: "coordinator",
		Name:      "status_relay_fallbacks_total",
		Help: "Total number of status notifications delivered via " +
			"injected rebroadcast because direct delivery failed.",
	})
	c.relayUndeliveredCount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arc_processing",
		Subsystem: "coordinator",
		Name:      "status_relay_undelivered_total",
		Help: "Total number of status notifications that could not be " +
			"delivered to any page.",
	})
	c.badgePendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "arc_processing",
		Subsystem: "coordinator",
		Name:      "badge_pending",
		Help:      "Whether the badge currently shows a pending payment.",
	})
}

func (c *Coordinator) registerMetrics() {
	collectors := []prometheus.Collector{
		c.paymentsTriggeredCount,
		c.relayFallbackCount,
		c.relayUndeliveredCount,
		c.badgePendingGauge,
	}
	for _, collector := range collectors {
		if err := prometheus.Register(collector); err != nil {
			log.Printf("Warning: coordinator: metric registration: %v", err)
		}
	}
}

// Run starts coordinator's main loop. It processes requests until Stop is
// called
func (c *Coordinator) Run() error {
	c.registerMetrics()
	return c.mainLoop()
}

// Stop makes the main loop exit after the request it is currently handling
func (c *Coordinator) Stop() {
	close(c.stopTrigger)
}

func (c *Coordinator) mainLoop() error {
	for {
		select {
		case <-c.stopTrigger:
			return nil
		case req := <-c.openTabQueue:
			c.handleOpenTab(req)
		case req := <-c.triggerQueue:
			c.handleTriggerPayment(req)
		case req := <-c.relayQueue:
			c.handleRelayStatus(req)
		case req := <-c.clearBadgeQueue:
			c.handleClearBadge(req)
		case req := <-c.closeTabQueue:
			c.handleCloseTab(req)
		}
	}
}

func (c *Coordinator) notify(eventType events.EventType, data interface{}) {
	err := c.eventBroker.Notify(eventType, data)
	if err != nil {
		log.Printf(
			"Error: coordinator: failed to store %s event: %v",
			eventType, err,
		)
		return
	}
	c.eventBroker.SendNotifications()
}
