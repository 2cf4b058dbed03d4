package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/backend"
	"github.com/arcnetwork/arc-processing/payment/types"
	"github.com/arcnetwork/arc-processing/settings"
	"github.com/arcnetwork/arc-processing/storage"
)

// Cancellation reasons reported to the merchant page. The explicit one is
// part of the merchant-facing contract
const (
	ReasonUserCancelled = "User cancelled payment manually"
	ReasonPopupClosing  = "Extension closing during payment process"
	ReasonPopupClosed   = "Extension popup closed"
)

var (
	// ErrNoPendingOrder is returned by Start when the shared store holds no
	// order amount: the popup was opened directly and runs in normal
	// wallet-browsing mode
	ErrNoPendingOrder = errors.New("No pending order amount in shared store")

	// ErrNoActiveSession is returned by payment operations when no payment
	// session was initiated
	ErrNoActiveSession = errors.New("No active payment session")
)

// Messenger is the slice of coordinator functionality the popup talks to.
// All calls are routed through the coordinator's request queues so the popup
// never mutates the tracked tab or badge directly
type Messenger interface {
	RelayStatus(notification types.StatusNotification)
	ClearBadge()
	CloseTab()
}

// BackendAPI is the set of backend calls a payment session makes. It is
// satisfied by backend.Client and mocked in tests
type BackendAPI interface {
	FaceAuth(token string, image []byte) (bool, error)
	CreateMerchantPayment(token, merchantName string, amount arc.Amount) (string, error)
	CancelTransaction(token, txHash string) error
	GetARCWallet(token string) (*backend.WalletInfo, error)
}

// Camera abstracts the image-capture device used for face verification.
// The real device lives outside this subsystem
type Camera interface {
	Start() error
	CaptureFrame() ([]byte, error)
}

// Controller drives one payment attempt end-to-end inside the popup context:
// display amount, acquire camera, gate on face verification, submit the
// transaction, report outcome, auto-close. Session state is an explicit
// enumerated value transitioned only by Controller operations; for every
// session that enters payment mode exactly one terminal status notification
// is eventually relayed, covering normal completion, explicit cancel and
// abrupt teardown
type Controller struct {
	mutex sync.Mutex

	backendAPI   BackendAPI
	camera       Camera
	messenger    Messenger
	kvStore      storage.KVStore
	merchantName string

	settleDelay      time.Duration
	countdownSeconds int
	countdownTick    time.Duration
	cancelCloseDelay time.Duration

	session         *types.Session
	terminalEmitted bool
	closeRequested  bool
	statusText      string
	balance         float64
}

// NewController creates new Controller instance
func NewController(s settings.Settings, backendAPI BackendAPI, camera Camera, messenger Messenger, kv storage.KVStore) *Controller {
	return &Controller{
		backendAPI:       backendAPI,
		camera:           camera,
		messenger:        messenger,
		kvStore:          kv,
		merchantName:     s.GetStringMandatory("merchant.name"),
		settleDelay:      time.Duration(s.GetInt("session.settle.delay")) * time.Millisecond,
		countdownSeconds: s.GetInt("session.countdown.seconds"),
		countdownTick:    time.Second,
		cancelCloseDelay: time.Duration(s.GetInt("session.cancel.close.delay")) * time.Millisecond,
	}
}

// Start runs popup initialization: it clears any stale badge and consumes
// the pending order amount from the shared store. With an amount present a
// payment session is created in initiated state and the camera is started;
// otherwise ErrNoPendingOrder is returned and the popup stays in normal
// wallet-browsing mode
func (c *Controller) Start() error {
	c.messenger.ClearBadge()

	amount, found, err := storage.ConsumeOrderAmount(c.kvStore)
	if err != nil {
		return err
	}
	if !found {
		return ErrNoPendingOrder
	}

	session, err := types.NewSession(amount)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	c.session = session
	c.terminalEmitted = false
	c.closeRequested = false
	c.statusText = "Order Amount: " + amount.String() + " " + arc.Currency
	c.mutex.Unlock()

	log.Printf(
		"Payment session %s initiated for %s %s",
		session.ID, amount, arc.Currency,
	)

	if err := c.camera.Start(); err != nil {
		log.Printf("Error: session: camera access failed: %v", err)
		c.setStatusText("Camera access denied. Please enable camera.")
	}
	return nil
}

// Session returns a copy of current payment session, or nil when the popup
// runs in normal wallet-browsing mode
func (c *Controller) Session() *types.Session {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.session == nil {
		return nil
	}
	sessionCopy := *c.session
	return &sessionCopy
}

// StatusText returns the message currently shown to the user
func (c *Controller) StatusText() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.statusText
}

func (c *Controller) setStatusText(text string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.statusText = text
}

// emitTerminal relays a terminal status notification to the merchant page
// exactly once per session. Later calls are dropped, which makes completion,
// explicit cancel and the two teardown hooks safe to overlap
func (c *Controller) emitTerminal(notification types.StatusNotification) {
	c.mutex.Lock()
	if c.terminalEmitted {
		c.mutex.Unlock()
		return
	}
	c.terminalEmitted = true
	c.mutex.Unlock()

	c.messenger.RelayStatus(notification)
}

// requestClose asks the coordinator to close the popup surface, at most once
// per session
func (c *Controller) requestClose() {
	c.mutex.Lock()
	if c.closeRequested {
		c.mutex.Unlock()
		return
	}
	c.closeRequested = true
	c.mutex.Unlock()

	c.messenger.CloseTab()
}

func (c *Controller) authToken() (string, error) {
	return storage.GetAuthToken(c.kvStore)
}
