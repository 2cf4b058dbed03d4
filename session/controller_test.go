package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arcnetwork/arc-processing/arc"
	"github.com/arcnetwork/arc-processing/backend"
	"github.com/arcnetwork/arc-processing/payment/types"
	settingstestutil "github.com/arcnetwork/arc-processing/settings/testutil"
	"github.com/arcnetwork/arc-processing/storage"
)

const testToken = "testtoken"
const testMerchantName = "curve-merchant-1"
const testTxHash = "abc123"

var testAmount = arc.Must(arc.AmountFromStringedFloat("12.5"))

type backendAPIMock struct {
	mutex sync.Mutex

	faceOk      bool
	faceAuthErr error
	txHash      string
	createErr   error
	cancelErr   error
	balance     float64

	faceAuthCalls int
	createCalls   int
	cancelCalls   int
	cancelledTx   string
}

func (b *backendAPIMock) FaceAuth(token string, image []byte) (bool, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.faceAuthCalls++
	return b.faceOk, b.faceAuthErr
}

func (b *backendAPIMock) CreateMerchantPayment(token, merchantName string, amount arc.Amount) (string, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.createCalls++
	if b.createErr != nil {
		return "", b.createErr
	}
	return b.txHash, nil
}

func (b *backendAPIMock) CancelTransaction(token, txHash string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.cancelCalls++
	b.cancelledTx = txHash
	return b.cancelErr
}

func (b *backendAPIMock) GetARCWallet(token string) (*backend.WalletInfo, error) {
	return &backend.WalletInfo{Symbol: arc.Currency, Balance: b.balance}, nil
}

type cameraMock struct {
	startErr error
	frameErr error
}

func (c *cameraMock) Start() error {
	return c.startErr
}

func (c *cameraMock) CaptureFrame() ([]byte, error) {
	if c.frameErr != nil {
		return nil, c.frameErr
	}
	return []byte("frame"), nil
}

type messengerMock struct {
	mutex sync.Mutex

	relayed         []types.StatusNotification
	clearBadgeCalls int
	closeTabCalls   int
	closeTrigger    chan struct{}
}

func newMessengerMock() *messengerMock {
	return &messengerMock{closeTrigger: make(chan struct{}, 10)}
}

func (m *messengerMock) RelayStatus(notification types.StatusNotification) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.relayed = append(m.relayed, notification)
}

func (m *messengerMock) ClearBadge() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.clearBadgeCalls++
}

func (m *messengerMock) CloseTab() {
	m.mutex.Lock()
	m.closeTabCalls++
	m.mutex.Unlock()

	m.closeTrigger <- struct{}{}
}

func (m *messengerMock) relayedNotifications() []types.StatusNotification {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]types.StatusNotification{}, m.relayed...)
}

func (m *messengerMock) waitForClose(t *testing.T) {
	t.Helper()
	select {
	case <-m.closeTrigger:
	case <-time.After(1 * time.Second):
		t.Fatal("Timed out waiting for popup close request")
	}
}

func newTestController(backendAPI *backendAPIMock, camera *cameraMock, messenger *messengerMock) (*Controller, storage.KVStore) {
	s := &settingstestutil.SettingsMock{Data: map[string]interface{}{
		"merchant.name":              testMerchantName,
		"session.settle.delay":       1,
		"session.countdown.seconds":  2,
		"session.cancel.close.delay": 1,
	}}
	kv := storage.NewKVStore(nil)
	controller := NewController(s, backendAPI, camera, messenger, kv)
	controller.countdownTick = time.Millisecond
	return controller, kv
}

func startPaymentSession(t *testing.T, controller *Controller, kv storage.KVStore) {
	t.Helper()
	if err := storage.StoreOrderAmount(kv, testAmount); err != nil {
		t.Fatal(err)
	}
	if err := storage.SetAuthToken(kv, testToken); err != nil {
		t.Fatal(err)
	}
	if err := controller.Start(); err != nil {
		t.Fatal(err)
	}
}

func TestPaymentSuccess(t *testing.T) {
	backendAPI := &backendAPIMock{faceOk: true, txHash: testTxHash}
	messenger := newMessengerMock()
	controller, kv := newTestController(backendAPI, &cameraMock{}, messenger)

	startPaymentSession(t, controller, kv)

	if !strings.Contains(controller.StatusText(), "Order Amount") {
		t.Fatalf("Expected status text to show order amount, got %q",
			controller.StatusText())
	}

	if err := controller.AuthenticateAndPay(); err != nil {
		t.Fatal(err)
	}

	session := controller.Session()
	if session.Status != types.SucceededSession {
		t.Fatalf("Expected session status %s, got %s",
			types.SucceededSession, session.Status)
	}
	if session.TransactionHash != testTxHash {
		t.Fatalf("Expected transaction hash %q, got %q",
			testTxHash, session.TransactionHash)
	}

	relayed := messenger.relayedNotifications()
	if len(relayed) != 1 {
		t.Fatalf("Expected exactly one relayed notification, got %d",
			len(relayed))
	}
	notification := relayed[0]
	if notification.Status != types.SuccessNotification {
		t.Fatalf("Expected success notification, got %s", notification.Status)
	}
	if notification.TransactionID != testTxHash {
		t.Fatalf("Expected notification to carry tx id %q, got %q",
			testTxHash, notification.TransactionID)
	}
	if notification.Amount == nil || *notification.Amount != testAmount {
		t.Fatalf("Expected notification to carry amount %s, got %v",
			testAmount, notification.Amount)
	}

	messenger.waitForClose(t)

	// Amount was consumed on session start
	if _, found, _ := storage.ConsumeOrderAmount(kv); found {
		t.Fatal("Expected order amount to be consumed by session start")
	}
}

func TestStartWithoutPendingOrder(t *testing.T) {
	messenger := newMessengerMock()
	controller, _ := newTestController(&backendAPIMock{}, &cameraMock{}, messenger)

	if err := controller.Start(); err != ErrNoPendingOrder {
		t.Fatalf("Expected ErrNoPendingOrder, got %v", err)
	}
	if controller.Session() != nil {
		t.Fatal("Expected no session in normal wallet-browsing mode")
	}
	if messenger.clearBadgeCalls != 1 {
		t.Fatal("Expected stale badge to be cleared on popup start")
	}
}

func TestStartCameraError(t *testing.T) {
	messenger := newMessengerMock()
	camera := &cameraMock{startErr: errors.New("no device")}
	controller, kv := newTestController(&backendAPIMock{}, camera, messenger)

	startPaymentSession(t, controller, kv)

	if got, want := controller.StatusText(), "Camera access denied. Please enable camera."; got != want {
		t.Fatalf("Expected status text %q, got %q", want, got)
	}
	// Camera failure does not end the session, user may retry
	if controller.Session().Status != types.InitiatedSession {
		t.Fatal("Expected session to stay initiated after camera failure")
	}
}

func TestPayWithoutLogin(t *testing.T) {
	backendAPI := &backendAPIMock{faceOk: true, txHash: testTxHash}
	messenger := newMessengerMock()
	controller, kv := newTestController(backendAPI, &cameraMock{}, messenger)

	if err := storage.StoreOrderAmount(kv, testAmount); err != nil {
		t.Fatal(err)
	}
	if err := controller.Start(); err != nil {
		t.Fatal(err)
	}

	if err := controller.AuthenticateAndPay(); err != backend.ErrNotAuthenticated {
		t.Fatalf("Expected ErrNotAuthenticated, got %v", err)
	}
	if backendAPI.faceAuthCalls != 0 || backendAPI.createCalls != 0 {
		t.Fatal("Expected no backend calls without login")
	}
	if got, want := controller.StatusText(), "Please login first."; got != want {
		t.Fatalf("Expected status text %q, got %q", want, got)
	}
}

type tokenFailingKVStore struct {
	storage.KVStore
	err error
}

func (s *tokenFailingKVStore) Get(key string) (string, error) {
	if key == storage.AuthTokenKey {
		return "", s.err
	}
	return s.KVStore.Get(key)
}

func TestPayWithTokenReadFailure(t *testing.T) {
	backendAPI := &backendAPIMock{faceOk: true, txHash: testTxHash}
	messenger := newMessengerMock()
	controller, kv := newTestController(backendAPI, &cameraMock{}, messenger)

	storeErr := errors.New("store unavailable")
	controller.kvStore = &tokenFailingKVStore{KVStore: kv, err: storeErr}

	startPaymentSession(t, controller, kv)

	if err := controller.AuthenticateAndPay(); err != storeErr {
		t.Fatalf("Expected store error to be returned, got %v", err)
	}
	if backendAPI.faceAuthCalls != 0 || backendAPI.createCalls != 0 {
		t.Fatal("Expected no backend calls when token read fails")
	}
	want := "Could not read login state. Please try again."
	if got := controller.StatusText(); got != want {
		t.Fatalf("Expected status text %q, got %q", want, got)
	}
}

func TestFaceAuthNegative(t *testing.T) {
	backendAPI := &backendAPIMock{faceOk: false, txHash: testTxHash}
	messenger := newMessengerMock()
	controller, kv := newTestController(backendAPI, &cameraMock{}, messenger)

	startPaymentSession(t, controller, kv)

	if err := controller.AuthenticateAndPay(); err != nil {
		t.Fatal(err)
	}

	if backendAPI.createCalls != 0 {
		t.Fatal("Expected no transaction to be created after negative " +
			"face verification")
	}
	if controller.Session().Status != types.FailedSession {
		t.Fatalf("Expected session status %s, got %s",
			types.FailedSession, controller.Session().Status)
	}

	relayed := messenger.relayedNotifications()
	if len(relayed) != 1 || relayed[0].Status != types.FailedNotification {
		t.Fatalf("Expected exactly one failed notification, got %v", relayed)
	}
}

func TestCreatePaymentError(t *testing.T) {
	createErr := errors.New("insufficient funds")
	backendAPI := &backendAPIMock{faceOk: true, createErr: createErr}
	messenger := newMessengerMock()
	controller, kv := newTestController(backendAPI, &cameraMock{}, messenger)

	startPaymentSession(t, controller, kv)

	if err := controller.AuthenticateAndPay(); err != createErr {
		t.Fatalf("Expected %v, got %v", createErr, err)
	}

	session := controller.Session()
	if session.Status != types.FailedSession {
		t.Fatalf("Expected session status %s, got %s",
			types.FailedSession, session.Status)
	}
	if session.TransactionHash != "" {
		t.Fatal("Expected no transaction hash after failed payment")
	}

	relayed := messenger.relayedNotifications()
	if len(relayed) != 1 || relayed[0].Status != types.FailedNotification {
		t.Fatalf("Expected exactly one failed notification, got %v", relayed)
	}
}

func TestCancelWithoutTransaction(t *testing.T) {
	backendAPI := &backendAPIMock{}
	messenger := newMessengerMock()
	controller, kv := newTestController(backendAPI, &cameraMock{}, messenger)

	startPaymentSession(t, controller, kv)

	if err := controller.Cancel(); err != nil {
		t.Fatal(err)
	}

	if backendAPI.cancelCalls != 0 {
		t.Fatal("Expected no backend cancel without a created transaction")
	}

	relayed := messenger.relayedNotifications()
	if len(relayed) != 1 {
		t.Fatalf("Expected exactly one relayed notification, got %d",
			len(relayed))
	}
	if relayed[0].Status != types.CancelledNotification {
		t.Fatalf("Expected cancelled notification, got %s", relayed[0].Status)
	}
	if relayed[0].Reason != ReasonUserCancelled {
		t.Fatalf("Expected reason %q, got %q",
			ReasonUserCancelled, relayed[0].Reason)
	}

	messenger.waitForClose(t)
}

func TestCancelWithoutSession(t *testing.T) {
	messenger := newMessengerMock()
	controller, _ := newTestController(&backendAPIMock{}, &cameraMock{}, messenger)

	if err := controller.Cancel(); err != ErrNoActiveSession {
		t.Fatalf("Expected ErrNoActiveSession, got %v", err)
	}
}

func TestTeardownDuringPayment(t *testing.T) {
	backendAPI := &backendAPIMock{}
	messenger := newMessengerMock()
	controller, kv := newTestController(backendAPI, &cameraMock{}, messenger)

	startPaymentSession(t, controller, kv)

	controller.mutex.Lock()
	controller.session.Status = types.InProgressSession
	controller.session.TransactionHash = testTxHash
	controller.mutex.Unlock()

	controller.Teardown(ReasonPopupClosing)

	if backendAPI.cancelCalls != 1 {
		t.Fatalf("Expected exactly one backend cancel, got %d",
			backendAPI.cancelCalls)
	}
	if backendAPI.cancelledTx != testTxHash {
		t.Fatalf("Expected cancel of tx %q, got %q",
			testTxHash, backendAPI.cancelledTx)
	}

	relayed := messenger.relayedNotifications()
	if len(relayed) != 1 {
		t.Fatalf("Expected exactly one relayed notification, got %d",
			len(relayed))
	}
	if relayed[0].Status != types.CancelledNotification {
		t.Fatalf("Expected cancelled notification, got %s", relayed[0].Status)
	}
	if relayed[0].Reason != ReasonPopupClosing {
		t.Fatalf("Expected reason %q, got %q",
			ReasonPopupClosing, relayed[0].Reason)
	}

	// Both unload hooks may fire, second teardown must be a no-op
	controller.Teardown(ReasonPopupClosed)

	if backendAPI.cancelCalls != 1 {
		t.Fatal("Expected repeated teardown not to cancel again")
	}
	if len(messenger.relayedNotifications()) != 1 {
		t.Fatal("Expected repeated teardown not to notify again")
	}
}

func TestTeardownAfterSuccessIsNoop(t *testing.T) {
	backendAPI := &backendAPIMock{faceOk: true, txHash: testTxHash}
	messenger := newMessengerMock()
	controller, kv := newTestController(backendAPI, &cameraMock{}, messenger)

	startPaymentSession(t, controller, kv)

	if err := controller.AuthenticateAndPay(); err != nil {
		t.Fatal(err)
	}

	controller.Teardown(ReasonPopupClosed)

	if backendAPI.cancelCalls != 0 {
		t.Fatal("Expected no backend cancel after successful payment")
	}
	relayed := messenger.relayedNotifications()
	if len(relayed) != 1 || relayed[0].Status != types.SuccessNotification {
		t.Fatalf("Expected single success notification to stand, got %v",
			relayed)
	}
}
